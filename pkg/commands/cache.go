package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/economy"
	"github.com/urfave/cli/v2"
)

var (
	sinkFlag = &cli.StringSliceFlag{
		Name:  "sink",
		Usage: "Snapshot destinations: stdout, directus, sql (default from mission.yaml cache.sinks)",
	}
	sqlDSNFlag = &cli.StringFlag{
		Name:  "sql-dsn",
		Usage: "Postgres DSN or sqlite path for the sql sink",
	}
	cronExprFlag = &cli.StringFlag{
		Name:  "cron-expr",
		Usage: "Cron expression or @every descriptor (default from mission.yaml cache.schedule)",
	}
	addrFlag = &cli.StringFlag{
		Name:  "addr",
		Usage: "Listen address for /metrics, /healthz and /snapshot/latest",
	}
)

// CacheCommand snapshots the LAZY economy into the configured sinks
var CacheCommand = &cli.Command{
	Name:  "cache",
	Usage: "Snapshot the LAZY economy to Directus, SQL or stdout",
	Subcommands: []*cli.Command{
		{
			Name:   "run",
			Usage:  "Take one snapshot and write it to the sinks",
			Flags:  withGlobalFlags(sinkFlag, sqlDSNFlag),
			Action: cacheRunAction,
		},
		{
			Name:   "schedule",
			Usage:  "Take snapshots on a cron schedule until interrupted",
			Flags:  withGlobalFlags(sinkFlag, sqlDSNFlag, cronExprFlag),
			Action: cacheScheduleAction,
		},
		{
			Name:   "serve",
			Usage:  "Schedule snapshots and serve metrics and the latest snapshot over HTTP",
			Flags:  withGlobalFlags(sinkFlag, sqlDSNFlag, cronExprFlag, addrFlag),
			Action: cacheServeAction,
		},
	},
}

// cacheJob wires a snapshot job from the session and flags. The returned
// store is the sql sink when one is configured, and the func releases the
// sinks.
func cacheJob(cCtx *cli.Context, s *common.Session) (*economy.Job, economy.SnapshotStore, func(), error) {
	caller, err := s.Caller()
	if err != nil {
		return nil, nil, nil, err
	}
	collector, err := economy.NewCollector(economy.CollectorConfig{
		Network:     s.Network.String(),
		LazyTokenID: strings.TrimSpace(os.Getenv(common.EnvLazyTokenID)),
		Mirror:      s.Mirror,
		Querier:     caller,
		Resolver:    s,
		Registry:    s.Registry,
		Logger:      s.Logger,
		Progress:    common.ProgressTrackerFromContext(cCtx.Context),
	})
	if err != nil {
		return nil, nil, nil, err
	}

	sink, store, closeSinks, err := cacheSinks(cCtx, s)
	if err != nil {
		return nil, nil, nil, err
	}
	job := &economy.Job{
		Collector: collector,
		Sink:      sink,
		Metrics:   economy.NewMetrics(),
		Latest:    &economy.Latest{},
		Logger:    s.Logger,
	}
	return job, store, closeSinks, nil
}

func cacheSinks(cCtx *cli.Context, s *common.Session) (economy.Sink, economy.SnapshotStore, func(), error) {
	names := cCtx.StringSlice("sink")
	if len(names) == 0 {
		names = s.Config.Cache.Sinks
	}

	var sinks []economy.Sink
	var store economy.SnapshotStore
	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				s.Logger.Warn("Closing sink: %v", err)
			}
		}
	}

	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "stdout":
			sinks = append(sinks, economy.NewStdoutSink(cCtx.App.Writer))
		case "directus":
			d, err := economy.NewDirectusSink(economy.DirectusConfig{
				URL:        s.Config.DirectusURL(),
				Collection: s.Config.Directus.Collection,
				Token:      s.Config.DirectusToken(),
			})
			if err != nil {
				closeAll()
				return nil, nil, nil, err
			}
			sinks = append(sinks, d)
		case "sql":
			dsn := cCtx.String("sql-dsn")
			if dsn == "" {
				dsn = s.Config.Cache.SQLDSN
			}
			if dsn == "" {
				closeAll()
				return nil, nil, nil, errors.New("sql sink needs --sql-dsn or cache.sql_dsn in mission.yaml")
			}
			sqlSink, err := economy.OpenSQLSink(dsn)
			if err != nil {
				closeAll()
				return nil, nil, nil, err
			}
			sinks = append(sinks, sqlSink)
			store = sqlSink
			closers = append(closers, sqlSink.Close)
		default:
			closeAll()
			return nil, nil, nil, fmt.Errorf("unknown sink %q (stdout, directus, sql)", name)
		}
	}

	if len(sinks) == 1 {
		return sinks[0], store, closeAll, nil
	}
	return economy.NewMultiSink(s.Logger, sinks...), store, closeAll, nil
}

func cacheRunAction(cCtx *cli.Context) error {
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	job, _, closeSinks, err := cacheJob(cCtx, s)
	if err != nil {
		return err
	}
	defer closeSinks()

	_, err = job.RunOnce(cCtx.Context)
	return err
}

func scheduleExpr(cCtx *cli.Context, s *common.Session) string {
	if expr := cCtx.String("cron-expr"); expr != "" {
		return expr
	}
	return s.Config.Cache.Schedule
}

func cacheScheduleAction(cCtx *cli.Context) error {
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	job, _, closeSinks, err := cacheJob(cCtx, s)
	if err != nil {
		return err
	}
	defer closeSinks()

	scheduler, err := economy.ScheduleJob(scheduleExpr(cCtx, s), job, s.Logger)
	if err != nil {
		return err
	}
	return scheduler.Run(cCtx.Context)
}

func cacheServeAction(cCtx *cli.Context) error {
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	job, store, closeSinks, err := cacheJob(cCtx, s)
	if err != nil {
		return err
	}
	defer closeSinks()

	scheduler, err := economy.ScheduleJob(scheduleExpr(cCtx, s), job, s.Logger)
	if err != nil {
		return err
	}
	addr := cCtx.String("addr")
	if addr == "" {
		addr = s.Config.Cache.MetricsAddr
	}
	server := economy.NewServer(economy.ServerConfig{
		Addr:    addr,
		Metrics: job.Metrics,
		Latest:  job.Latest,
		Store:   store,
		Network: s.Network.String(),
		Logger:  s.Logger,
	})

	// a server that cannot listen stops the scheduler too
	ctx, cancel := context.WithCancel(cCtx.Context)
	defer cancel()
	serveErr := make(chan error, 1)
	go func() {
		err := server.ListenAndServe(ctx)
		if err != nil {
			cancel()
		}
		serveErr <- err
	}()

	if _, err := job.RunOnce(ctx); err != nil {
		s.Logger.Warn("Initial snapshot failed: %v", err)
	}

	schedErr := scheduler.Run(ctx)
	if err := <-serveErr; err != nil {
		return err
	}
	return schedErr
}
