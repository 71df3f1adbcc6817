package economy

import (
	"context"
	"fmt"
	"time"

	"github.com/lazysuperheroes/mission-cli/pkg/common/iface"
	"github.com/lazysuperheroes/mission-cli/pkg/common/logger"
	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule validates a five-field cron expression or an @every/@hourly
// descriptor
func ParseSchedule(expr string) (cron.Schedule, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return sched, nil
}

// Scheduler runs a job on a cron schedule until its context ends
type Scheduler struct {
	expr string
	run  func(ctx context.Context)
	log  iface.Logger
}

func NewScheduler(expr string, run func(ctx context.Context), log iface.Logger) (*Scheduler, error) {
	if _, err := ParseSchedule(expr); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &Scheduler{expr: expr, run: run, log: log}, nil
}

// ScheduleJob runs job.RunOnce on the schedule, logging failed runs
func ScheduleJob(expr string, job *Job, log iface.Logger) (*Scheduler, error) {
	return NewScheduler(expr, func(ctx context.Context) {
		if _, err := job.RunOnce(ctx); err != nil {
			log.Error("Scheduled snapshot failed: %v", err)
		}
	}, log)
}

// Run blocks until ctx is done. Runs never overlap; a tick that fires while
// the previous run is still going is skipped.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithParser(cronParser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(s.expr, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("failed to add snapshot job to scheduler: %w", err)
	}

	c.Start()
	s.log.Info("Snapshot scheduler started (%s).", s.expr)
	if entries := c.Entries(); len(entries) > 0 {
		s.log.Info("Next snapshot at: %s", entries[0].Next.Format(time.RFC3339))
	}

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("Snapshot scheduler stopped.")
	return nil
}
