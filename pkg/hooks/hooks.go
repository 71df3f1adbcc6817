package hooks

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/common/logger"
	"github.com/lazysuperheroes/mission-cli/pkg/telemetry"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

const namespace = "MissionCLI"

// Commands that run before a project exists and must not read .env
var skipEnvFile = map[string]bool{
	"init":    true,
	"version": true,
}

// Flags whose values never leave the machine
var redactedFlags = map[string]bool{
	"env-file": true,
	"log-file": true,
	"sql-dsn":  true,
}

type ActionChain struct {
	Processors []func(action cli.ActionFunc) cli.ActionFunc
}

// NewActionChain creates a new action chain
func NewActionChain() *ActionChain {
	return &ActionChain{
		Processors: make([]func(action cli.ActionFunc) cli.ActionFunc, 0),
	}
}

// Use appends a new processor to the chain
func (ac *ActionChain) Use(processor func(action cli.ActionFunc) cli.ActionFunc) {
	ac.Processors = append(ac.Processors, processor)
}

func (ac *ActionChain) Wrap(action cli.ActionFunc) cli.ActionFunc {
	for i := len(ac.Processors) - 1; i >= 0; i-- {
		action = ac.Processors[i](action)
	}
	return action
}

func ApplyMiddleware(commands []*cli.Command, chain *ActionChain) {
	for _, cmd := range commands {
		if cmd.Action != nil {
			cmd.Action = chain.Wrap(cmd.Action)
		}
		if len(cmd.Subcommands) > 0 {
			ApplyMiddleware(cmd.Subcommands, chain)
		}
	}
}

func getFlagValue(ctx *cli.Context, name string) interface{} {
	if !ctx.IsSet(name) {
		return nil
	}
	if redactedFlags[name] {
		return "<set>"
	}

	if ctx.Bool(name) {
		return ctx.Bool(name)
	}
	if ctx.String(name) != "" {
		return ctx.String(name)
	}
	if ctx.Int(name) != 0 {
		return ctx.Int(name)
	}
	if ctx.Float64(name) != 0 {
		return ctx.Float64(name)
	}
	return nil
}

func collectFlagValues(ctx *cli.Context) map[string]interface{} {
	flags := make(map[string]interface{})

	for _, flag := range ctx.App.Flags {
		flagName := flag.Names()[0]
		if ctx.IsSet(flagName) {
			flags[flagName] = getFlagValue(ctx, flagName)
		}
	}

	if ctx.Command != nil {
		for _, flag := range ctx.Command.Flags {
			flagName := flag.Names()[0]
			if ctx.IsSet(flagName) {
				flags[flagName] = getFlagValue(ctx, flagName)
			}
		}
	}

	return flags
}

func setupTelemetry(ctx *cli.Context) telemetry.Client {
	log := common.LoggerFromContext(ctx.Context)

	// project setting wins over the global one
	telemetryEnabled, err := common.GetEffectiveTelemetryPreference()
	if err != nil {
		log.Debug("Failed to get telemetry preference: %v", err)
		return telemetry.NewNoopClient()
	}
	if !telemetryEnabled {
		return telemetry.NewNoopClient()
	}

	appEnv, ok := common.AppEnvironmentFromContext(ctx.Context)
	if !ok {
		return telemetry.NewNoopClient()
	}

	phClient, err := telemetry.NewPostHogClient(appEnv, namespace)
	if err != nil || phClient == nil {
		return telemetry.NewNoopClient()
	}
	return phClient
}

// WithFirstRunTelemetryPrompt asks once per machine whether to send usage metrics
func WithFirstRunTelemetryPrompt(cCtx *cli.Context) error {
	log := common.LoggerFromContext(cCtx.Context)

	isFirstRun, err := common.IsFirstRun()
	if err != nil {
		log.Debug("Failed to check first run status: %v", err)
		return nil
	}
	if !isFirstRun {
		return nil
	}

	opts := common.TelemetryPromptOptions{
		EnableTelemetry:  cCtx.Bool("enable-telemetry"),
		DisableTelemetry: cCtx.Bool("disable-telemetry"),
		SkipPromptInCI:   true,
	}

	choice, err := common.TelemetryPromptWithOptions(log, opts)
	if err != nil {
		log.Debug("Failed to show telemetry prompt: %v", err)
		if err := common.MarkFirstRunComplete(); err != nil {
			log.Debug("Failed to mark first run complete: %v", err)
		}
		return nil
	}

	if err := common.SetGlobalTelemetryPreference(choice); err != nil {
		log.Debug("Failed to save telemetry preference: %v", err)
		if err := common.MarkFirstRunComplete(); err != nil {
			log.Debug("Failed to mark first run complete: %v", err)
		}
		return nil
	}

	log.Debug("First run telemetry setup completed")
	return nil
}

func WithMetricEmission(action cli.ActionFunc) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		err := action(ctx)

		client := setupTelemetry(ctx)
		ctx.Context = telemetry.ContextWithClient(ctx.Context, client)
		emitTelemetryMetrics(ctx, err)

		return err
	}
}

func emitTelemetryMetrics(ctx *cli.Context, actionError error) {
	metrics, err := telemetry.MetricsFromContext(ctx.Context)
	if err != nil {
		return
	}
	if ctx.Command != nil {
		metrics.Properties["command"] = ctx.Command.HelpName
	}
	result := "Success"
	dimensions := map[string]string{}
	if actionError != nil {
		result = "Failure"
		dimensions["error"] = errorKind(actionError)
	}
	metrics.AddMetricWithDimensions(result, 1, dimensions)

	duration := time.Since(metrics.StartTime).Milliseconds()
	metrics.AddMetric("DurationMilliseconds", float64(duration))

	client, ok := telemetry.ClientFromContext(ctx.Context)
	if !ok {
		return
	}
	defer client.Close()

	l := logger.NewZapLogger(false)
	for _, metric := range metrics.Flatten() {
		if err := client.AddMetric(ctx.Context, metric); err != nil {
			l.Error("failed to add metric", "error", err.Error())
		}
	}
}

// errorKind keeps account ids and amounts out of telemetry for known errors
func errorKind(err error) string {
	var txErr *common.TxError
	switch {
	case errors.Is(err, common.ErrMissingCredentials):
		return "missing credentials"
	case errors.Is(err, common.ErrNotConfirmed):
		return "not confirmed"
	case errors.As(err, &txErr):
		return "transaction failed"
	}
	return err.Error()
}

// LoadEnvFile loads the --env-file (default .env) into the process env.
// A missing default file is fine; a missing explicit one is an error.
func LoadEnvFile(ctx *cli.Context) error {
	if ctx.Args().Present() && skipEnvFile[ctx.Args().First()] {
		return nil
	}
	path := ctx.String("env-file")
	if path == "" {
		path = common.EnvFile
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if ctx.IsSet("env-file") {
			return fmt.Errorf("env file %s not found", path)
		}
		return nil
	}
	return godotenv.Load(path)
}

func WithCommandMetricsContext(ctx *cli.Context) error {
	metrics := telemetry.NewMetricsContext()
	ctx.Context = telemetry.WithMetricsContext(ctx.Context, metrics)

	if appEnv, ok := common.AppEnvironmentFromContext(ctx.Context); ok {
		metrics.Properties["cli_version"] = appEnv.CLIVersion
		metrics.Properties["os"] = appEnv.OS
		metrics.Properties["arch"] = appEnv.Arch
		metrics.Properties["project_uuid"] = appEnv.ProjectUUID
		metrics.Properties["user_uuid"] = appEnv.UserUUID
	}

	for k, v := range collectFlagValues(ctx) {
		metrics.Properties[k] = fmt.Sprintf("%v", v)
	}

	metrics.AddMetric("Count", 1)
	return nil
}

// WithSessionClose releases the network session a command opened
func WithSessionClose(action cli.ActionFunc) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		defer func() {
			if s, ok := common.SessionFromContext(ctx.Context); ok {
				s.Close()
			}
		}()
		return action(ctx)
	}
}
