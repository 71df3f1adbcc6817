package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lazysuperheroes/mission-cli/pkg/commands"
	"github.com/lazysuperheroes/mission-cli/pkg/commands/config"
	"github.com/lazysuperheroes/mission-cli/pkg/commands/version"
	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/hooks"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx := common.WithShutdown(context.Background())

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newApp assembles the CLI. The version is served by the version command;
// App.Version is left unset so the built-in -v flag does not clash with
// --verbose.
func newApp() *cli.App {
	app := &cli.App{
		Name:  "mission",
		Usage: "Operate LAZY missions, boosts, staking and delegation on Hedera",
		Flags: common.GlobalFlags,
		Before: func(cCtx *cli.Context) error {
			logger, tracker := common.GetLoggerFromCLIContext(cCtx)
			cCtx.Context = common.WithLogger(cCtx.Context, logger)
			cCtx.Context = common.WithProgressTracker(cCtx.Context, tracker)

			if err := hooks.LoadEnvFile(cCtx); err != nil {
				return err
			}
			common.WithAppEnvironment(cCtx)
			if err := hooks.WithFirstRunTelemetryPrompt(cCtx); err != nil {
				return err
			}
			return hooks.WithCommandMetricsContext(cCtx)
		},
		Commands: append(commands.MissionCommands(),
			config.Command,
			commands.TelemetryCommand,
			version.VersionCommand,
		),
		UseShortOptionHandling: true,
	}

	actionChain := hooks.NewActionChain()
	actionChain.Use(hooks.WithMetricEmission)
	actionChain.Use(hooks.WithSessionClose)
	hooks.ApplyMiddleware(app.Commands, actionChain)
	return app
}
