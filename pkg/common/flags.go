package common

import "github.com/urfave/cli/v2"

// GlobalFlags defines flags that apply to the entire application (global flags).
var GlobalFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable verbose logging",
	},
	&cli.StringFlag{
		Name:    "network",
		Aliases: []string{"n"},
		Usage:   "Hedera network: TEST, MAIN, PREVIEW or LOCAL (overrides ENVIRONMENT)",
	},
	&cli.StringFlag{
		Name:    "env-file",
		Usage:   "Path of the .env file holding credentials and contract ids",
		Value:   EnvFile,
		EnvVars: []string{"MISSION_ENV_FILE"},
	},
	&cli.StringFlag{
		Name:  "log-file",
		Usage: "Also write JSON logs to this file (rotated)",
	},
	&cli.BoolFlag{
		Name:  "enable-telemetry",
		Usage: "Enable telemetry collection on first run without prompting",
	},
	&cli.BoolFlag{
		Name:  "disable-telemetry",
		Usage: "Disable telemetry collection on first run without prompting",
	},
}

// YesFlag skips confirmation prompts on mutating commands
var YesFlag = &cli.BoolFlag{
	Name:    "yes",
	Aliases: []string{"y"},
	Usage:   "Skip the confirmation prompt",
}

// ExecFlags are shared by every command that submits a transaction
var ExecFlags = []cli.Flag{
	&cli.Uint64Flag{
		Name:  "gas",
		Usage: "Gas limit, skipping estimation",
	},
	&cli.StringFlag{
		Name:  "value",
		Usage: "HBAR to send with the call, e.g. 5, 1.5hbar or 100tinybar",
	},
	YesFlag,
	&cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Estimate gas and print the call without sending it",
	},
}
