package commands

import (
	"fmt"

	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/common/iface"

	"github.com/urfave/cli/v2"
)

// TelemetryCommand allows users to manage telemetry settings
var TelemetryCommand = &cli.Command{
	Name:  "telemetry",
	Usage: "Manage telemetry settings",
	Flags: withGlobalFlags(
		&cli.BoolFlag{
			Name:  "enable",
			Usage: "Enable telemetry collection",
		},
		&cli.BoolFlag{
			Name:  "disable",
			Usage: "Disable telemetry collection",
		},
		&cli.BoolFlag{
			Name:  "status",
			Usage: "Show current telemetry status",
		},
		&cli.BoolFlag{
			Name:  "global",
			Usage: "Apply to the global default instead of this project's mission.yaml",
		},
	),
	Action: func(cCtx *cli.Context) error {
		logger := common.LoggerFromContext(cCtx.Context)

		enable := cCtx.Bool("enable")
		disable := cCtx.Bool("disable")
		status := cCtx.Bool("status")
		global := cCtx.Bool("global")

		if (enable && disable) || (!enable && !disable && !status) {
			return fmt.Errorf("specify exactly one of --enable, --disable, or --status")
		}

		switch {
		case status:
			return showTelemetryStatus(logger, global)
		case enable:
			return setTelemetry(logger, global, true)
		default:
			return setTelemetry(logger, global, false)
		}
	},
}

func displayGlobalTelemetryStatus(logger iface.Logger, prefix string) error {
	globalPreference, err := common.GetGlobalTelemetryPreference()
	if err != nil {
		return fmt.Errorf("failed to get global telemetry preference: %w", err)
	}

	switch {
	case globalPreference == nil:
		logger.Info("%s: Not set (defaults to disabled)", prefix)
	case *globalPreference:
		logger.Info("%s: Enabled", prefix)
	default:
		logger.Info("%s: Disabled", prefix)
	}
	return nil
}

func showTelemetryStatus(logger iface.Logger, global bool) error {
	if global {
		return displayGlobalTelemetryStatus(logger, "Global telemetry")
	}

	projectSettings, err := common.LoadProjectSettings()
	if err != nil || projectSettings == nil {
		return displayGlobalTelemetryStatus(logger, "Telemetry (global setting)")
	}

	if projectSettings.TelemetryEnabled {
		logger.Info("Telemetry: Enabled (project setting)")
	} else {
		logger.Info("Telemetry: Disabled (project setting)")
	}
	return displayGlobalTelemetryStatus(logger, "Global default")
}

func setTelemetry(logger iface.Logger, global, enabled bool) error {
	state := "disabled"
	if enabled {
		state = "enabled"
	}

	if global {
		if err := common.SetGlobalTelemetryPreference(enabled); err != nil {
			return fmt.Errorf("failed to update global telemetry: %w", err)
		}
		logger.Info("Global telemetry %s", state)
		logger.Info("New projects will inherit this setting.")
		return nil
	}

	if err := common.SetProjectTelemetry(enabled); err != nil {
		return fmt.Errorf("failed to update project telemetry: %w", err)
	}
	logger.Info("Telemetry %s for this project", state)
	return nil
}
