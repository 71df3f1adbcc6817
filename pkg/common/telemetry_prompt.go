package common

import (
	"fmt"

	"github.com/lazysuperheroes/mission-cli/pkg/common/iface"
)

// TelemetryPromptOptions controls how the telemetry prompt behaves
type TelemetryPromptOptions struct {
	// EnableTelemetry automatically enables telemetry without prompting (for --enable-telemetry flag)
	EnableTelemetry bool
	// DisableTelemetry automatically disables telemetry without prompting (for --disable-telemetry flag)
	DisableTelemetry bool
	// SkipPromptInCI skips the prompt in CI environments (defaults to disabled)
	SkipPromptInCI bool
	// Prompter defaults to DefaultPrompter
	Prompter *Prompter
}

const telemetryBanner = `
Welcome to the Lazy Superheroes mission CLI!

Help us improve mission-cli by sharing anonymous usage data:
  - commands used (e.g. 'mission boost gems', 'mission delegate nft')
  - error counts and types
  - command execution times
  - OS and architecture

Keys, account ids, contract ids and balances are never collected.

Change it later with:
  mission telemetry --enable|--disable [--global]
`

// TelemetryPromptWithOptions presents the telemetry opt-in dialog with configurable behavior
func TelemetryPromptWithOptions(logger iface.Logger, opts TelemetryPromptOptions) (bool, error) {
	p := opts.Prompter
	if p == nil {
		p = DefaultPrompter
	}
	out := p.out()

	// explicit flags win over everything
	if opts.EnableTelemetry {
		fmt.Fprintln(out, "Telemetry enabled via --enable-telemetry.")
		return true, nil
	}
	if opts.DisableTelemetry {
		fmt.Fprintln(out, "Telemetry disabled via --disable-telemetry.")
		return false, nil
	}

	if opts.SkipPromptInCI && isCI() {
		logger.Debug("Skipping telemetry prompt in CI environment, defaulting to disabled")
		return false, nil
	}

	fmt.Fprint(out, telemetryBanner)
	answer, ok, err := p.Ask("Would you like to enable telemetry? [Y/n]: ")
	if err != nil {
		return false, err
	}
	if !ok {
		logger.Debug("No terminal attached, defaulting telemetry to disabled")
		fmt.Fprintln(out, "Non-interactive session: telemetry disabled.")
		return false, nil
	}

	enabled := answer == "" || answer == "y" || answer == "yes"
	if enabled {
		fmt.Fprintln(out, "Telemetry enabled. Thank you!")
	} else {
		fmt.Fprintln(out, "Telemetry disabled.")
	}
	return enabled, nil
}

// HandleFirstRunTelemetryPrompt checks if this is a first run and prompts for telemetry
// Returns the telemetry preference (true/false) and whether this was a first run
func HandleFirstRunTelemetryPrompt(logger iface.Logger) (bool, bool, error) {
	return HandleFirstRunTelemetryPromptWithOptions(logger, TelemetryPromptOptions{SkipPromptInCI: true})
}

// HandleFirstRunTelemetryPromptWithOptions handles first run with configurable options
func HandleFirstRunTelemetryPromptWithOptions(logger iface.Logger, opts TelemetryPromptOptions) (bool, bool, error) {
	isFirstRun, err := IsFirstRun()
	if err != nil {
		logger.Debug("Failed to check first run status: %v", err)
		return false, false, nil
	}

	if !isFirstRun {
		preference, err := GetGlobalTelemetryPreference()
		if err != nil {
			logger.Debug("Failed to get global telemetry preference: %v", err)
			return false, false, nil
		}
		if preference != nil {
			return *preference, false, nil
		}
		return false, false, nil
	}

	telemetryEnabled, err := TelemetryPromptWithOptions(logger, opts)
	if err != nil {
		logger.Debug("Failed to show telemetry prompt: %v", err)
		telemetryEnabled = false
	}

	if err := SetGlobalTelemetryPreference(telemetryEnabled); err != nil {
		logger.Debug("Failed to save global telemetry preference: %v", err)
	}
	if err := MarkFirstRunComplete(); err != nil {
		logger.Debug("Failed to mark first run complete: %v", err)
	}

	return telemetryEnabled, true, nil
}
