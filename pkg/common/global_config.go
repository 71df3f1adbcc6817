package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// GlobalConfig holds per-user settings shared by every project
type GlobalConfig struct {
	FirstRun         bool   `yaml:"first_run"`
	TelemetryEnabled *bool  `yaml:"telemetry_enabled,omitempty"`
	UserUUID         string `yaml:"user_uuid"`
	// DefaultNetwork is used when neither --network nor ENVIRONMENT is set
	DefaultNetwork string `yaml:"default_network,omitempty"`
}

// GetGlobalConfigDir returns $XDG_CONFIG_HOME/mission-cli, or ~/.config/mission-cli
func GetGlobalConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")

	var baseDir string
	if configHome != "" && filepath.IsAbs(configHome) {
		baseDir = configHome
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("unable to determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(baseDir, GlobalConfigDirName), nil
}

// GetGlobalConfigPath returns the full path to the global config file
func GetGlobalConfigPath() (string, error) {
	configDir, err := GetGlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, GlobalConfigFile), nil
}

// LoadGlobalConfig loads the global configuration, creating defaults if needed
func LoadGlobalConfig() (*GlobalConfig, error) {
	configPath, err := GetGlobalConfigPath()
	if err != nil {
		// no home directory: behave as a first run rather than failing
		return &GlobalConfig{FirstRun: true}, nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &GlobalConfig{FirstRun: true}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config GlobalConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveGlobalConfig saves the global configuration to disk
func SaveGlobalConfig(config *GlobalConfig) error {
	configPath, err := GetGlobalConfigPath()
	if err != nil {
		return fmt.Errorf("cannot save global config (unable to determine config directory): %w", err)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetGlobalTelemetryPreference returns the global telemetry preference
func GetGlobalTelemetryPreference() (*bool, error) {
	config, err := LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	return config.TelemetryEnabled, nil
}

// SetGlobalTelemetryPreference sets the global telemetry preference
func SetGlobalTelemetryPreference(enabled bool) error {
	config, err := LoadGlobalConfig()
	if err != nil {
		return err
	}

	config.TelemetryEnabled = &enabled
	config.FirstRun = false

	return SaveGlobalConfig(config)
}

// MarkFirstRunComplete marks that the first run has been completed
func MarkFirstRunComplete() error {
	config, err := LoadGlobalConfig()
	if err != nil {
		return err
	}

	config.FirstRun = false

	return SaveGlobalConfig(config)
}

// IsFirstRun checks if this is the user's first time running the CLI
func IsFirstRun() (bool, error) {
	config, err := LoadGlobalConfig()
	if err != nil {
		return false, err
	}
	return config.FirstRun, nil
}

// EnsureUserUUID returns the stored user id, generating and saving one on first use
func EnsureUserUUID() (string, error) {
	config, err := LoadGlobalConfig()
	if err != nil {
		return "", err
	}
	if config.UserUUID != "" {
		return config.UserUUID, nil
	}
	config.UserUUID = uuid.New().String()
	if err := SaveGlobalConfig(config); err != nil {
		return config.UserUUID, err
	}
	return config.UserUUID, nil
}

func getUserUUIDFromGlobalConfig() string {
	config, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return config.UserUUID
}
