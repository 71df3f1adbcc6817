package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ProjectSettings contains the project-level telemetry settings
type ProjectSettings struct {
	ProjectUUID      string
	TelemetryEnabled bool
}

// FindProjectRoot searches upward from the current directory for mission.yaml
func FindProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(currentDir, ProjectConfigFile)); err == nil {
			return currentDir, nil
		}
		parent := filepath.Dir(currentDir)
		if parent == currentDir {
			break
		}
		currentDir = parent
	}

	return "", fmt.Errorf("not in a mission project (no %s found)", ProjectConfigFile)
}

// ProjectConfigPath returns the mission.yaml of the enclosing project
func ProjectConfigPath() (string, error) {
	root, err := FindProjectRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, ProjectConfigFile), nil
}

// SaveProjectIdAndTelemetryToggle stamps project.project_uuid and
// project.telemetry_enabled into mission.yaml, keeping comments and order
func SaveProjectIdAndTelemetryToggle(configPath string, projectUUID string, telemetryEnabled bool) error {
	root, err := LoadYAML(configPath)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", configPath, err)
	}
	doc, err := DocumentRoot(root)
	if err != nil {
		return err
	}
	if _, err := WriteToPath(doc, []string{"project", "project_uuid"}, projectUUID); err != nil {
		return err
	}
	if _, err := WriteToPath(doc, []string{"project", "telemetry_enabled"}, strconv.FormatBool(telemetryEnabled)); err != nil {
		return err
	}
	return WriteYAML(configPath, root)
}

// SetProjectTelemetry sets telemetry preference for the current project only
func SetProjectTelemetry(enabled bool) error {
	configPath, err := ProjectConfigPath()
	if err != nil {
		return err
	}
	root, err := LoadYAML(configPath)
	if err != nil {
		return fmt.Errorf("failed to load project config: %w", err)
	}
	doc, err := DocumentRoot(root)
	if err != nil {
		return err
	}
	if _, err := WriteToPath(doc, []string{"project", "telemetry_enabled"}, strconv.FormatBool(enabled)); err != nil {
		return err
	}
	return WriteYAML(configPath, root)
}

// LoadProjectSettings reads the telemetry settings of the current project
func LoadProjectSettings() (*ProjectSettings, error) {
	configPath, err := ProjectConfigPath()
	if err != nil {
		return nil, err
	}
	return loadProjectSettingsAt(configPath)
}

func loadProjectSettingsAt(configPath string) (*ProjectSettings, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &ProjectSettings{
		ProjectUUID:      cfg.Project.ProjectUUID,
		TelemetryEnabled: cfg.Project.TelemetryEnabled,
	}, nil
}

// GetEffectiveTelemetryPreference returns the effective telemetry preference
// Project setting takes precedence over global setting
func GetEffectiveTelemetryPreference() (bool, error) {
	if settings, err := LoadProjectSettings(); err == nil && settings != nil {
		return settings.TelemetryEnabled, nil
	}

	globalPreference, err := GetGlobalTelemetryPreference()
	if err != nil {
		return false, err
	}
	if globalPreference == nil {
		return false, nil
	}
	return *globalPreference, nil
}

// IsTelemetryEnabled returns whether telemetry is enabled for the project
func IsTelemetryEnabled() bool {
	enabled, err := GetEffectiveTelemetryPreference()
	if err != nil {
		return false
	}
	return enabled
}

// GetProjectUUID returns the project UUID from mission.yaml or empty string if not found
func GetProjectUUID() string {
	settings, err := LoadProjectSettings()
	if err != nil {
		return ""
	}
	return settings.ProjectUUID
}

func getProjectUUIDFromLocation(location string) string {
	settings, err := loadProjectSettingsAt(location)
	if err != nil {
		return ""
	}
	return settings.ProjectUUID
}
