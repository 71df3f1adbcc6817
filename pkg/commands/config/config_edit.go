package config

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"reflect"
	"sort"
	"strings"

	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/common/iface"
	"github.com/lazysuperheroes/mission-cli/pkg/economy"
	"github.com/lazysuperheroes/mission-cli/pkg/telemetry"

	"github.com/urfave/cli/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"sigs.k8s.io/yaml"
)

// ConfigChange represents a change in a configuration field
type ConfigChange struct {
	Path     string
	OldValue interface{}
	NewValue interface{}
}

var knownSinks = map[string]bool{"stdout": true, "directus": true, "sql": true}

// runEditor is replaced in tests
var runEditor = openEditor

// EditConfig opens mission.yaml in an editor, then validates the result and
// restores the previous file if it is rejected
func EditConfig(cCtx *cli.Context, configPath string) error {
	logger := common.LoggerFromContext(cCtx.Context)

	editor, err := findEditor()
	if err != nil {
		return err
	}

	backupData, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	if err := runEditor(editor, configPath, logger); err != nil {
		return err
	}

	newData, err := ValidateConfig(configPath)
	if err == nil {
		var changes []ConfigChange
		changes, err = validateConfigChanges(backupData, newData)
		if err == nil {
			logConfigChanges(changes, logger)
			sendConfigChangeTelemetry(cCtx.Context, changes, logger)
			logger.Info("Config file updated successfully.")
			return nil
		}
	}

	logger.Error("Error validating config: %v", err)
	logger.Info("Reverting changes...")
	if restoreErr := restoreBackup(configPath, backupData); restoreErr != nil {
		logger.Error("Failed to restore backup after validation error: %v", restoreErr)
		return restoreErr
	}
	return err
}

// findEditor looks for available text editors
func findEditor() (string, error) {
	if editor := os.Getenv("EDITOR"); editor != "" {
		if _, err := exec.LookPath(editor); err == nil {
			return editor, nil
		}
	}

	for _, editor := range []string{"nano", "vi", "vim"} {
		if path, err := exec.LookPath(editor); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no suitable text editor found. Please install nano or vi, or set the EDITOR environment variable")
}

func openEditor(editorPath, filePath string, logger iface.Logger) error {
	logger.Info("Opening config file in %s...", editorPath)

	cmd := exec.Command(editorPath, filePath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

// ValidateConfig parses mission.yaml and checks the fields the CLI depends
// on, returning the raw bytes
func ValidateConfig(configPath string) ([]byte, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg common.Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return data, fmt.Errorf("invalid mission.yaml: %w", err)
	}

	if err := common.RequireNonZero(map[string]string{
		"version":                 cfg.Version,
		"project.name":            cfg.Project.Name,
		"project.deployments_dir": cfg.Project.DeploymentsDir,
	}); err != nil {
		return data, err
	}
	if cfg.Network.MirrorRPS < 0 {
		return data, fmt.Errorf("network.mirror_rps cannot be negative")
	}
	if cfg.Cache.Schedule != "" {
		if _, err := economy.ParseSchedule(cfg.Cache.Schedule); err != nil {
			return data, fmt.Errorf("cache.schedule: %w", err)
		}
	}
	for _, sink := range cfg.Cache.Sinks {
		if !knownSinks[sink] {
			return data, fmt.Errorf("cache.sinks: unknown sink %q (want stdout, directus or sql)", sink)
		}
	}

	return data, nil
}

func restoreBackup(configPath string, backupData []byte) error {
	return os.WriteFile(configPath, backupData, 0o644)
}

// validateConfigChanges diffs two documents, refusing a changed version
func validateConfigChanges(originalYAML, updatedYAML []byte) ([]ConfigChange, error) {
	var original, updated map[string]interface{}
	if err := yaml.Unmarshal(originalYAML, &original); err != nil {
		return nil, fmt.Errorf("failed to convert yaml to map: %w", err)
	}
	if err := yaml.Unmarshal(updatedYAML, &updated); err != nil {
		return nil, fmt.Errorf("failed to convert yaml to map: %w", err)
	}

	ov := fmt.Sprint(original["version"])
	nv := fmt.Sprint(updated["version"])
	if original["version"] == nil || updated["version"] == nil {
		return nil, fmt.Errorf("missing 'version' in mission.yaml")
	}
	if ov != nv {
		return nil, fmt.Errorf("version must not be altered (was %q, now %q)", ov, nv)
	}

	changes := diffValues("", original, updated)
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, nil
}

// diffValues recurses into maps, slices and primitives.
func diffValues(path string, oldV, newV interface{}) []ConfigChange {
	if oldV == nil && newV == nil {
		return nil
	}
	if oldV == nil || newV == nil {
		return []ConfigChange{{Path: path, OldValue: oldV, NewValue: newV}}
	}

	ro, no := reflect.ValueOf(oldV), reflect.ValueOf(newV)
	if ro.Kind() != no.Kind() {
		return []ConfigChange{{Path: path, OldValue: oldV, NewValue: newV}}
	}

	var out []ConfigChange
	switch ro.Kind() {
	case reflect.Map:
		om := oldV.(map[string]interface{})
		nm := newV.(map[string]interface{})
		for k, ov := range om {
			newPath := join(path, k)
			if nv, ok := nm[k]; ok {
				out = append(out, diffValues(newPath, ov, nv)...)
			} else {
				out = append(out, ConfigChange{Path: newPath, OldValue: ov})
			}
		}
		for k, nv := range nm {
			if _, ok := om[k]; !ok {
				out = append(out, ConfigChange{Path: join(path, k), NewValue: nv})
			}
		}

	case reflect.Slice, reflect.Array:
		oldLen, newLen := ro.Len(), no.Len()
		n := max(oldLen, newLen)
		for i := 0; i < n; i++ {
			var ov, nv interface{}
			if i < oldLen {
				ov = ro.Index(i).Interface()
			}
			if i < newLen {
				nv = no.Index(i).Interface()
			}
			out = append(out, diffValues(fmt.Sprintf("%s[%d]", path, i), ov, nv)...)
		}

	default:
		if !reflect.DeepEqual(oldV, newV) {
			out = append(out, ConfigChange{Path: path, OldValue: oldV, NewValue: newV})
		}
	}
	return out
}

func join(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}

// logConfigChanges logs changes grouped by top-level section
func logConfigChanges(changes []ConfigChange, logger iface.Logger) {
	if len(changes) == 0 {
		logger.Info("No changes detected in configuration.")
		return
	}

	var sections []string
	bySection := make(map[string][]ConfigChange)
	for _, change := range changes {
		section := strings.Split(change.Path, ".")[0]
		if _, ok := bySection[section]; !ok {
			sections = append(sections, section)
		}
		bySection[section] = append(bySection[section], change)
	}

	titleCaser := cases.Title(language.English)
	for _, section := range sections {
		logger.Info("%s changes:", titleCaser.String(section))
		for _, change := range bySection[section] {
			formatAndLogChange(change, logger)
		}
	}
}

func formatAndLogChange(change ConfigChange, logger iface.Logger) {
	switch {
	case change.OldValue == nil:
		logger.Info("  - %s added (value: %v)", change.Path, change.NewValue)
	case change.NewValue == nil:
		logger.Info("  - %s removed (was: %v)", change.Path, change.OldValue)
	default:
		switch change.OldValue.(type) {
		case string:
			logger.Info("  - %s changed from '%v' to '%v'", change.Path, change.OldValue, change.NewValue)
		case bool, float64, int64:
			logger.Info("  - %s changed from %v to %v", change.Path, change.OldValue, change.NewValue)
		default:
			logger.Info("  - %s changed", change.Path)
		}
	}
}

// sendConfigChangeTelemetry records which sections changed, never the values
func sendConfigChangeTelemetry(ctx context.Context, changes []ConfigChange, logger iface.Logger) {
	if len(changes) == 0 {
		return
	}

	metrics, err := telemetry.MetricsFromContext(ctx)
	if err != nil {
		logger.Debug("No metrics context for config changes: %v", err)
	}

	const maxChangesToInclude = 20
	dims := make(map[string]string)
	sectionCounts := make(map[string]int)
	for i, change := range changes {
		sectionCounts[strings.Split(change.Path, ".")[0]]++
		if i < maxChangesToInclude {
			dims[fmt.Sprintf("changed_%d_path", i)] = change.Path
		}
	}
	for section, count := range sectionCounts {
		dims[section+"_changes"] = fmt.Sprintf("%d", count)
	}

	metrics.AddMetricWithDimensions("ConfigChangeCount", float64(len(changes)), dims)
}
