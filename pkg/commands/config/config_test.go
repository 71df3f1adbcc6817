package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lazysuperheroes/mission-cli/config/configs"
	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/common/iface"
	"github.com/lazysuperheroes/mission-cli/pkg/common/logger"
	"github.com/lazysuperheroes/mission-cli/pkg/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const testConfig = `version: 0.0.2
project:
  name: lazy-missions
  project_uuid: d7598c91-2ec4-4751-b0ab-bc848f73d58e
  artifacts_dir: artifacts
  deployments_dir: deployments
  telemetry_enabled: true
network:
  # mirror override
  mirror_url: ""
  mirror_rps: 10
directus:
  collection: lazy_economy_snapshots
  token_env: DIRECTUS_TOKEN
cache:
  schedule: "*/15 * * * *"
  sinks:
    - stdout
  metrics_addr: ":9464"
`

// setupProject writes mission.yaml into a temp dir and chdirs into it
func setupProject(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	if content != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, common.ProjectConfigFile), []byte(content), 0o644))
	}
	t.Chdir(dir)
	return dir
}

func runConfig(t *testing.T, log *logger.NoopLogger, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := &cli.App{
		Name:     "mission",
		Writer:   &out,
		Commands: []*cli.Command{Command},
		Before: func(cCtx *cli.Context) error {
			cCtx.Context = common.WithLogger(cCtx.Context, log)
			cCtx.Context = telemetry.WithMetricsContext(cCtx.Context, telemetry.NewMetricsContext())
			return nil
		},
	}
	err := app.RunContext(context.Background(), append([]string{"mission", "config"}, args...))
	return out.String(), err
}

func TestConfigShow(t *testing.T) {
	setupProject(t, testConfig)
	log := logger.NewNoopLogger()

	out, err := runConfig(t, log, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# mirror override")
	assert.Contains(t, out, "lazy_economy_snapshots")
	assert.True(t, log.Contains("Project: lazy-missions"))
	assert.True(t, log.Contains("Telemetry enabled: true"))
}

func TestConfigShowOutsideProject(t *testing.T) {
	setupProject(t, "")
	_, err := runConfig(t, logger.NewNoopLogger(), "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in a mission project")
}

func TestConfigSet(t *testing.T) {
	dir := setupProject(t, testConfig)
	log := logger.NewNoopLogger()

	_, err := runConfig(t, log, "set", "cache.schedule=@every 10m", "directus.url=https://cms.example")
	require.NoError(t, err)

	cfg, err := common.LoadConfig(filepath.Join(dir, common.ProjectConfigFile))
	require.NoError(t, err)
	assert.Equal(t, "@every 10m", cfg.Cache.Schedule)
	assert.Equal(t, "https://cms.example", cfg.Directus.URL)
	assert.True(t, log.Contains("Set cache.schedule = @every 10m"))

	raw, err := os.ReadFile(filepath.Join(dir, common.ProjectConfigFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "# mirror override", "comments survive a set")
}

func TestConfigSetRejectsInvalidValues(t *testing.T) {
	dir := setupProject(t, testConfig)
	path := filepath.Join(dir, common.ProjectConfigFile)

	_, err := runConfig(t, logger.NewNoopLogger(), "set", "cache.schedule=every tuesday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.schedule")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testConfig, string(raw), "rejected change is rolled back")

	_, err = runConfig(t, logger.NewNoopLogger(), "set", "version=9.9.9")
	assert.ErrorContains(t, err, "managed by")

	_, err = runConfig(t, logger.NewNoopLogger(), "set", "novalue")
	assert.ErrorContains(t, err, "want key=val")
}

func TestConfigInit(t *testing.T) {
	dir := setupProject(t, "")
	log := logger.NewNoopLogger()

	_, err := runConfig(t, log, "init", "--name", "my-missions")
	require.NoError(t, err)

	cfg, err := common.LoadConfig(filepath.Join(dir, common.ProjectConfigFile))
	require.NoError(t, err)
	assert.Equal(t, configs.LatestVersion, cfg.Version)
	assert.Equal(t, "my-missions", cfg.Project.Name)
	assert.NotEmpty(t, cfg.Project.ProjectUUID)
	assert.False(t, cfg.Project.TelemetryEnabled)

	for _, name := range []string{".env.example", ".gitignore", common.DefaultDeploymentsDir} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	_, err = runConfig(t, log, "init")
	assert.ErrorContains(t, err, "already exists")
	_, err = runConfig(t, log, "init", "--force")
	assert.NoError(t, err)
}

func TestConfigMigrate(t *testing.T) {
	dir := setupProject(t, string(configs.ConfigYamls["0.0.1"]))
	log := logger.NewNoopLogger()

	_, err := runConfig(t, log, "migrate")
	require.NoError(t, err)
	assert.True(t, log.Contains("Migrated mission.yaml from 0.0.1 to "+configs.LatestVersion))

	cfg, err := common.LoadConfig(filepath.Join(dir, common.ProjectConfigFile))
	require.NoError(t, err)
	assert.Equal(t, configs.LatestVersion, cfg.Version)

	log.Clear()
	_, err = runConfig(t, log, "migrate")
	require.NoError(t, err)
	assert.True(t, log.Contains("already at version"))
}

func TestValidateConfig(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	_, err := ValidateConfig(write("valid.yaml", testConfig))
	require.NoError(t, err)

	_, err = ValidateConfig(write("broken.yaml", "project:\n  name: \"broken\n"))
	assert.Error(t, err)

	_, err = ValidateConfig(write("unknown.yaml", testConfig+"surprise: true\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = ValidateConfig(write("noname.yaml", strings.Replace(testConfig, "name: lazy-missions", "name: \"\"", 1)))
	assert.ErrorContains(t, err, "project.name")

	_, err = ValidateConfig(write("sink.yaml", strings.Replace(testConfig, "- stdout", "- kafka", 1)))
	assert.ErrorContains(t, err, "unknown sink")

	_, err = ValidateConfig(write("rps.yaml", strings.Replace(testConfig, "mirror_rps: 10", "mirror_rps: -1", 1)))
	assert.ErrorContains(t, err, "mirror_rps")
}

func TestEditConfig(t *testing.T) {
	t.Setenv("EDITOR", "true")
	restore := runEditor
	t.Cleanup(func() { runEditor = restore })

	t.Run("accepts a valid edit", func(t *testing.T) {
		setupProject(t, testConfig)
		runEditor = func(_, path string, _ iface.Logger) error {
			return os.WriteFile(path, []byte(strings.Replace(testConfig, "mirror_rps: 10", "mirror_rps: 25", 1)), 0o644)
		}
		log := logger.NewNoopLogger()
		_, err := runConfig(t, log, "edit")
		require.NoError(t, err)
		assert.True(t, log.Contains("Network changes:"))
		assert.True(t, log.Contains("network.mirror_rps changed from 10 to 25"))
	})

	t.Run("reverts a version change", func(t *testing.T) {
		dir := setupProject(t, testConfig)
		runEditor = func(_, path string, _ iface.Logger) error {
			return os.WriteFile(path, []byte(strings.Replace(testConfig, "version: 0.0.2", "version: 0.0.3", 1)), 0o644)
		}
		log := logger.NewNoopLogger()
		_, err := runConfig(t, log, "edit")
		require.ErrorContains(t, err, "version must not be altered")
		assert.True(t, log.Contains("Reverting changes"))

		raw, err := os.ReadFile(filepath.Join(dir, common.ProjectConfigFile))
		require.NoError(t, err)
		assert.Equal(t, testConfig, string(raw))
	})
}

func TestDiffValues(t *testing.T) {
	changes, err := validateConfigChanges(
		[]byte("version: 0.0.2\ncache:\n  sinks: [stdout]\n  sql_dsn: a\n"),
		[]byte("version: 0.0.2\ncache:\n  sinks: [stdout, sql]\n  metrics_addr: \":1\"\n"),
	)
	require.NoError(t, err)
	require.Len(t, changes, 3)
	assert.Equal(t, "cache.metrics_addr", changes[0].Path)
	assert.Nil(t, changes[0].OldValue)
	assert.Equal(t, "cache.sinks[1]", changes[1].Path)
	assert.Equal(t, "sql", changes[1].NewValue)
	assert.Equal(t, "cache.sql_dsn", changes[2].Path)
	assert.Nil(t, changes[2].NewValue)

	log := logger.NewNoopLogger()
	logConfigChanges(changes, log)
	assert.True(t, log.Contains("Cache changes:"))
	assert.True(t, log.Contains("cache.sql_dsn removed (was: a)"))

	log.Clear()
	logConfigChanges(nil, log)
	assert.True(t, log.Contains("No changes detected"))
}
