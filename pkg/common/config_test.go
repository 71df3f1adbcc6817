package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMissionYAML = `version: 0.0.2
project:
  name: lazy-missions
  project_uuid: 5b1f0f3e-1111-4c1e-9a57-7d2ad3d1a001
  artifacts_dir: build/artifacts
  deployments_dir: deployments
  telemetry_enabled: true
network:
  mirror_url: http://localhost:5551
  mirror_rps: 10
directus:
  url: https://cms.example.com
  collection: economy
  token_env: CMS_TOKEN
cache:
  schedule: "0 * * * *"
  sinks: [directus, sql]
  sql_dsn: economy.db
`

func writeMissionYAML(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ProjectConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeMissionYAML(t, t.TempDir(), sampleMissionYAML)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.2", cfg.Version)
	assert.Equal(t, "lazy-missions", cfg.Project.Name)
	assert.Equal(t, "build/artifacts", cfg.Project.ArtifactsDir)
	assert.True(t, cfg.Project.TelemetryEnabled)
	assert.Equal(t, 10.0, cfg.Network.MirrorRPS)
	assert.Equal(t, "economy", cfg.Directus.Collection)
	assert.Equal(t, []string{"directus", "sql"}, cfg.Cache.Sinks)
	assert.Equal(t, ":9464", cfg.Cache.MetricsAddr, "unset values get defaults")
}

func TestLoadConfigMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultArtifactsDir, cfg.Project.ArtifactsDir)
	assert.Equal(t, DefaultDeploymentsDir, cfg.Project.DeploymentsDir)
	assert.Equal(t, "lazy_economy_snapshots", cfg.Directus.Collection)
	assert.Equal(t, EnvDirectusToken, cfg.Directus.TokenEnv)
	assert.Equal(t, "*/15 * * * *", cfg.Cache.Schedule)
	assert.Equal(t, []string{"stdout"}, cfg.Cache.Sinks)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeMissionYAML(t, t.TempDir(), "project: [unclosed")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestDirectusSettings(t *testing.T) {
	path := writeMissionYAML(t, t.TempDir(), sampleMissionYAML)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	t.Setenv(EnvDirectusURL, "")
	t.Setenv("CMS_TOKEN", " secret ")
	assert.Equal(t, "https://cms.example.com", cfg.DirectusURL())
	assert.Equal(t, "secret", cfg.DirectusToken())

	t.Setenv(EnvDirectusURL, "https://override.example.com")
	assert.Equal(t, "https://override.example.com", cfg.DirectusURL())
}

func TestLoadProjectConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	writeMissionYAML(t, root, sampleMissionYAML)
	nested := filepath.Join(root, "scripts", "ops")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	cfg, err := LoadProjectConfig()
	require.NoError(t, err)
	assert.Equal(t, "lazy-missions", cfg.Project.Name)

	t.Chdir(t.TempDir())
	cfg, err = LoadProjectConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.Project.Name)
}

func TestRequireNonZero(t *testing.T) {
	assert.NoError(t, RequireNonZero(map[string]string{"a": "x"}))
	err := RequireNonZero(map[string]string{"LAZY_TOKEN_ID": "", "ACCOUNT_ID": " ", "OK": "1"})
	assert.EqualError(t, err, "missing required values: ACCOUNT_ID, LAZY_TOKEN_ID")
}
