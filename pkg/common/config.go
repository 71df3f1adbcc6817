package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the project-level mission.yaml
type Config struct {
	Version  string         `json:"version" yaml:"version"`
	Project  ProjectConfig  `json:"project" yaml:"project"`
	Network  NetworkConfig  `json:"network" yaml:"network"`
	Directus DirectusConfig `json:"directus" yaml:"directus"`
	Cache    CacheConfig    `json:"cache" yaml:"cache"`
}

type ProjectConfig struct {
	Name             string `json:"name" yaml:"name"`
	ProjectUUID      string `json:"project_uuid,omitempty" yaml:"project_uuid,omitempty"`
	ArtifactsDir     string `json:"artifacts_dir" yaml:"artifacts_dir"`
	DeploymentsDir   string `json:"deployments_dir" yaml:"deployments_dir"`
	TelemetryEnabled bool   `json:"telemetry_enabled" yaml:"telemetry_enabled"`
}

// NetworkConfig overrides the built-in endpoints of the selected network
type NetworkConfig struct {
	MirrorURL string  `json:"mirror_url,omitempty" yaml:"mirror_url,omitempty"`
	RelayURL  string  `json:"relay_url,omitempty" yaml:"relay_url,omitempty"`
	MirrorRPS float64 `json:"mirror_rps,omitempty" yaml:"mirror_rps,omitempty"`
}

type DirectusConfig struct {
	URL        string `json:"url,omitempty" yaml:"url,omitempty"`
	Collection string `json:"collection" yaml:"collection"`
	TokenEnv   string `json:"token_env" yaml:"token_env"`
}

// CacheConfig drives the economy cache job
type CacheConfig struct {
	Schedule    string   `json:"schedule" yaml:"schedule"`
	Sinks       []string `json:"sinks" yaml:"sinks"`
	SQLDSN      string   `json:"sql_dsn,omitempty" yaml:"sql_dsn,omitempty"`
	MetricsAddr string   `json:"metrics_addr" yaml:"metrics_addr"`
}

// DefaultConfig is used when no mission.yaml exists
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Project.ArtifactsDir == "" {
		c.Project.ArtifactsDir = DefaultArtifactsDir
	}
	if c.Project.DeploymentsDir == "" {
		c.Project.DeploymentsDir = DefaultDeploymentsDir
	}
	if c.Directus.Collection == "" {
		c.Directus.Collection = "lazy_economy_snapshots"
	}
	if c.Directus.TokenEnv == "" {
		c.Directus.TokenEnv = EnvDirectusToken
	}
	if c.Cache.Schedule == "" {
		c.Cache.Schedule = "*/15 * * * *"
	}
	if len(c.Cache.Sinks) == 0 {
		c.Cache.Sinks = []string{"stdout"}
	}
	if c.Cache.MetricsAddr == "" {
		c.Cache.MetricsAddr = ":9464"
	}
}

// DirectusURL returns the configured Directus URL, env taking precedence
func (c *Config) DirectusURL() string {
	if v := strings.TrimSpace(os.Getenv(EnvDirectusURL)); v != "" {
		return v
	}
	return c.Directus.URL
}

// DirectusToken reads the token from the env var named in the config
func (c *Config) DirectusToken() string {
	return strings.TrimSpace(os.Getenv(c.Directus.TokenEnv))
}

// LoadConfig reads mission.yaml at path; a missing file yields defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadProjectConfig loads mission.yaml from the project root, or defaults
func LoadProjectConfig() (*Config, error) {
	root, err := FindProjectRoot()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(filepath.Join(root, ProjectConfigFile))
}

// RequireNonZero reports every named value that is blank
func RequireNonZero(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required values: %s", strings.Join(missing, ", "))
	}
	return nil
}
