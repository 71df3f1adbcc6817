package config

import (
	_ "embed"

	"github.com/lazysuperheroes/mission-cli/config/configs"
)

//go:embed .env.example
var EnvExample string

//go:embed .gitignore
var GitIgnore string

// DefaultMissionYaml is the mission.yaml written by `config init`
func DefaultMissionYaml() []byte {
	return configs.ConfigYamls[configs.LatestVersion]
}
