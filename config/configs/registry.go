package configs

import (
	_ "embed"

	configMigrations "github.com/lazysuperheroes/mission-cli/config/configs/migrations"
	"github.com/lazysuperheroes/mission-cli/pkg/migration"
)

// LatestVersion is the mission.yaml version this CLI writes
const LatestVersion = "0.0.2"

//go:embed v0.0.1.yaml
var v0_0_1_default []byte

//go:embed v0.0.2.yaml
var v0_0_2_default []byte

// ConfigYamls maps a version to its default mission.yaml
var ConfigYamls = map[string][]byte{
	"0.0.1": v0_0_1_default,
	"0.0.2": v0_0_2_default,
}

// MigrationChain upgrades mission.yaml one version at a time
var MigrationChain = []migration.Step{
	{
		From:    "0.0.1",
		To:      "0.0.2",
		Apply:   configMigrations.Migration_0_0_1_to_0_0_2,
		OldYAML: v0_0_1_default,
		NewYAML: v0_0_2_default,
	},
}
