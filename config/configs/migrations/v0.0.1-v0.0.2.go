package configMigrations

import (
	"github.com/lazysuperheroes/mission-cli/pkg/migration"

	"gopkg.in/yaml.v3"
)

// Migration_0_0_1_to_0_0_2 adds telemetry settings, the mirror rate limit
// and the cache section, and renames the default Directus collection
func Migration_0_0_1_to_0_0_2(user, old, new *yaml.Node) (*yaml.Node, error) {
	engine := migration.PatchEngine{
		Old:  old,
		New:  new,
		User: user,
		Rules: []migration.PatchRule{
			{Path: []string{"project", "project_uuid"}, Condition: migration.Always{}},
			{Path: []string{"project", "telemetry_enabled"}, Condition: migration.IfUnchanged{}},
			{Path: []string{"network", "mirror_rps"}, Condition: migration.IfUnchanged{}},
			{Path: []string{"directus", "collection"}, Condition: migration.IfUnchanged{}},
			{Path: []string{"cache"}, Condition: migration.IfUnchanged{}},
		},
	}
	if err := engine.Apply(); err != nil {
		return nil, err
	}
	migration.SetVersion(user, "0.0.2")
	return user, nil
}
