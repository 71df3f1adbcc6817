package commands

import (
	"fmt"

	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/common/contracts"
	"github.com/lazysuperheroes/mission-cli/pkg/manifest"
	"github.com/urfave/cli/v2"
)

var missionNameFlag = &cli.StringFlag{
	Name:  "record-as",
	Usage: "Record the deployed mission in the manifest under this name",
}

// FactoryCommand administers the MissionFactory
var FactoryCommand = opGroup{
	Name:     "factory",
	Usage:    "Deploy missions and manage factory roles",
	Contract: contracts.MissionFactoryContract,
	Ops: []contractOp{
		{Name: "list", Usage: "List the deployed missions", Method: "getDeployedMissions"},
		{
			Name:      "deploy-mission",
			Usage:     "Deploy a mission from the factory",
			ArgsUsage: "<duration> <fee> <decrease-rate> <slots> <start> [...]",
			Method:    "deployMission",
			Mutating:  true,
			Flags:     []cli.Flag{missionNameFlag},
			After:     recordDeployedMission,
		},
		{Name: "admins", Usage: "List the factory admins", Method: "getAdmins"},
		{Name: "add-admin", Usage: "Grant factory admin", ArgsUsage: "<account>", Method: "addAdmin", Mutating: true, After: recordRole(manifest.RoleFactoryAdmins)},
		{Name: "remove-admin", Usage: "Revoke factory admin", ArgsUsage: "<account>", Method: "removeAdmin", Mutating: true, After: forgetRole(manifest.RoleFactoryAdmins)},
		{Name: "add-deployer", Usage: "Allow an account to deploy missions", ArgsUsage: "<account>", Method: "addDeployer", Mutating: true, After: recordRole(manifest.RoleFactoryDeployers)},
		{Name: "remove-deployer", Usage: "Revoke a mission deployer", ArgsUsage: "<account>", Method: "removeDeployer", Mutating: true, After: forgetRole(manifest.RoleFactoryDeployers)},
		{Name: "set-boost-manager", Usage: "Point the factory at a BoostManager", ArgsUsage: "<contract>", Method: "updateBoostManager", Mutating: true},
	},
}.command()

// recordDeployedMission stores the newest factory mission as a manifest
// example when --record-as is set
func recordDeployedMission(cCtx *cli.Context, s *common.Session, _ []any) error {
	name := cCtx.String("record-as")
	if name == "" {
		return nil
	}
	inst, err := s.ResolveContract(contracts.MissionFactoryContract, cCtx.String("contract"))
	if err != nil {
		return err
	}
	caller, err := s.Caller()
	if err != nil {
		return err
	}
	out, err := caller.QueryOne(cCtx.Context, inst, "getDeployedMissions")
	if err != nil {
		return fmt.Errorf("mission deployed but not recorded: %w", err)
	}
	missions, ok := toAddresses(out)
	if !ok || len(missions) == 0 {
		return fmt.Errorf("mission deployed but the factory lists no missions")
	}
	id, ok := entityOf(missions[len(missions)-1])
	if !ok {
		return fmt.Errorf("mission deployed but %s has no contract id", missions[len(missions)-1].Hex())
	}
	if err := s.Manifests.AddMissionExample(s.Network.String(), manifest.MissionExample{ContractID: id, Name: name}); err != nil {
		return err
	}
	s.Logger.Info("Recorded mission %s as %s", id, name)
	return nil
}
