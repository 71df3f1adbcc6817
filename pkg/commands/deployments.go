package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/hedera"
	"github.com/lazysuperheroes/mission-cli/pkg/manifest"
	"github.com/urfave/cli/v2"
)

// DeploymentsCommand edits the per-network deployment manifests
var DeploymentsCommand = &cli.Command{
	Name:    "deployments",
	Aliases: []string{"deploy"},
	Usage:   "Track contract addresses, roles and metadata per network",
	Subcommands: []*cli.Command{
		{
			Name:   "show",
			Usage:  "Print the manifest of the selected network",
			Flags:  withGlobalFlags(),
			Action: deploymentsShowAction,
		},
		{
			Name:   "list",
			Usage:  "List the contracts of the selected network, or every manifest with --all",
			Flags:  withGlobalFlags(&cli.BoolFlag{Name: "all", Usage: "List the networks that have a manifest"}),
			Action: deploymentsListAction,
		},
		{
			Name:      "set-contract",
			Usage:     "Add or update a contract entry",
			ArgsUsage: "<name> <contractId>",
			Flags: withGlobalFlags(
				&cli.StringFlag{Name: "evm-address", Usage: "EVM address, derived from the id when omitted"},
				&cli.StringFlag{Name: "source", Usage: "Solidity source path"},
				&cli.StringSliceFlag{Name: "depends-on", Usage: "Contracts this one depends on"},
				&cli.StringFlag{Name: "contract-version", Usage: "Deployed contract version"},
			),
			Action: deploymentsSetContractAction,
		},
		{
			Name:      "remove-contract",
			Usage:     "Remove a contract entry",
			ArgsUsage: "<name>",
			Flags:     withGlobalFlags(common.YesFlag),
			Action:    deploymentsRemoveContractAction,
		},
		{
			Name:      "add-role",
			Usage:     "Record an account in a role (" + strings.Join(manifest.RoleNames, ", ") + ")",
			ArgsUsage: "<role> <account>",
			Flags:     withGlobalFlags(),
			Action: func(cCtx *cli.Context) error {
				return deploymentsRoleAction(cCtx, true)
			},
		},
		{
			Name:      "remove-role",
			Usage:     "Remove an account from a role",
			ArgsUsage: "<role> <account>",
			Flags:     withGlobalFlags(),
			Action: func(cCtx *cli.Context) error {
				return deploymentsRoleAction(cCtx, false)
			},
		},
		{
			Name:      "add-collection",
			Usage:     "Record a staking collection",
			ArgsUsage: "<tokenId>",
			Flags: withGlobalFlags(
				&cli.StringFlag{Name: "name", Usage: "Collection name"},
				&cli.Int64Flag{Name: "max-rate", Value: -1, Usage: "Maximum reward rate"},
				&cli.BoolFlag{Name: "remove", Usage: "Remove the collection instead"},
			),
			Action: deploymentsCollectionAction,
		},
		{
			Name:      "add-mission",
			Usage:     "Record a reference mission",
			ArgsUsage: "<contractId>",
			Flags: withGlobalFlags(
				&cli.StringFlag{Name: "name", Usage: "Mission name"},
				&cli.StringFlag{Name: "description", Usage: "Mission description"},
			),
			Action: deploymentsMissionAction,
		},
		{
			Name:      "add-issue",
			Usage:     "Note a known issue on a contract",
			ArgsUsage: "<contract> <issue...>",
			Flags:     withGlobalFlags(),
			Action:    deploymentsIssueAction,
		},
		{
			Name:   "validate",
			Usage:  "Check ids, addresses and dependencies of the manifest",
			Flags:  withGlobalFlags(),
			Action: deploymentsValidateAction,
		},
		{
			Name:  "export",
			Usage: "Write the manifest as json or yaml",
			Flags: withGlobalFlags(
				&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "json or yaml"},
			),
			Action: deploymentsExportAction,
		},
		{
			Name:  "init",
			Usage: "Create an empty manifest for the selected network",
			Flags: withGlobalFlags(
				&cli.StringFlag{Name: "description", Usage: "Manifest description"},
			),
			Action: deploymentsInitAction,
		},
		{
			Name:   "upgrade",
			Usage:  "Upgrade the manifest to the current format version",
			Flags:  withGlobalFlags(),
			Action: deploymentsUpgradeAction,
		},
	},
}

func deploymentsShowAction(cCtx *cli.Context) error {
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	m, err := s.Manifests.Load(s.Network.String())
	if err != nil {
		return err
	}
	data, err := manifest.Export(m, "json")
	if err != nil {
		return err
	}
	_, err = cCtx.App.Writer.Write(data)
	return err
}

func deploymentsListAction(cCtx *cli.Context) error {
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	if cCtx.Bool("all") {
		networks, err := s.Manifests.Networks()
		if err != nil {
			return err
		}
		s.Logger.Title("Manifests in %s", s.Manifests.Dir())
		for _, n := range networks {
			s.Logger.Info("  %s", n)
		}
		return nil
	}

	m, err := s.Manifests.Load(s.Network.String())
	if err != nil {
		return err
	}
	s.Logger.Title("%s contracts (%s)", s.Network, s.Manifests.Path(s.Network.String()))
	if len(m.Contracts) == 0 {
		s.Logger.Info("No contracts recorded")
	}
	for _, name := range m.ContractNames() {
		c := m.Contracts[name]
		s.Logger.Info("  %-22s %-14s %s", name, c.ContractID, c.EVMAddress)
	}
	return nil
}

func deploymentsSetContractAction(cCtx *cli.Context) error {
	if err := requireArgs(cCtx, "<name>", "<contractId>"); err != nil {
		return err
	}
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	name, id := cCtx.Args().Get(0), cCtx.Args().Get(1)
	if _, err := hedera.ParseEntityID(id); err != nil {
		return fmt.Errorf("contract id: %w", err)
	}
	entry := manifest.ContractEntry{
		ContractID: id,
		EVMAddress: cCtx.String("evm-address"),
		SourcePath: cCtx.String("source"),
		Version:    cCtx.String("contract-version"),
		DeployedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if deps := cCtx.StringSlice("depends-on"); len(deps) > 0 {
		entry.Dependencies = deps
	}
	saved, err := s.Manifests.UpdateContract(s.Network.String(), name, entry)
	if err != nil {
		return err
	}
	s.Logger.Info("%s set to %s (%s) in %s", name, saved.ContractID, saved.EVMAddress, s.Manifests.Path(s.Network.String()))
	return nil
}

func deploymentsRemoveContractAction(cCtx *cli.Context) error {
	if err := requireArgs(cCtx, "<name>"); err != nil {
		return err
	}
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	name := cCtx.Args().First()
	if err := s.Confirm(fmt.Sprintf("Remove %s from the %s manifest?", name, s.Network)); err != nil {
		return err
	}
	if err := s.Manifests.RemoveContract(s.Network.String(), name); err != nil {
		return err
	}
	s.Logger.Info("Removed %s", name)
	return nil
}

func deploymentsRoleAction(cCtx *cli.Context, add bool) error {
	if err := requireArgs(cCtx, "<role>", "<account>"); err != nil {
		return err
	}
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	role, account := cCtx.Args().Get(0), cCtx.Args().Get(1)
	if add {
		err = s.Manifests.AddRole(s.Network.String(), role, account)
	} else {
		err = s.Manifests.RemoveRole(s.Network.String(), role, account)
	}
	if err != nil {
		return err
	}
	verb := "Added"
	if !add {
		verb = "Removed"
	}
	s.Logger.Info("%s %s in %s", verb, account, role)
	return nil
}

func deploymentsCollectionAction(cCtx *cli.Context) error {
	if err := requireArgs(cCtx, "<tokenId>"); err != nil {
		return err
	}
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	tokenID := cCtx.Args().First()
	if cCtx.Bool("remove") {
		if err := s.Manifests.RemoveStakingCollection(s.Network.String(), tokenID); err != nil {
			return err
		}
		s.Logger.Info("Removed staking collection %s", tokenID)
		return nil
	}

	c := manifest.StakingCollection{TokenID: tokenID, Name: cCtx.String("name")}
	if rate := cCtx.Int64("max-rate"); rate >= 0 {
		c.MaxRewardRate = &rate
	}
	if err := s.Manifests.AddStakingCollection(s.Network.String(), c); err != nil {
		return err
	}
	s.Logger.Info("Recorded staking collection %s", tokenID)
	return nil
}

func deploymentsMissionAction(cCtx *cli.Context) error {
	if err := requireArgs(cCtx, "<contractId>"); err != nil {
		return err
	}
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	ex := manifest.MissionExample{
		ContractID:  cCtx.Args().First(),
		Name:        cCtx.String("name"),
		Description: cCtx.String("description"),
	}
	if err := s.Manifests.AddMissionExample(s.Network.String(), ex); err != nil {
		return err
	}
	s.Logger.Info("Recorded mission %s", ex.ContractID)
	return nil
}

func deploymentsIssueAction(cCtx *cli.Context) error {
	if cCtx.Args().Len() < 2 {
		return fmt.Errorf("add-issue expects <contract> <issue...>")
	}
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	contract := cCtx.Args().First()
	issue := strings.Join(cCtx.Args().Tail(), " ")
	if err := s.Manifests.AddKnownIssue(s.Network.String(), contract, issue); err != nil {
		return err
	}
	s.Logger.Info("Noted issue on %s", contract)
	return nil
}

func deploymentsValidateAction(cCtx *cli.Context) error {
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	m, err := s.Manifests.Load(s.Network.String())
	if err != nil {
		return err
	}
	problems := manifest.Validate(m)
	if len(problems) == 0 {
		s.Logger.Info("%s manifest is valid (%d contracts)", s.Network, len(m.Contracts))
		return nil
	}
	for _, p := range problems {
		s.Logger.Error("%s", p)
	}
	return fmt.Errorf("%s manifest has %d problem(s)", s.Network, len(problems))
}

func deploymentsExportAction(cCtx *cli.Context) error {
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	m, err := s.Manifests.Load(s.Network.String())
	if err != nil {
		return err
	}
	data, err := manifest.Export(m, cCtx.String("format"))
	if err != nil {
		return err
	}
	_, err = cCtx.App.Writer.Write(data)
	return err
}

func deploymentsInitAction(cCtx *cli.Context) error {
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	network := s.Network.String()
	if _, err := s.Manifests.Load(network); err == nil {
		return fmt.Errorf("%s already exists", s.Manifests.Path(network))
	} else if !errors.Is(err, manifest.ErrManifestNotFound) {
		return err
	}

	m := manifest.New(network)
	m.Description = cCtx.String("description")
	if op, err := s.Operator(); err == nil {
		m.Deployer = op.AccountID.String()
	}
	if err := s.Manifests.Save(network, m); err != nil {
		return err
	}
	s.Logger.Info("Created %s (chain id %d)", s.Manifests.Path(network), m.ChainID)
	return nil
}

func deploymentsUpgradeAction(cCtx *cli.Context) error {
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	changed, err := s.Manifests.UpgradeFile(s.Network.String())
	if err != nil {
		return err
	}
	if !changed {
		s.Logger.Info("%s manifest is already at version %s", s.Network, manifest.CurrentVersion)
		return nil
	}
	s.Logger.Info("Upgraded %s manifest to version %s", s.Network, manifest.CurrentVersion)
	return nil
}
