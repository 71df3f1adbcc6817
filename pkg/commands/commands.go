package commands

import "github.com/urfave/cli/v2"

// MissionCommands returns the contract, mirror, manifest and cache commands
func MissionCommands() []*cli.Command {
	return []*cli.Command{
		DeploymentsCommand,
		ContractCommand,
		MissionCommand,
		FactoryCommand,
		BoostCommand,
		StakingCommand,
		GasCommand,
		DelegateCommand,
		TokenCommand,
		AccountCommand,
		CacheCommand,
	}
}
