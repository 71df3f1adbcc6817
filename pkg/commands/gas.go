package commands

import (
	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/common/contracts"
	"github.com/lazysuperheroes/mission-cli/pkg/common/iface"
	"github.com/lazysuperheroes/mission-cli/pkg/hedera"
	"github.com/urfave/cli/v2"
)

// GasCommand manages the LazyGasStation
var GasCommand = opGroup{
	Name:     "gas",
	Usage:    "Manage the LazyGasStation and its contract users",
	Contract: contracts.LazyGasStationContract,
	Ops: []contractOp{
		{Name: "users", Usage: "List the contracts allowed to draw from the gas station", Method: "getContractUsers"},
		{Name: "add-user", Usage: "Allow a contract to draw from the gas station", ArgsUsage: "<address>", Method: "addContractUser", Mutating: true},
		{Name: "remove-user", Usage: "Revoke a contract user", ArgsUsage: "<address>", Method: "removeContractUser", Mutating: true},
		{Name: "add-admin", Usage: "Grant gas station admin", ArgsUsage: "<account>", Method: "addAdmin", Mutating: true},
		{Name: "refill-lazy", Usage: "Move LAZY from the operator into the gas station", ArgsUsage: "<amount>", Method: "refillLazy", Mutating: true, Args: lazyAmountArgs},
	},
	Extra: []*cli.Command{
		viewsCommand("info", "Show the gas station settings", contracts.LazyGasStationContract,
			"burnPercentage", "getAdmins", "getContractUsers"),
		refillHbarCommand,
	},
}.command()

var refillHbarCommand = &cli.Command{
	Name:      "refill-hbar",
	Usage:     "Send HBAR to the gas station",
	ArgsUsage: "<amount>",
	Flags:     withGlobalFlags(append([]cli.Flag{contractFlag}, common.ExecFlags...)...),
	Action: func(cCtx *cli.Context) error {
		if err := requireArgs(cCtx, "<amount>"); err != nil {
			return err
		}
		amount, err := hedera.ParseHbar(cCtx.Args().First())
		if err != nil {
			return err
		}
		s, err := common.SessionFromCLI(cCtx)
		if err != nil {
			return err
		}
		inst, err := s.ResolveContract(contracts.LazyGasStationContract, cCtx.String("contract"))
		if err != nil {
			return err
		}
		opts, err := execOptions(cCtx)
		if err != nil {
			return err
		}
		opts.Value = amount

		_, err = sendConfirmed(cCtx, s, opts, func(log iface.Logger) {
			log.Title("Refill %s with HBAR on %s", inst.Info.Name, s.Network)
			log.Info("Contract: %s", hedera.DisplayAddress(inst.Info.Address))
		}, func(caller *common.ContractCaller) (*common.ExecResult, error) {
			return caller.Transfer(cCtx.Context, inst.Info.Address, opts)
		})
		return err
	},
}
