package commands

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/lazysuperheroes/mission-cli/pkg/codec"
	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/common/contracts"
	"github.com/urfave/cli/v2"
)

// BoostCommand buys and configures mission boosts
var BoostCommand = opGroup{
	Name:     "boost",
	Usage:    "Buy and configure mission boosts",
	Contract: contracts.BoostManagerContract,
	Ops: []contractOp{
		{Name: "buy-lazy", Usage: "Boost a mission by paying LAZY", ArgsUsage: "<mission>", Method: "boostWithLazy", Mutating: true},
		{Name: "buy-gem", Usage: "Boost a mission with a gem card", ArgsUsage: "<mission> <token> <serial>", Method: "boostWithGemCards", Mutating: true},
		{Name: "check", Usage: "Check whether a user holds a boost on a mission", ArgsUsage: "<mission> <user>", Method: "hasBoost"},
		{Name: "set-lazy-cost", Usage: "Set the LAZY price of a boost", ArgsUsage: "<amount>", Method: "setLazyBoostCost", Mutating: true, Args: lazyAmountArgs},
		{Name: "set-reduction", Usage: "Set the duration reduction of a LAZY boost, in percent", ArgsUsage: "<percent>", Method: "setLazyBoostReduction", Mutating: true},
		{Name: "add-gem-collection", Usage: "Add a gem collection to a boost level", ArgsUsage: "<level> <token>", Method: "addCollectionToBoostLevel", Mutating: true},
	},
	Extra: []*cli.Command{
		viewsCommand("info", "Show boost prices", contracts.BoostManagerContract,
			"lazyBoostCost", "lazyBoostReduction", "feeBurnPercentage"),
	},
}.command()

// lazyAmountArgs parses a single LAZY amount in display units
func lazyAmountArgs(cCtx *cli.Context, _ *common.Session, m abi.Method) ([]any, error) {
	if err := requireArgs(cCtx, "<amount>"); err != nil {
		return nil, err
	}
	if len(m.Inputs) != 1 {
		return nil, fmt.Errorf("%s takes %d inputs, expected one amount", codec.Signature(m), len(m.Inputs))
	}
	amount, err := lazyAmount(cCtx.Args().First())
	if err != nil {
		return nil, err
	}
	return []any{amount}, nil
}
