package commands

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/lazysuperheroes/mission-cli/pkg/codec"
	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/common/contracts"
	"github.com/lazysuperheroes/mission-cli/pkg/hedera"
	"github.com/lazysuperheroes/mission-cli/pkg/manifest"
	"github.com/urfave/cli/v2"
)

// StakingCommand manages LazyNFTStaking
var StakingCommand = opGroup{
	Name:     "staking",
	Usage:    "Stake NFTs and manage staking collections",
	Contract: contracts.LazyNFTStakingContract,
	Ops: []contractOp{
		{Name: "stake", Usage: "Stake NFTs of one collection", ArgsUsage: "<token> <serials>", Method: "stake", Mutating: true, Args: tokenSerialsArgs},
		{Name: "unstake", Usage: "Unstake NFTs of one collection", ArgsUsage: "<token> <serials>", Method: "unstake", Mutating: true, Args: tokenSerialsArgs},
		{Name: "staked", Usage: "List the NFTs a user has staked", ArgsUsage: "<user>", Method: "getStakedNFTs"},
		{Name: "collections", Usage: "List the stakable collections", Method: "getStakableCollections"},
		{
			Name:      "add-collection",
			Usage:     "Make a collection stakable with a maximum reward rate",
			ArgsUsage: "<token> <max-rate>",
			Method:    "setStakeableCollection",
			Mutating:  true,
			Args:      addCollectionArgs,
			After:     recordStakingCollection,
		},
		{Name: "set-distribution-period", Usage: "Set the reward distribution period in seconds", ArgsUsage: "<seconds>", Method: "setDistributionPeriod", Mutating: true},
		{Name: "rewards", Usage: "Show the pending rewards of a user", ArgsUsage: "<user>", Method: "calculateRewards"},
	},
	Extra: []*cli.Command{
		viewsCommand("info", "Show staking totals", contracts.LazyNFTStakingContract,
			"totalItemsStaked", "distributionPeriod", "boostRate", "getStakableCollections"),
	},
}.command()

// tokenSerialsArgs expands "<token> <serials>" into collection arrays when
// the method takes them, otherwise parses the args as given
func tokenSerialsArgs(cCtx *cli.Context, _ *common.Session, m abi.Method) ([]any, error) {
	if !isCollectionArrays(m) {
		return codec.ParseArgs(m, cCtx.Args().Slice())
	}
	if cCtx.Args().Len() < 2 {
		return nil, fmt.Errorf("%s expects <token> <serials>", cCtx.Command.Name)
	}
	token, err := hedera.ResolveAddress(cCtx.Args().First())
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	serials, err := parseSerials(cCtx.Args().Tail())
	if err != nil {
		return nil, err
	}
	return collectionArrays(token, serials), nil
}

func addCollectionArgs(cCtx *cli.Context, _ *common.Session, m abi.Method) ([]any, error) {
	if err := requireArgs(cCtx, "<token>", "<max-rate>"); err != nil {
		return nil, err
	}
	if !isCollectionArrays(m) {
		return codec.ParseArgs(m, cCtx.Args().Slice())
	}
	token, err := hedera.ResolveAddress(cCtx.Args().Get(0))
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	rate, ok := new(big.Int).SetString(cCtx.Args().Get(1), 10)
	if !ok || rate.Sign() < 0 {
		return nil, fmt.Errorf("invalid max rate %q", cCtx.Args().Get(1))
	}
	return collectionArrays(token, []*big.Int{rate}), nil
}

// recordStakingCollection mirrors a new stakable collection into the manifest
func recordStakingCollection(cCtx *cli.Context, s *common.Session, args []any) error {
	tokens, ok := toAddresses(args[0])
	if !ok || len(tokens) == 0 {
		return nil
	}
	id, ok := entityOf(tokens[0])
	if !ok {
		return nil
	}
	entry := manifest.StakingCollection{TokenID: id}
	if rates, ok := args[1].([]*big.Int); ok && len(rates) > 0 && rates[0].IsInt64() {
		rate := rates[0].Int64()
		entry.MaxRewardRate = &rate
	}
	if err := s.Manifests.AddStakingCollection(s.Network.String(), entry); err != nil {
		return fmt.Errorf("transaction succeeded but the manifest was not updated: %w", err)
	}
	s.Logger.Info("Recorded staking collection %s", id)
	return nil
}
