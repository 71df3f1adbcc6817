package commands

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/lazysuperheroes/mission-cli/pkg/codec"
	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/common/contracts"
	"github.com/urfave/cli/v2"
)

// DelegateCommand drives the LazyDelegateRegistry
var DelegateCommand = opGroup{
	Name:     "delegate",
	Usage:    "Delegate wallets and NFTs through the LazyDelegateRegistry",
	Contract: contracts.LazyDelegateRegistryContract,
	Ops: []contractOp{
		{Name: "wallet", Usage: "Delegate the operator wallet", ArgsUsage: "<to>", Method: "delegateWalletTo", Mutating: true},
		{Name: "revoke-wallet", Usage: "Revoke the wallet delegation", Method: "revokeDelegateWallet", Mutating: true},
		{Name: "get-wallet", Usage: "Show the delegate of a wallet", ArgsUsage: "<owner>", Method: "getDelegateWallet"},
		{Name: "nft", Usage: "Delegate NFTs of one collection", ArgsUsage: "<to> <token> <serials>", Method: "delegateNFT", Mutating: true},
		{Name: "revoke-nft", Usage: "Revoke NFT delegations", ArgsUsage: "<token> <serials>", Method: "revokeDelegateNFT", Mutating: true},
		{Name: "nft-owner", Usage: "Show who an NFT is delegated to", ArgsUsage: "<token> <serial>", Method: "getNFTDelegatedTo"},
		{Name: "check", Usage: "Check whether a delegate may act for an NFT", ArgsUsage: "<delegate> <token> <serial>", Method: "checkDelegateToken"},
		{Name: "list", Usage: "List the NFTs delegated to an account", ArgsUsage: "<delegate>", Method: "getNFTsDelegatedTo"},
		{Name: "tokens", Usage: "List the collections with delegations", Method: "getTokensWithDelegates"},
		{
			Name:      "serials",
			Usage:     "Page through the delegated serials of a collection",
			ArgsUsage: "<token>",
			Method:    "getSerialsDelegatedByRange",
			Flags: []cli.Flag{
				&cli.Uint64Flag{Name: "offset", Usage: "First serial index"},
				&cli.Uint64Flag{Name: "limit", Value: 50, Usage: "Page size"},
			},
			Args: serialRangeArgs,
		},
		{Name: "total", Usage: "Count the delegated serials", Method: "totalSerialsDelegated"},
	},
}.command()

func serialRangeArgs(cCtx *cli.Context, _ *common.Session, m abi.Method) ([]any, error) {
	if err := requireArgs(cCtx, "<token>"); err != nil {
		return nil, err
	}
	if len(m.Inputs) != 3 {
		return nil, fmt.Errorf("%s does not take a token, offset and limit", codec.Signature(m))
	}
	token, err := codec.ParseArg(m.Inputs[0].Type, cCtx.Args().First())
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	if cCtx.Uint64("limit") == 0 {
		return nil, fmt.Errorf("--limit must be positive")
	}
	offset := new(big.Int).SetUint64(cCtx.Uint64("offset"))
	limit := new(big.Int).SetUint64(cCtx.Uint64("limit"))
	return []any{token, offset, limit}, nil
}
