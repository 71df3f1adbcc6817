package commands

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/hedera"
	"github.com/urfave/cli/v2"
)

// AccountCommand inspects accounts through the mirror node
var AccountCommand = &cli.Command{
	Name:  "account",
	Usage: "Inspect accounts through the mirror node",
	Subcommands: []*cli.Command{
		{
			Name:      "info",
			Usage:     "Show HBAR balance, EVM address and token balances",
			ArgsUsage: "[account]",
			Flags:     withGlobalFlags(),
			Action:    accountInfoAction,
		},
		{
			Name:      "nfts",
			Usage:     "List the NFTs an account holds",
			ArgsUsage: "[account]",
			Flags: withGlobalFlags(&cli.StringFlag{
				Name:  "token",
				Usage: "Only list serials of this collection",
			}),
			Action: accountNFTsAction,
		},
	},
}

// accountArg returns the positional account or ACCOUNT_ID
func accountArg(cCtx *cli.Context) (string, error) {
	if cCtx.Args().Len() > 1 {
		return "", fmt.Errorf("%s expects at most one account", cCtx.Command.Name)
	}
	if v := cCtx.Args().First(); v != "" {
		return v, nil
	}
	if id, ok := common.AccountIDFromEnv(); ok {
		return id.String(), nil
	}
	return "", fmt.Errorf("no account given and %s is not set", common.EnvAccountID)
}

func accountInfoAction(cCtx *cli.Context) error {
	account, err := accountArg(cCtx)
	if err != nil {
		return err
	}
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	acct, err := s.Mirror.GetAccount(cCtx.Context, account)
	if err != nil {
		return err
	}

	log := s.Logger
	log.Title("Account %s on %s", acct.Account, s.Network)
	log.Info("EVM address: %s", acct.EVMAddress)
	log.Info("Balance:     %s", hedera.FormatHbar(big.NewInt(acct.Balance.Balance)))
	if acct.Key != nil {
		log.Info("Key type:    %s", acct.Key.Type)
	}
	if acct.Memo != "" {
		log.Info("Memo:        %s", acct.Memo)
	}
	if acct.Deleted {
		log.Warn("Account is deleted")
	}

	balances, err := s.Mirror.GetAccountTokens(cCtx.Context, acct.Account, "")
	if err != nil {
		return err
	}
	log.Info("Tokens:      %d", len(balances))
	reportTokenBalances(cCtx, s, balances)
	return nil
}

func accountNFTsAction(cCtx *cli.Context) error {
	account, err := accountArg(cCtx)
	if err != nil {
		return err
	}
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	nfts, err := s.Mirror.GetAccountNFTs(cCtx.Context, account, cCtx.String("token"))
	if err != nil {
		return err
	}

	s.Logger.Title("NFTs of %s", account)
	if len(nfts) == 0 {
		s.Logger.Info("No NFTs")
		return nil
	}
	byToken := make(map[string][]int64)
	for _, n := range nfts {
		if n.Deleted {
			continue
		}
		byToken[n.TokenID] = append(byToken[n.TokenID], n.SerialNumber)
	}
	tokens := make([]string, 0, len(byToken))
	for t := range byToken {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	for _, t := range tokens {
		serials := byToken[t]
		sort.Slice(serials, func(i, j int) bool { return serials[i] < serials[j] })
		s.Logger.Info("%s (%d): %v", t, len(serials), serials)
	}
	return nil
}
