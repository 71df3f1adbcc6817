package commands

import (
	"fmt"
	"math/big"

	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/common/contracts"
	"github.com/lazysuperheroes/mission-cli/pkg/hedera"
	"github.com/lazysuperheroes/mission-cli/pkg/mirror"
	"github.com/urfave/cli/v2"
)

// TokenCommand inspects tokens and manages associations and allowances
var TokenCommand = &cli.Command{
	Name:  "token",
	Usage: "Inspect tokens and manage associations and allowances",
	Subcommands: []*cli.Command{
		{
			Name:      "info",
			Usage:     "Show token metadata from the mirror node",
			ArgsUsage: "<tokenId>",
			Flags:     withGlobalFlags(),
			Action:    tokenInfoAction,
		},
		{
			Name:      "associate",
			Usage:     "Associate the operator account with a token",
			ArgsUsage: "<tokenId>",
			Flags:     withGlobalFlags(common.ExecFlags...),
			Action:    tokenAssociateAction,
		},
		{
			Name:      "approve",
			Usage:     "Approve a spender for a fungible token amount",
			ArgsUsage: "<tokenId> <spender> <amount>",
			Flags:     withGlobalFlags(common.ExecFlags...),
			Action:    tokenApproveAction,
		},
		{
			Name:      "approve-nft-all",
			Usage:     "Approve an operator for every NFT of a collection",
			ArgsUsage: "<tokenId> <operator>",
			Flags: withGlobalFlags(append([]cli.Flag{
				&cli.BoolFlag{Name: "revoke", Usage: "Remove the approval instead"},
			}, common.ExecFlags...)...),
			Action: tokenApproveAllAction,
		},
		{
			Name:      "balance",
			Usage:     "Show an account's token balances",
			ArgsUsage: "<account> [tokenId]",
			Flags:     withGlobalFlags(),
			Action:    tokenBalanceAction,
		},
	},
}

// tokenInstance binds one of the token facades to a token id
func tokenInstance(s *common.Session, t contracts.ContractType, tokenID string) (*contracts.ContractInstance, error) {
	addr, err := hedera.ResolveAddress(tokenID)
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	return s.Registry.RegisterContract(contracts.ContractInfo{
		Name:       tokenID,
		Type:       t,
		Address:    addr,
		ContractID: tokenID,
	})
}

func tokenInfoAction(cCtx *cli.Context) error {
	if err := requireArgs(cCtx, "<tokenId>"); err != nil {
		return err
	}
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	tok, err := s.Mirror.GetToken(cCtx.Context, cCtx.Args().First())
	if err != nil {
		return err
	}

	log := s.Logger
	log.Title("%s (%s)", tok.Name, tok.TokenID)
	log.Info("Symbol:   %s", tok.Symbol)
	log.Info("Type:     %s", tok.Type)
	log.Info("Decimals: %d", tok.DecimalsInt())
	log.Info("Supply:   %s", displayAmount(tok.TotalSupply, tok.DecimalsInt()))
	if tok.SupplyType == "FINITE" {
		log.Info("Max:      %s", displayAmount(tok.MaxSupply, tok.DecimalsInt()))
	}
	log.Info("Treasury: %s", tok.TreasuryAccountID)
	if tok.Memo != "" {
		log.Info("Memo:     %s", tok.Memo)
	}
	if tok.Deleted {
		log.Warn("Token is deleted")
	}
	return nil
}

func tokenAssociateAction(cCtx *cli.Context) error {
	if err := requireArgs(cCtx, "<tokenId>"); err != nil {
		return err
	}
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	inst, err := tokenInstance(s, contracts.HRCContract, cCtx.Args().First())
	if err != nil {
		return err
	}
	m, err := inst.Method("associate")
	if err != nil {
		return err
	}
	_, err = executeAndReport(cCtx, s, inst, m, nil)
	return err
}

func tokenApproveAction(cCtx *cli.Context) error {
	if err := requireArgs(cCtx, "<tokenId>", "<spender>", "<amount>"); err != nil {
		return err
	}
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	tokenID := cCtx.Args().Get(0)
	tok, err := s.Mirror.GetToken(cCtx.Context, tokenID)
	if err != nil {
		return err
	}
	if tok.IsNFT() {
		return fmt.Errorf("%s is an NFT collection: use approve-nft-all", tokenID)
	}
	spender, err := hedera.ResolveAddress(cCtx.Args().Get(1))
	if err != nil {
		return fmt.Errorf("spender: %w", err)
	}
	amount, err := hedera.ParseDecimal(cCtx.Args().Get(2), tok.DecimalsInt())
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	inst, err := tokenInstance(s, contracts.ERC20Contract, tokenID)
	if err != nil {
		return err
	}
	m, err := inst.Method("approve")
	if err != nil {
		return err
	}
	_, err = executeAndReport(cCtx, s, inst, m, []any{spender, amount})
	return err
}

func tokenApproveAllAction(cCtx *cli.Context) error {
	if err := requireArgs(cCtx, "<tokenId>", "<operator>"); err != nil {
		return err
	}
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	operator, err := hedera.ResolveAddress(cCtx.Args().Get(1))
	if err != nil {
		return fmt.Errorf("operator: %w", err)
	}
	inst, err := tokenInstance(s, contracts.ERC721Contract, cCtx.Args().Get(0))
	if err != nil {
		return err
	}
	m, err := inst.Method("setApprovalForAll")
	if err != nil {
		return err
	}
	_, err = executeAndReport(cCtx, s, inst, m, []any{operator, !cCtx.Bool("revoke")})
	return err
}

func tokenBalanceAction(cCtx *cli.Context) error {
	if cCtx.Args().Len() < 1 || cCtx.Args().Len() > 2 {
		return fmt.Errorf("balance expects <account> [tokenId]")
	}
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	account := cCtx.Args().Get(0)
	tokenID := cCtx.Args().Get(1)

	balances, err := s.Mirror.GetAccountTokens(cCtx.Context, account, tokenID)
	if err != nil {
		return err
	}
	if tokenID != "" && len(balances) == 0 {
		return fmt.Errorf("%s is not associated with %s", account, tokenID)
	}
	s.Logger.Title("Token balances of %s", account)
	reportTokenBalances(cCtx, s, balances)
	return nil
}

// reportTokenBalances prints balances in display units, looking up each
// token's decimals once
func reportTokenBalances(cCtx *cli.Context, s *common.Session, balances []mirror.TokenBalance) {
	if len(balances) == 0 {
		s.Logger.Info("No token associations")
		return
	}
	for _, b := range balances {
		label, decimals := b.TokenID, 0
		if tok, err := s.Mirror.GetToken(cCtx.Context, b.TokenID); err == nil {
			decimals = tok.DecimalsInt()
			if tok.Symbol != "" {
				label = fmt.Sprintf("%s (%s)", b.TokenID, tok.Symbol)
			}
		} else {
			s.Logger.Debug("token %s: %v", b.TokenID, err)
		}
		s.Logger.Info("%s: %s", label, hedera.FormatDecimal(big.NewInt(b.Balance), decimals))
	}
}

// displayAmount formats a mirror integer string in display units with
// thousands separators on the whole part
func displayAmount(raw string, decimals int) string {
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return raw
	}
	if decimals == 0 && v.IsInt64() {
		return printer.Sprintf("%d", v.Int64())
	}
	return hedera.FormatDecimal(v, decimals)
}
