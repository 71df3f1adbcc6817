package commands

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/lazysuperheroes/mission-cli/pkg/codec"
	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/common/contracts"
	"github.com/lazysuperheroes/mission-cli/pkg/common/iface"
	"github.com/lazysuperheroes/mission-cli/pkg/hedera"
	"github.com/urfave/cli/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// contractFlag overrides the env var and manifest entry of a group's contract
var contractFlag = &cli.StringFlag{
	Name:    "contract",
	Aliases: []string{"c"},
	Usage:   "Contract id or EVM address, overriding env and manifest",
}

// contractOp declares a command that calls a single contract method
type contractOp struct {
	Name      string
	Usage     string
	ArgsUsage string
	Method    string
	// Mutating ops print a summary, ask for confirmation and send a
	// transaction; the rest are mirror queries
	Mutating bool
	Flags    []cli.Flag
	// Args converts the command line into ABI values. Nil parses the
	// positional args against the method inputs.
	Args func(cCtx *cli.Context, s *common.Session, m abi.Method) ([]any, error)
	// After runs once a transaction succeeded
	After func(cCtx *cli.Context, s *common.Session, args []any) error
}

// opGroup is a command group bound to one contract type
type opGroup struct {
	Name     string
	Usage    string
	Contract contracts.ContractType
	Ops      []contractOp
	Extra    []*cli.Command
}

func (g opGroup) command() *cli.Command {
	subs := make([]*cli.Command, 0, len(g.Ops)+len(g.Extra))
	for _, op := range g.Ops {
		subs = append(subs, g.opCommand(op))
	}
	subs = append(subs, g.Extra...)
	return &cli.Command{
		Name:        g.Name,
		Usage:       g.Usage,
		Subcommands: subs,
	}
}

func (g opGroup) opCommand(op contractOp) *cli.Command {
	flags := append([]cli.Flag{contractFlag}, op.Flags...)
	if op.Mutating {
		flags = append(flags, common.ExecFlags...)
	}
	return &cli.Command{
		Name:      op.Name,
		Usage:     op.Usage,
		ArgsUsage: op.ArgsUsage,
		Flags:     withGlobalFlags(flags...),
		Action: func(cCtx *cli.Context) error {
			return runOp(cCtx, g.Contract, op)
		},
	}
}

// withGlobalFlags appends the global flags so they are accepted after the
// subcommand name too
func withGlobalFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags, common.GlobalFlags...)
}

func runOp(cCtx *cli.Context, contract contracts.ContractType, op contractOp) error {
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	inst, err := s.ResolveContract(contract, cCtx.String("contract"))
	if err != nil {
		return err
	}
	m, err := inst.Method(op.Method)
	if err != nil {
		return err
	}

	var args []any
	if op.Args != nil {
		args, err = op.Args(cCtx, s, m)
	} else {
		args, err = codec.ParseArgs(m, cCtx.Args().Slice())
	}
	if err != nil {
		return err
	}

	if !op.Mutating {
		return queryAndReport(cCtx.Context, s, inst, m, args)
	}
	ok, err := executeAndReport(cCtx, s, inst, m, args)
	if err != nil || !ok || op.After == nil {
		return err
	}
	return op.After(cCtx, s, args)
}

func queryAndReport(ctx context.Context, s *common.Session, inst *contracts.ContractInstance, m abi.Method, args []any) error {
	caller, err := s.Caller()
	if err != nil {
		return err
	}
	out, err := caller.Query(ctx, inst, m.Name, args...)
	if err != nil {
		return err
	}
	s.Logger.Title("%s.%s", inst.Info.Name, m.Name)
	for _, line := range codec.FormatOutputs(m.Outputs, out) {
		s.Logger.Info("%s", line)
	}
	return nil
}

// executeAndReport sends a contract call. ok is false for dry runs.
func executeAndReport(cCtx *cli.Context, s *common.Session, inst *contracts.ContractInstance, m abi.Method, args []any) (bool, error) {
	opts, err := execOptions(cCtx)
	if err != nil {
		return false, err
	}
	if !m.IsPayable() && opts.Value != nil && opts.Value.Sign() > 0 {
		return false, fmt.Errorf("%s is not payable: drop --value", m.Name)
	}

	return sendConfirmed(cCtx, s, opts, func(log iface.Logger) {
		log.Title("%s.%s on %s", inst.Info.Name, m.Name, s.Network)
		log.Info("Contract: %s", hedera.DisplayAddress(inst.Info.Address))
		log.Info("Method:   %s", codec.Signature(m))
		for i, in := range m.Inputs {
			name := in.Name
			if name == "" {
				name = fmt.Sprintf("arg%d", i)
			}
			log.Info("  %s: %s", name, codec.FormatValue(args[i]))
		}
	}, func(caller *common.ContractCaller) (*common.ExecResult, error) {
		return caller.Execute(cCtx.Context, inst, m.Name, opts, args...)
	})
}

// sendConfirmed prints the summary, checks credentials, asks for
// confirmation and runs send. It reports whether a real transaction
// succeeded.
func sendConfirmed(cCtx *cli.Context, s *common.Session, opts common.ExecOptions, summary func(iface.Logger), send func(*common.ContractCaller) (*common.ExecResult, error)) (bool, error) {
	caller, err := s.Caller()
	if err != nil {
		return false, err
	}
	if caller.Operator() == nil {
		return false, common.ErrMissingCredentials
	}

	log := s.Logger
	summary(log)
	log.Info("Operator: %s", caller.Operator().AccountID)
	if opts.Value != nil && opts.Value.Sign() > 0 {
		log.Info("Value:    %s", hedera.FormatHbar(opts.Value))
	}
	if opts.Gas > 0 {
		log.Info("Gas:      %s", printer.Sprintf("%d", opts.Gas))
	}

	if !opts.DryRun {
		if err := s.Confirm("Proceed?"); err != nil {
			return false, err
		}
	}

	res, err := send(caller)
	if err != nil {
		if res != nil && res.Hash != (ethcommon.Hash{}) {
			log.Error("Transaction %s finished with status %s", res.Hash.Hex(), res.Status)
		}
		return false, err
	}
	reportResult(log, res)
	return !res.DryRun, nil
}

func reportResult(log iface.Logger, res *common.ExecResult) {
	if res.DryRun {
		log.Info("Dry run: nothing sent")
		log.Info("Gas limit: %s", printer.Sprintf("%d", res.GasLimit))
		if len(res.Data) > 0 {
			log.Info("Calldata:  %s", hexutil.Encode(res.Data))
		}
		return
	}
	log.Info("Status:      %s", res.Status)
	log.Info("Transaction: %s", res.Hash.Hex())
	log.Info("Gas used:    %s of %s", printer.Sprintf("%d", res.GasUsed), printer.Sprintf("%d", res.GasLimit))
}

func execOptions(cCtx *cli.Context) (common.ExecOptions, error) {
	opts := common.ExecOptions{
		Gas:    cCtx.Uint64("gas"),
		DryRun: cCtx.Bool("dry-run"),
	}
	if raw := cCtx.String("value"); raw != "" {
		v, err := hedera.ParseHbar(raw)
		if err != nil {
			return opts, fmt.Errorf("--value: %w", err)
		}
		opts.Value = v
	}
	return opts, nil
}

// viewsCommand queries several zero-argument views of a contract. Views the
// ABI lacks or that revert are reported and skipped.
func viewsCommand(name, usage string, contract contracts.ContractType, methods ...string) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: withGlobalFlags(contractFlag),
		Action: func(cCtx *cli.Context) error {
			s, err := common.SessionFromCLI(cCtx)
			if err != nil {
				return err
			}
			inst, err := s.ResolveContract(contract, cCtx.String("contract"))
			if err != nil {
				return err
			}
			caller, err := s.Caller()
			if err != nil {
				return err
			}

			s.Logger.Title("%s %s", inst.Info.Name, hedera.DisplayAddress(inst.Info.Address))
			var failed int
			for _, method := range methods {
				m, err := inst.Method(method)
				if err != nil {
					s.Logger.Warn("%s: not in ABI", method)
					failed++
					continue
				}
				out, err := caller.Query(cCtx.Context, inst, method)
				if err != nil {
					s.Logger.Warn("%s: %v", method, err)
					failed++
					continue
				}
				if len(out) == 1 {
					s.Logger.Info("%s: %s", method, codec.FormatValue(out[0]))
					continue
				}
				s.Logger.Info("%s: %s", method, strings.Join(codec.FormatOutputs(m.Outputs, out), ", "))
			}
			if failed == len(methods) {
				return fmt.Errorf("no %s views could be read", inst.Info.Name)
			}
			return nil
		},
	}
}

// requireArgs checks the positional arg count
func requireArgs(cCtx *cli.Context, names ...string) error {
	if cCtx.Args().Len() != len(names) {
		return fmt.Errorf("%s expects %d argument(s): %s", cCtx.Command.Name, len(names), strings.Join(names, " "))
	}
	return nil
}

// lazyAmount parses a LAZY amount using LAZY_DECIMALS
func lazyAmount(s string) (*big.Int, error) {
	v, err := hedera.ParseDecimal(s, common.LazyDecimals())
	if err != nil {
		return nil, fmt.Errorf("invalid LAZY amount %q: %w", s, err)
	}
	return v, nil
}

// parseSerials accepts "1,2,3", "[1,2]" or several positional values
func parseSerials(values []string) ([]*big.Int, error) {
	var out []*big.Int
	for _, v := range values {
		for _, part := range strings.FieldsFunc(strings.Trim(v, "[]"), func(r rune) bool { return r == ',' || r == ' ' }) {
			n, ok := new(big.Int).SetString(part, 10)
			if !ok || n.Sign() < 0 {
				return nil, fmt.Errorf("invalid serial %q", part)
			}
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("at least one serial is required")
	}
	return out, nil
}

// entityOf returns the account id of a long-zero address
func entityOf(v any) (string, bool) {
	addr, ok := v.(ethcommon.Address)
	if !ok {
		return "", false
	}
	id, err := hedera.EntityIDFromEVMAddress(addr)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// toAddresses converts an address[] output
func toAddresses(v any) ([]ethcommon.Address, bool) {
	switch t := v.(type) {
	case []ethcommon.Address:
		return t, true
	case ethcommon.Address:
		return []ethcommon.Address{t}, true
	}
	return nil, false
}

// recordRole returns an After hook that mirrors a granted role into the
// manifest
func recordRole(role string) func(*cli.Context, *common.Session, []any) error {
	return func(cCtx *cli.Context, s *common.Session, args []any) error {
		if len(args) == 0 {
			return nil
		}
		account, ok := entityOf(args[0])
		if !ok {
			s.Logger.Debug("%s is not a long-zero address; manifest roles unchanged", codec.FormatValue(args[0]))
			return nil
		}
		if err := s.Manifests.AddRole(s.Network.String(), role, account); err != nil {
			return fmt.Errorf("transaction succeeded but the manifest was not updated: %w", err)
		}
		s.Logger.Info("Recorded %s in %s", account, role)
		return nil
	}
}

// forgetRole is the inverse of recordRole
func forgetRole(role string) func(*cli.Context, *common.Session, []any) error {
	return func(cCtx *cli.Context, s *common.Session, args []any) error {
		if len(args) == 0 {
			return nil
		}
		account, ok := entityOf(args[0])
		if !ok {
			return nil
		}
		if err := s.Manifests.RemoveRole(s.Network.String(), role, account); err != nil {
			s.Logger.Warn("Manifest roles unchanged: %v", err)
		}
		return nil
	}
}
