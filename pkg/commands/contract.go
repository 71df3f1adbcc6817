package commands

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/lazysuperheroes/mission-cli/pkg/codec"
	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/common/contracts"
	"github.com/lazysuperheroes/mission-cli/pkg/mirror"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

// isInteractive reports whether the method picker may be shown. Tests
// replace it.
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ContractCommand calls any method of any known contract
var ContractCommand = &cli.Command{
	Name:  "contract",
	Usage: "Call, inspect and decode any contract from its ABI",
	Subcommands: []*cli.Command{
		{
			Name:      "query",
			Usage:     "Call a read-only method through the mirror node",
			ArgsUsage: "<Contract> [method] [args...]",
			Flags:     withGlobalFlags(contractFlag),
			Action: func(cCtx *cli.Context) error {
				return genericCall(cCtx, false)
			},
		},
		{
			Name:      "exec",
			Usage:     "Send a state-changing method call",
			ArgsUsage: "<Contract> [method] [args...]",
			Flags:     withGlobalFlags(append([]cli.Flag{contractFlag}, common.ExecFlags...)...),
			Action: func(cCtx *cli.Context) error {
				return genericCall(cCtx, true)
			},
		},
		{
			Name:      "events",
			Usage:     "List and decode a contract's event logs",
			ArgsUsage: "<Contract>",
			Flags: withGlobalFlags(
				contractFlag,
				&cli.StringFlag{Name: "event", Aliases: []string{"e"}, Usage: "Only show this event"},
				&cli.IntFlag{Name: "limit", Value: 25, Usage: "Maximum number of logs"},
				&cli.StringFlag{Name: "order", Value: "desc", Usage: "asc or desc"},
				&cli.StringFlag{Name: "timestamp", Usage: "Mirror timestamp filter, e.g. gte:1700000000"},
			),
			Action: contractEventsAction,
		},
		{
			Name:      "methods",
			Usage:     "List the methods, events and errors of a contract ABI",
			ArgsUsage: "<Contract>",
			Flags:     withGlobalFlags(),
			Action:    contractMethodsAction,
		},
		{
			Name:      "encode",
			Usage:     "Print the calldata of a method call",
			ArgsUsage: "<Contract> <method> [args...]",
			Flags:     withGlobalFlags(),
			Action:    contractEncodeAction,
		},
		{
			Name:      "decode-error",
			Usage:     "Decode revert data, against a contract's custom errors when given",
			ArgsUsage: "<hex> [Contract]",
			Flags:     withGlobalFlags(),
			Action:    contractDecodeErrorAction,
		},
	},
}

// registryFromCLI returns the session registry, or a bare one for commands
// that only need ABIs and may run without a network
func registryFromCLI(cCtx *cli.Context) (*contracts.ContractRegistry, error) {
	if s, ok := common.SessionFromContext(cCtx.Context); ok {
		return s.Registry, nil
	}
	cfg, err := common.LoadProjectConfig()
	if err != nil {
		return nil, err
	}
	return contracts.NewContractRegistry(cfg.Project.ArtifactsDir), nil
}

func contractTypeArg(cCtx *cli.Context) (contracts.ContractType, error) {
	name := cCtx.Args().First()
	if name == "" {
		return "", fmt.Errorf("%s expects a contract name (%s)", cCtx.Command.Name, knownTypeNames())
	}
	return contracts.ParseContractType(name), nil
}

func knownTypeNames() string {
	names := make([]string, len(contracts.KnownTypes))
	for i, t := range contracts.KnownTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// methodNames returns the sorted methods of a kind
func methodNames(a *abi.ABI, mutating bool) []string {
	var names []string
	for name, m := range a.Methods {
		if m.IsConstant() != mutating {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func genericCall(cCtx *cli.Context, mutating bool) error {
	t, err := contractTypeArg(cCtx)
	if err != nil {
		return err
	}
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	inst, err := s.ResolveContract(t, cCtx.String("contract"))
	if err != nil {
		return err
	}

	methodName := cCtx.Args().Get(1)
	rawArgs := cCtx.Args().Slice()
	if len(rawArgs) > 2 {
		rawArgs = rawArgs[2:]
	} else {
		rawArgs = nil
	}
	candidates := methodNames(inst.ABI, mutating)

	if methodName == "" {
		if !isInteractive() {
			return fmt.Errorf("no method given; %s methods: %s", t, strings.Join(candidates, ", "))
		}
		methodName, err = RunSelection(fmt.Sprintf("Which %s method?", t), candidates)
		if err != nil {
			return err
		}
		m, err := inst.Method(methodName)
		if err != nil {
			return err
		}
		if rawArgs, err = promptArgs(s, m); err != nil {
			return err
		}
	}

	m, err := inst.Method(methodName)
	if err != nil {
		return err
	}
	if m.IsConstant() == mutating {
		if mutating {
			return fmt.Errorf("%s is a view method: use `contract query`", methodName)
		}
		return fmt.Errorf("%s changes state: use `contract exec`", methodName)
	}
	args, err := codec.ParseArgs(m, rawArgs)
	if err != nil {
		return err
	}
	if !mutating {
		return queryAndReport(cCtx.Context, s, inst, m, args)
	}
	_, err = executeAndReport(cCtx, s, inst, m, args)
	return err
}

// promptArgs asks for each input of a picked method
func promptArgs(s *common.Session, m abi.Method) ([]string, error) {
	values := make([]string, 0, len(m.Inputs))
	for i, in := range m.Inputs {
		name := in.Name
		if name == "" {
			name = fmt.Sprintf("arg%d", i)
		}
		answer, ok, err := s.Prompter.Ask(fmt.Sprintf("%s (%s): ", name, in.Type.String()))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("no terminal to read %s from", name)
		}
		values = append(values, answer)
	}
	return values, nil
}

func contractEventsAction(cCtx *cli.Context) error {
	t, err := contractTypeArg(cCtx)
	if err != nil {
		return err
	}
	s, err := common.SessionFromCLI(cCtx)
	if err != nil {
		return err
	}
	inst, err := s.ResolveContract(t, cCtx.String("contract"))
	if err != nil {
		return err
	}

	q := mirror.LogQuery{
		Order:     cCtx.String("order"),
		Limit:     cCtx.Int("limit"),
		Timestamp: cCtx.String("timestamp"),
		MaxPages:  1,
	}
	if q.Order != "asc" && q.Order != "desc" {
		return fmt.Errorf("--order must be asc or desc")
	}
	if name := cCtx.String("event"); name != "" {
		ev, ok := inst.ABI.Events[name]
		if !ok {
			return fmt.Errorf("%s has no event %q", t, name)
		}
		q.Topic0 = ev.ID.Hex()
	}

	target := inst.Info.ContractID
	if target == "" {
		target = inst.Info.Address.Hex()
	}
	logs, err := s.Mirror.GetContractLogs(cCtx.Context, target, q)
	if err != nil {
		return err
	}

	s.Logger.Title("%d %s event(s) on %s", len(logs), t, target)
	for _, l := range logs {
		ev, err := codec.DecodeLog(inst.ABI, l.Topics, l.Data)
		if err != nil {
			s.Logger.Warn("%s tx %s: %v", l.Timestamp, l.TransactionHash, err)
			continue
		}
		s.Logger.Info("%s %s", l.Timestamp, ev.String())
	}
	return nil
}

func contractMethodsAction(cCtx *cli.Context) error {
	t, err := contractTypeArg(cCtx)
	if err != nil {
		return err
	}
	reg, err := registryFromCLI(cCtx)
	if err != nil {
		return err
	}
	a, err := reg.ABI(t)
	if err != nil {
		return err
	}
	log := common.LoggerFromContext(cCtx.Context)

	log.Title("%s views", t)
	for _, name := range methodNames(a, false) {
		log.Info("  %s", codec.DescribeMethod(a.Methods[name]))
	}
	log.Title("%s transactions", t)
	for _, name := range methodNames(a, true) {
		log.Info("  %s", codec.DescribeMethod(a.Methods[name]))
	}
	if len(a.Events) > 0 {
		log.Title("%s events", t)
		for _, name := range sortedKeys(a.Events) {
			log.Info("  %s", a.Events[name].Sig)
		}
	}
	if len(a.Errors) > 0 {
		log.Title("%s errors", t)
		for _, name := range sortedKeys(a.Errors) {
			log.Info("  %s", a.Errors[name].Sig)
		}
	}
	return nil
}

func contractEncodeAction(cCtx *cli.Context) error {
	t, err := contractTypeArg(cCtx)
	if err != nil {
		return err
	}
	if cCtx.Args().Len() < 2 {
		return fmt.Errorf("encode expects <Contract> <method> [args...]")
	}
	reg, err := registryFromCLI(cCtx)
	if err != nil {
		return err
	}
	a, err := reg.ABI(t)
	if err != nil {
		return err
	}
	data, err := codec.EncodeCall(a, cCtx.Args().Get(1), cCtx.Args().Slice()[2:])
	if err != nil {
		return err
	}
	common.LoggerFromContext(cCtx.Context).Info("%s", data)
	return nil
}

func contractDecodeErrorAction(cCtx *cli.Context) error {
	if cCtx.Args().Len() < 1 || cCtx.Args().Len() > 2 {
		return fmt.Errorf("decode-error expects <hex> [Contract]")
	}
	var a *abi.ABI
	if name := cCtx.Args().Get(1); name != "" {
		reg, err := registryFromCLI(cCtx)
		if err != nil {
			return err
		}
		if a, err = reg.ABI(contracts.ParseContractType(name)); err != nil {
			return err
		}
	}
	r, err := codec.DecodeRevertHex(a, cCtx.Args().First())
	if err != nil {
		return err
	}
	common.LoggerFromContext(cCtx.Context).Info("%s", r.String())
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
