package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/lazysuperheroes/mission-cli/pkg/common/contracts"
	"github.com/lazysuperheroes/mission-cli/pkg/common/iface"
	"github.com/lazysuperheroes/mission-cli/pkg/hedera"
	"github.com/lazysuperheroes/mission-cli/pkg/manifest"
	"github.com/lazysuperheroes/mission-cli/pkg/mirror"
	"github.com/urfave/cli/v2"
)

type sessionContextKey struct{}

// SessionOptions wires a Session. Zero values fall back to env and config.
type SessionOptions struct {
	Network    hedera.Network
	Config     *Config
	MirrorURL  string
	RelayURL   string
	Relay      RelayClient
	Operator   *Operator
	HTTPClient *http.Client
	Logger     iface.Logger
	Prompter   *Prompter
	AssumeYes  bool
}

// Session is everything a command needs to talk to one network
type Session struct {
	Network   hedera.Network
	Config    *Config
	Mirror    *mirror.Client
	Registry  *contracts.ContractRegistry
	Manifests *manifest.Store
	Logger    iface.Logger
	Prompter  *Prompter
	AssumeYes bool

	relayURL    string
	relay       RelayClient
	operator    *Operator
	operatorErr error
	caller      *ContractCaller
}

func NewSession(opts SessionOptions) (*Session, error) {
	if opts.Network == "" {
		return nil, errors.New("session needs a network")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := opts.Logger
	if log == nil {
		log, _ = GetLogger(false)
	}
	prompter := opts.Prompter
	if prompter == nil {
		prompter = DefaultPrompter
	}
	info := opts.Network.Info()

	mirrorURL := firstNonEmpty(opts.MirrorURL, os.Getenv(EnvMirrorURL), cfg.Network.MirrorURL, info.MirrorURL)
	relayURL := firstNonEmpty(opts.RelayURL, os.Getenv(EnvRelayURL), cfg.Network.RelayURL, info.RelayURL)

	s := &Session{
		Network: opts.Network,
		Config:  cfg,
		Mirror: mirror.NewClient(mirror.Config{
			BaseURL:           mirrorURL,
			RequestsPerSecond: cfg.Network.MirrorRPS,
			HTTPClient:        opts.HTTPClient,
		}),
		Registry:  contracts.NewContractRegistry(cfg.Project.ArtifactsDir),
		Logger:    log,
		Prompter:  prompter,
		AssumeYes: opts.AssumeYes,
		relayURL:  relayURL,
		relay:     opts.Relay,
		operator:  opts.Operator,
	}
	updatedBy := ""
	if opts.Operator != nil {
		updatedBy = opts.Operator.AccountID.String()
	} else if id, ok := AccountIDFromEnv(); ok {
		updatedBy = id.String()
	}
	s.Manifests = manifest.NewStore(cfg.Project.DeploymentsDir, updatedBy)
	return s, nil
}

// WithSession stores a session in the context
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFromContext returns a session stored with WithSession
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*Session)
	return s, ok
}

// SessionFromCLI returns the session of the context, building one from the
// --network flag, ENVIRONMENT and mission.yaml when none is set
func SessionFromCLI(cCtx *cli.Context) (*Session, error) {
	if s, ok := SessionFromContext(cCtx.Context); ok {
		if cCtx.Bool("yes") {
			s.AssumeYes = true
		}
		return s, nil
	}
	network, err := NetworkFromEnv(cCtx.String("network"))
	if err != nil {
		return nil, err
	}
	cfg, err := LoadProjectConfig()
	if err != nil {
		return nil, err
	}
	s, err := NewSession(SessionOptions{
		Network:   network,
		Config:    cfg,
		Logger:    LoggerFromContext(cCtx.Context),
		AssumeYes: cCtx.Bool("yes"),
	})
	if err != nil {
		return nil, err
	}
	cCtx.Context = WithSession(cCtx.Context, s)
	return s, nil
}

// Operator returns the signing account, loading it from env on first use
func (s *Session) Operator() (*Operator, error) {
	if s.operator == nil && s.operatorErr == nil {
		s.operator, s.operatorErr = OperatorFromEnv()
	}
	return s.operator, s.operatorErr
}

// Caller returns the contract caller. Without credentials it can still query.
func (s *Session) Caller() (*ContractCaller, error) {
	if s.caller != nil {
		return s.caller, nil
	}
	op, err := s.Operator()
	if err != nil && !errors.Is(err, ErrMissingCredentials) {
		return nil, err
	}
	caller, err := NewContractCaller(CallerConfig{
		Mirror:   s.Mirror,
		Relay:    s.relay,
		RelayURL: s.relayURL,
		Operator: op,
		ChainID:  s.Network.ChainID(),
		Logger:   s.Logger,
	})
	if err != nil {
		return nil, err
	}
	s.caller = caller
	return caller, nil
}

// Confirm asks before a mutating command unless --yes was given
func (s *Session) Confirm(question string) error {
	return s.Prompter.Confirm(s.AssumeYes, question)
}

// Close releases network connections
func (s *Session) Close() {
	if s.caller != nil {
		s.caller.Close()
	}
}

// ResolveContract binds a contract type to an address taken from override,
// then the type's env var, then the network manifest
func (s *Session) ResolveContract(t contracts.ContractType, override string) (*contracts.ContractInstance, error) {
	value := strings.TrimSpace(override)
	source := "flag"
	if value == "" {
		if name, ok := ContractEnvVar(t); ok {
			value, source = strings.TrimSpace(os.Getenv(name)), name
		}
	}
	if value == "" {
		if id, evm, err := s.Manifests.GetContractAddress(s.Network.String(), string(t)); err == nil {
			value, source = firstNonEmpty(id, evm), "manifest"
		}
	}
	if value == "" {
		hint := "add it with `mission deployments set-contract`"
		if name, ok := ContractEnvVar(t); ok {
			hint = "set " + name + " or " + hint
		}
		return nil, fmt.Errorf("no %s contract configured: %s", t, hint)
	}

	addr, err := hedera.ResolveAddress(value)
	if err != nil {
		return nil, fmt.Errorf("%s address from %s: %w", t, source, err)
	}
	contractID := ""
	if hedera.IsEntityID(value) {
		contractID = value
	} else if id, err := hedera.EntityIDFromEVMAddress(addr); err == nil {
		contractID = id.String()
	}
	s.Logger.Debug("%s resolved from %s: %s", t, source, hedera.DisplayAddress(addr))
	return s.Registry.RegisterContract(contracts.ContractInfo{
		Name:       string(t),
		Type:       t,
		Address:    addr,
		ContractID: contractID,
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
