package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/common/contracts"
	"github.com/lazysuperheroes/mission-cli/pkg/common/logger"
	"github.com/lazysuperheroes/mission-cli/pkg/hedera"
	"github.com/lazysuperheroes/mission-cli/pkg/mirror"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// MirrorStub is an in-memory mirror node. GET paths are answered from
// Routes; contract calls are answered from Calls keyed by method name.
type MirrorStub struct {
	mu       sync.Mutex
	ABI      *abi.ABI
	Routes   map[string]any
	Calls    map[string][]any
	Reverts  map[string][]byte
	Estimate uint64
	Requests []mirror.CallRequest
}

func (m *MirrorStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.Method == http.MethodPost && r.URL.Path == "/api/v1/contracts/call" {
		var req mirror.CallRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		m.Requests = append(m.Requests, req)
		m.answerCall(w, req)
		return
	}

	body, ok := m.Routes[r.URL.Path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"_status":{"messages":[{"message":"Not found"}]}}`))
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

func (m *MirrorStub) answerCall(w http.ResponseWriter, req mirror.CallRequest) {
	estimate := map[string]string{"result": hexutil.EncodeUint64(max(m.Estimate, 50_000))}
	data, err := hexutil.Decode(req.Data)
	if err != nil || len(data) < 4 || m.ABI == nil {
		if req.Estimate {
			_ = json.NewEncoder(w).Encode(estimate)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"result": "0x"})
		return
	}
	method, err := m.ABI.MethodById(data[:4])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if revert, ok := m.Reverts[method.Name]; ok {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"_status": map[string]any{"messages": []map[string]string{{
			"message": "CONTRACT_REVERT_EXECUTED",
			"data":    hexutil.Encode(revert),
		}}}})
		return
	}
	if req.Estimate {
		_ = json.NewEncoder(w).Encode(estimate)
		return
	}
	out := []byte{}
	if values, ok := m.Calls[method.Name]; ok {
		out, err = method.Outputs.Pack(values...)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"result": hexutil.Encode(out)})
}

// CalledMethods returns the names of the non-estimate calls, in order
func (m *MirrorStub) CalledMethods() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for _, req := range m.Requests {
		if req.Estimate {
			continue
		}
		data, err := hexutil.Decode(req.Data)
		if err != nil || len(data) < 4 || m.ABI == nil {
			continue
		}
		if method, err := m.ABI.MethodById(data[:4]); err == nil {
			names = append(names, method.Name)
		}
	}
	return names
}

// FakeRelay records transactions and returns a receipt with Status
type FakeRelay struct {
	mu     sync.Mutex
	Sent   []*types.Transaction
	Status uint64
}

func NewFakeRelay() *FakeRelay {
	return &FakeRelay{Status: types.ReceiptStatusSuccessful}
}

func (f *FakeRelay) PendingNonceAt(context.Context, ethcommon.Address) (uint64, error) {
	return 0, nil
}

func (f *FakeRelay) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(710_000_000_000), nil
}

func (f *FakeRelay) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sent = append(f.Sent, tx)
	return nil
}

func (f *FakeRelay) TransactionReceipt(_ context.Context, hash ethcommon.Hash) (*types.Receipt, error) {
	return &types.Receipt{TxHash: hash, Status: f.Status, GasUsed: 42_000}, nil
}

func (f *FakeRelay) Close() {}

// SentMethods decodes the method of every sent transaction against a
func (f *FakeRelay) SentMethods(a *abi.ABI) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, tx := range f.Sent {
		if len(tx.Data()) < 4 {
			names = append(names, "")
			continue
		}
		if m, err := a.MethodById(tx.Data()[:4]); err == nil {
			names = append(names, m.Name)
		}
	}
	return names
}

// Env is a session wired to a MirrorStub and FakeRelay
type Env struct {
	Session *common.Session
	Mirror  *MirrorStub
	Relay   *FakeRelay
	Logger  *logger.NoopLogger
}

// EnvOptions configures NewEnv
type EnvOptions struct {
	// ABIs are installed into the registry before any lookup
	ABIs map[contracts.ContractType]string
	// WithOperator signs as 0.0.1001 with a fresh key
	WithOperator bool
	AssumeYes    bool
}

// NewEnv builds a testnet session against an in-memory mirror and relay.
// The stub decodes calls against the merged ABIs.
func NewEnv(t *testing.T, opts EnvOptions) *Env {
	t.Helper()

	merged := &abi.ABI{Methods: map[string]abi.Method{}, Events: map[string]abi.Event{}, Errors: map[string]abi.Error{}}
	parsed := map[contracts.ContractType]abi.ABI{}
	for ct, raw := range opts.ABIs {
		a, err := abi.JSON(strings.NewReader(raw))
		require.NoError(t, err)
		parsed[ct] = a
		for name, m := range a.Methods {
			merged.Methods[name] = m
		}
		for name, e := range a.Errors {
			merged.Errors[name] = e
		}
	}

	stub := &MirrorStub{ABI: merged, Routes: map[string]any{}, Calls: map[string][]any{}, Reverts: map[string][]byte{}}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	var op *common.Operator
	if opts.WithOperator {
		key, err := crypto.GenerateKey()
		require.NoError(t, err)
		op = &common.Operator{AccountID: hedera.EntityID{Num: 1001}, PrivateKey: key}
	} else {
		t.Setenv(common.EnvPrivateKey, "")
		t.Setenv(common.EnvAccountID, "")
	}

	cfg := common.DefaultConfig()
	cfg.Project.DeploymentsDir = t.TempDir()
	cfg.Project.ArtifactsDir = t.TempDir()

	interactive := false
	relay := NewFakeRelay()
	log := logger.NewNoopLogger()
	s, err := common.NewSession(common.SessionOptions{
		Network:   hedera.Testnet,
		Config:    cfg,
		MirrorURL: srv.URL,
		Relay:     relay,
		Operator:  op,
		Logger:    log,
		Prompter:  &common.Prompter{In: strings.NewReader(""), Out: &bytes.Buffer{}, Interactive: &interactive},
		AssumeYes: opts.AssumeYes,
	})
	require.NoError(t, err)
	for ct, a := range parsed {
		s.Registry.SetABI(ct, a)
	}
	t.Cleanup(s.Close)

	return &Env{Session: s, Mirror: stub, Relay: relay, Logger: log}
}

// Run executes args against a fresh app holding cmds, with the session and
// logger of e injected. It returns what the app wrote to its Writer.
func (e *Env) Run(cmds []*cli.Command, args ...string) (string, error) {
	var out bytes.Buffer
	app := &cli.App{
		Name:     "mission",
		Writer:   &out,
		Commands: cmds,
		Before: func(cCtx *cli.Context) error {
			cCtx.Context = common.WithLogger(cCtx.Context, e.Logger)
			cCtx.Context = common.WithProgressTracker(cCtx.Context, logger.NewNoopProgressTracker())
			cCtx.Context = common.WithSession(cCtx.Context, e.Session)
			return nil
		},
		ExitErrHandler: func(*cli.Context, error) {},
	}
	err := app.RunContext(context.Background(), append([]string{"mission"}, args...))
	return out.String(), err
}

// Register binds a contract type to a test address in the session's
// environment so ResolveContract finds it
func (e *Env) Register(t *testing.T, ct contracts.ContractType, num uint64) ethcommon.Address {
	t.Helper()
	name, ok := common.ContractEnvVar(ct)
	require.True(t, ok, "no env var for %s", ct)
	t.Setenv(name, hedera.EntityID{Num: num}.String())
	return hedera.EntityID{Num: num}.ToEVMAddress()
}
