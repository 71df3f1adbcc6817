package common

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/lazysuperheroes/mission-cli/pkg/codec"
	"github.com/lazysuperheroes/mission-cli/pkg/common/contracts"
	"github.com/lazysuperheroes/mission-cli/pkg/common/iface"
	"github.com/lazysuperheroes/mission-cli/pkg/hedera"
	"github.com/lazysuperheroes/mission-cli/pkg/mirror"
)

// StatusSuccess is the only transaction status treated as success
const StatusSuccess = "SUCCESS"

// RelayClient is the part of the JSON-RPC relay the caller uses.
// *ethclient.Client satisfies it.
type RelayClient interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

// TxError is a submitted transaction that did not reach SUCCESS
type TxError struct {
	Status string
	Reason string
	Hash   string
}

func (e *TxError) Error() string {
	msg := fmt.Sprintf("transaction %s failed with status %s", e.Hash, e.Status)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// RevertError is a simulated call the EVM reverted, with the revert decoded
// against the target ABI
type RevertError struct {
	Method string
	Revert *codec.Revert
	Call   *mirror.CallError
}

func (e *RevertError) Error() string {
	return fmt.Sprintf("%s reverted: %s", e.Method, e.Revert.String())
}

func (e *RevertError) Unwrap() error {
	return e.Call
}

// ExecOptions tunes a transaction
type ExecOptions struct {
	// Gas skips estimation when non-zero
	Gas uint64
	// Value is the payable amount in tinybar
	Value *big.Int
	// DryRun estimates and encodes without sending
	DryRun bool
}

// ExecResult describes a sent (or dry-run) transaction
type ExecResult struct {
	Hash     common.Hash
	Status   string
	GasLimit uint64
	GasUsed  uint64
	Data     []byte
	To       common.Address
	DryRun   bool
}

// CallerConfig wires a ContractCaller
type CallerConfig struct {
	Mirror *mirror.Client
	// Relay is used as-is when set, otherwise RelayURL is dialled on first send
	Relay    RelayClient
	RelayURL string
	Operator *Operator
	ChainID  int64
	Logger   iface.Logger

	ReceiptTimeout  time.Duration
	PollInterval    time.Duration
	PollMaxInterval time.Duration
}

// ContractCaller provides a high-level interface for interacting with contracts:
// reads go through the mirror node, writes are signed locally and sent to the relay
type ContractCaller struct {
	mirror   *mirror.Client
	relay    RelayClient
	relayURL string
	operator *Operator
	chainID  *big.Int
	logger   iface.Logger
	timeout  time.Duration

	pollInterval time.Duration
	pollMax      time.Duration
}

func NewContractCaller(cfg CallerConfig) (*ContractCaller, error) {
	if cfg.Mirror == nil {
		return nil, errors.New("contract caller needs a mirror client")
	}
	if cfg.Logger == nil {
		cfg.Logger, _ = GetLogger(false)
	}
	cc := &ContractCaller{
		mirror:   cfg.Mirror,
		relay:    cfg.Relay,
		relayURL: cfg.RelayURL,
		operator: cfg.Operator,
		chainID:  big.NewInt(cfg.ChainID),
		logger:   cfg.Logger,
		timeout:  cfg.ReceiptTimeout,

		pollInterval: cfg.PollInterval,
		pollMax:      cfg.PollMaxInterval,
	}
	if cc.timeout <= 0 {
		cc.timeout = ReceiptTimeout
	}
	if cc.pollInterval <= 0 {
		cc.pollInterval = ReceiptPollInterval
	}
	if cc.pollMax <= 0 {
		cc.pollMax = ReceiptPollMaxInterval
	}
	return cc, nil
}

// Operator returns the signing account, or nil for read-only callers
func (cc *ContractCaller) Operator() *Operator {
	return cc.operator
}

// Close releases the relay connection if one was opened
func (cc *ContractCaller) Close() {
	if cc.relay != nil {
		cc.relay.Close()
	}
}

func (cc *ContractCaller) from() string {
	if cc.operator == nil {
		return ""
	}
	return cc.operator.EVMAddress().Hex()
}

// Query runs a read-only call through the mirror node and unpacks the outputs
func (cc *ContractCaller) Query(ctx context.Context, contract *contracts.ContractInstance, method string, args ...any) ([]any, error) {
	if _, err := contract.Method(method); err != nil {
		return nil, err
	}
	data, err := contract.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encode %s.%s: %w", contract.Info.Name, method, err)
	}

	cc.logger.Debug("query %s.%s on %s", contract.Info.Name, method, hedera.DisplayAddress(contract.Info.Address))
	result, err := cc.mirror.CallContract(ctx, mirror.CallRequest{
		From: cc.from(),
		To:   contract.Info.Address.Hex(),
		Data: hexutil.Encode(data),
	})
	if err != nil {
		return nil, decodeCallError(contract.ABI, contract.Info.Name+"."+method, err)
	}

	raw, err := hexutil.Decode(normalizeHex(result))
	if err != nil {
		return nil, fmt.Errorf("decode %s.%s result: %w", contract.Info.Name, method, err)
	}
	values, err := contract.ABI.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpack %s.%s result: %w", contract.Info.Name, method, err)
	}
	return values, nil
}

// QueryOne is Query for methods with a single output
func (cc *ContractCaller) QueryOne(ctx context.Context, contract *contracts.ContractInstance, method string, args ...any) (any, error) {
	values, err := cc.Query(ctx, contract, method, args...)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s.%s returned no values", contract.Info.Name, method)
	}
	return values[0], nil
}

// Execute packs and sends a state-changing call
func (cc *ContractCaller) Execute(ctx context.Context, contract *contracts.ContractInstance, method string, opts ExecOptions, args ...any) (*ExecResult, error) {
	if _, err := contract.Method(method); err != nil {
		return nil, err
	}
	data, err := contract.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encode %s.%s: %w", contract.Info.Name, method, err)
	}
	return cc.Send(ctx, contract.Info.Address, data, contract.ABI, contract.Info.Name+"."+method, opts)
}

// Transfer sends HBAR to an address with no calldata
func (cc *ContractCaller) Transfer(ctx context.Context, to common.Address, opts ExecOptions) (*ExecResult, error) {
	return cc.Send(ctx, to, nil, nil, "transfer", opts)
}

// Send estimates, signs and submits a raw call, then waits for its receipt.
// contractABI is only used to decode reverts and may be nil.
func (cc *ContractCaller) Send(ctx context.Context, to common.Address, data []byte, contractABI *abi.ABI, description string, opts ExecOptions) (*ExecResult, error) {
	if cc.operator == nil {
		return nil, ErrMissingCredentials
	}
	value := opts.Value
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() < 0 || !value.IsUint64() {
		return nil, fmt.Errorf("invalid value %s", value)
	}

	gas := opts.Gas
	if gas == 0 {
		estimate, err := cc.mirror.EstimateGas(ctx, mirror.CallRequest{
			From:  cc.from(),
			To:    to.Hex(),
			Data:  hexutil.Encode(data),
			Value: value.Uint64(),
		})
		if err != nil {
			return nil, fmt.Errorf("estimate gas for %s: %w", description, decodeCallError(contractABI, description, err))
		}
		gas = GasWithHeadroom(estimate)
		cc.logger.Debug("gas estimate for %s: %d, using %d", description, estimate, gas)
	}

	result := &ExecResult{To: to, Data: data, GasLimit: gas}
	if opts.DryRun {
		result.DryRun = true
		result.Status = "DRY_RUN"
		return result, nil
	}

	relay, err := cc.relayClient(ctx)
	if err != nil {
		return nil, err
	}

	err = cc.SendAndWaitForTransaction(ctx, description, func() (*types.Transaction, error) {
		tx, err := cc.signedTx(ctx, relay, to, data, gas, hedera.TinybarToWeibar(value))
		if err != nil {
			return nil, err
		}
		result.Hash = tx.Hash()
		cc.logger.Debug("Transaction hash for %s: %s", description, tx.Hash().Hex())
		return tx, relay.SendTransaction(ctx, tx)
	}, func(receipt *types.Receipt) {
		result.GasUsed = receipt.GasUsed
	})
	if err != nil {
		var txErr *TxError
		if errors.As(err, &txErr) && txErr.Status != "" {
			cc.explainFailure(ctx, contractABI, txErr)
			result.Status = txErr.Status
		}
		return result, err
	}
	result.Status = StatusSuccess
	return result, nil
}

// GasWithHeadroom adds 20% to an estimate and clamps it to the network limits
func GasWithHeadroom(estimate uint64) uint64 {
	gas := estimate * GasHeadroomPercent / 100
	if gas < MinGasLimit {
		gas = MinGasLimit
	}
	if gas > MaxGasLimit {
		gas = MaxGasLimit
	}
	return gas
}

func (cc *ContractCaller) relayClient(ctx context.Context) (RelayClient, error) {
	if cc.relay != nil {
		return cc.relay, nil
	}
	if cc.relayURL == "" {
		return nil, errors.New("no JSON-RPC relay configured")
	}
	client, err := ethclient.DialContext(ctx, cc.relayURL)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", cc.relayURL, err)
	}
	cc.relay = client
	return client, nil
}

func (cc *ContractCaller) buildTxOpts() (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(cc.operator.PrivateKey, cc.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	return opts, nil
}

// signedTx builds a legacy EIP-155 transaction, which every relay accepts
func (cc *ContractCaller) signedTx(ctx context.Context, relay RelayClient, to common.Address, data []byte, gas uint64, weibar *big.Int) (*types.Transaction, error) {
	opts, err := cc.buildTxOpts()
	if err != nil {
		return nil, err
	}
	nonce, err := relay.PendingNonceAt(ctx, opts.From)
	if err != nil {
		return nil, fmt.Errorf("fetch nonce: %w", err)
	}
	gasPrice, err := relay.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch gas price: %w", err)
	}
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &to,
		Value:    weibar,
		Data:     data,
	})
	return opts.Signer(opts.From, tx)
}

// SendAndWaitForTransaction submits via fn and polls the relay for the
// receipt. A receipt with status 0 becomes a *TxError.
func (cc *ContractCaller) SendAndWaitForTransaction(
	ctx context.Context,
	txDescription string,
	fn func() (*types.Transaction, error),
	onReceipt func(*types.Receipt),
) error {
	tx, err := fn()
	if err != nil {
		cc.logger.Error("%s failed during execution: %v", txDescription, err)
		return fmt.Errorf("%s execution: %w", txDescription, err)
	}

	receipt, err := cc.waitForReceipt(ctx, tx.Hash())
	if err != nil {
		cc.logger.Error("Waiting for %s transaction (hash: %s) failed: %v", txDescription, tx.Hash().Hex(), err)
		return fmt.Errorf("waiting for %s transaction (hash: %s): %w", txDescription, tx.Hash().Hex(), err)
	}
	if onReceipt != nil {
		onReceipt(receipt)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		cc.logger.Error("%s transaction (hash: %s) reverted", txDescription, tx.Hash().Hex())
		return &TxError{Status: "CONTRACT_REVERT_EXECUTED", Hash: tx.Hash().Hex()}
	}
	return nil
}

func (cc *ContractCaller) waitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, cc.timeout)
	defer cancel()

	relay, err := cc.relayClient(ctx)
	if err != nil {
		return nil, err
	}
	var receipt *types.Receipt
	attempt := 0
	poll := func() error {
		attempt++
		r, err := relay.TransactionReceipt(ctx, hash)
		if err != nil {
			return err
		}
		if r == nil {
			return ethereum.NotFound
		}
		receipt = r
		return nil
	}
	notify := func(err error, _ time.Duration) {
		if !errors.Is(err, ethereum.NotFound) {
			cc.logger.Debug("receipt poll %d for %s: %v", attempt, hash.Hex(), err)
		}
	}
	if err := backoff.RetryNotify(poll, cc.pollBackOff(ctx), notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return receipt, nil
}

// explainFailure fills in the status and reason from the mirror record of
// the transaction. The mirror lags consensus, so 404s are retried briefly.
func (cc *ContractCaller) explainFailure(ctx context.Context, contractABI *abi.ABI, txErr *TxError) {
	lookup := func() error {
		res, err := cc.mirror.GetContractResult(ctx, txErr.Hash)
		if err != nil {
			if mirror.IsNotFound(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if res.Result != "" {
			txErr.Status = res.Result
		}
		txErr.Reason = revertReason(contractABI, res.ErrorMessage)
		return nil
	}
	if err := backoff.Retry(lookup, backoff.WithMaxRetries(cc.pollBackOff(ctx), 4)); err != nil {
		cc.logger.Debug("mirror result for %s: %v", txErr.Hash, err)
	}
}

// revertReason decodes a mirror error_message, which is either revert data
// or a plain status string
func revertReason(contractABI *abi.ABI, msg string) string {
	if !strings.HasPrefix(msg, "0x") {
		return msg
	}
	r, err := codec.DecodeRevertHex(contractABI, msg)
	if err != nil {
		return msg
	}
	return r.String()
}

func decodeCallError(contractABI *abi.ABI, method string, err error) error {
	var callErr *mirror.CallError
	if !errors.As(err, &callErr) || callErr.Data == "" {
		return err
	}
	r, decodeErr := codec.DecodeRevertHex(contractABI, callErr.Data)
	if decodeErr != nil {
		return err
	}
	return &RevertError{Method: method, Revert: r, Call: callErr}
}

func normalizeHex(s string) string {
	if s == "" || s == "0x" {
		return "0x"
	}
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	if len(s)%2 == 1 {
		s = "0x0" + s[2:]
	}
	return s
}

// pollBackOff doubles the poll delay up to pollMax, without jitter, until
// ctx is done
func (cc *ContractCaller) pollBackOff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cc.pollInterval
	b.MaxInterval = cc.pollMax
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(b, ctx)
}
