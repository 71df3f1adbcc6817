package mirror

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"
)

// DefaultCallGas is the gas limit the mirror simulates calls with
const DefaultCallGas = 15_000_000

// Log is one entry of /contracts/{id}/results/logs
type Log struct {
	Address          string   `json:"address"`
	ContractID       string   `json:"contract_id"`
	Data             string   `json:"data"`
	Index            int      `json:"index"`
	Topics           []string `json:"topics"`
	BlockHash        string   `json:"block_hash"`
	BlockNumber      int64    `json:"block_number"`
	Timestamp        string   `json:"timestamp"`
	TransactionHash  string   `json:"transaction_hash"`
	TransactionIndex int      `json:"transaction_index"`
}

// LogQuery filters a contract log listing
type LogQuery struct {
	// Order is "asc" or "desc"; empty leaves the mirror default
	Order string
	// Limit is the page size, at most 100
	Limit int
	// Timestamp is passed through verbatim, e.g. "gte:1700000000.000000000"
	Timestamp string
	// Topic0 filters by event signature hash
	Topic0 string
	// MaxPages overrides the client page cap when positive
	MaxPages int
}

type logsPage struct {
	Logs  []Log `json:"logs"`
	Links Links `json:"links"`
}

// GetContractLogs lists a contract's event logs, following links.next until
// the listing is exhausted or the page cap is hit.
func (c *Client) GetContractLogs(ctx context.Context, contractID string, q LogQuery) ([]Log, error) {
	params := url.Values{}
	if q.Order != "" {
		params.Set("order", q.Order)
	}
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	params.Set("limit", strconv.Itoa(limit))
	if q.Timestamp != "" {
		params.Set("timestamp", q.Timestamp)
	}
	if q.Topic0 != "" {
		params.Set("topic0", q.Topic0)
	}
	maxPages := c.maxPages
	if q.MaxPages > 0 {
		maxPages = q.MaxPages
	}

	target := c.baseURL + "/api/v1/contracts/" + url.PathEscape(contractID) + "/results/logs?" + params.Encode()
	var logs []Log
	for page := 0; target != "" && page < maxPages; page++ {
		var p logsPage
		if err := c.do(ctx, "GET", target, nil, &p); err != nil {
			return logs, err
		}
		logs = append(logs, p.Logs...)
		target = c.nextURL(p.Links.Next)
	}
	return logs, nil
}

// CallRequest is the body of POST /contracts/call
type CallRequest struct {
	Block    string `json:"block,omitempty"`
	Data     string `json:"data,omitempty"`
	Estimate bool   `json:"estimate"`
	From     string `json:"from,omitempty"`
	Gas      uint64 `json:"gas,omitempty"`
	GasPrice uint64 `json:"gasPrice,omitempty"`
	To       string `json:"to"`
	Value    uint64 `json:"value,omitempty"`
}

type callResponse struct {
	Result string `json:"result"`
}

// CallContract simulates a call against latest state and returns the raw
// result hex. A revert comes back as *CallError.
func (c *Client) CallContract(ctx context.Context, req CallRequest) (string, error) {
	if req.Block == "" {
		req.Block = "latest"
	}
	if req.Gas == 0 {
		req.Gas = DefaultCallGas
	}
	var resp callResponse
	if err := c.post(ctx, "/api/v1/contracts/call", req, &resp); err != nil {
		return "", asCallError(err)
	}
	return resp.Result, nil
}

// EstimateGas runs the call in estimate mode and returns the gas figure
func (c *Client) EstimateGas(ctx context.Context, req CallRequest) (uint64, error) {
	req.Estimate = true
	req.Block = "latest"
	result, err := c.CallContract(ctx, req)
	if err != nil {
		return 0, err
	}
	gas, err := strconv.ParseUint(strings.TrimPrefix(result, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("mirror: parse gas estimate %q: %w", result, err)
	}
	return gas, nil
}

// ContractInfo is /contracts/{id}
type ContractInfo struct {
	ContractID       string `json:"contract_id"`
	EVMAddress       string `json:"evm_address"`
	CreatedTimestamp string `json:"created_timestamp"`
	Memo             string `json:"memo"`
	FileID           string `json:"file_id"`
	Deleted          bool   `json:"deleted"`
}

// GetContract fetches contract metadata by id or EVM address
func (c *Client) GetContract(ctx context.Context, idOrAddress string) (*ContractInfo, error) {
	var info ContractInfo
	if err := c.get(ctx, "/api/v1/contracts/"+url.PathEscape(idOrAddress), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ContractResult is /contracts/results/{hash}
type ContractResult struct {
	ContractID   string `json:"contract_id"`
	From         string `json:"from"`
	To           string `json:"to"`
	Hash         string `json:"hash"`
	Result       string `json:"result"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	CallResult   string `json:"call_result"`
	GasUsed      uint64 `json:"gas_used"`
	Timestamp    string `json:"timestamp"`
}

// Succeeded reports whether the network recorded SUCCESS for the transaction
func (r *ContractResult) Succeeded() bool {
	return r != nil && r.Result == "SUCCESS"
}

// GetContractResult fetches the execution record of a transaction. The
// mirror lags consensus by a few seconds so a 404 is common right after
// submission.
func (c *Client) GetContractResult(ctx context.Context, txHash string) (*ContractResult, error) {
	var res ContractResult
	if err := c.get(ctx, "/api/v1/contracts/results/"+url.PathEscape(txHash), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ErrNoResult is returned when a call returned no data
var ErrNoResult = errors.New("mirror: empty call result")

// ParseHexBig decodes a 0x quantity
func ParseHexBig(s string) (*big.Int, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return nil, ErrNoResult
	}
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("mirror: invalid hex quantity %q", s)
	}
	return v, nil
}
