package codec

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Event is a decoded log entry
type Event struct {
	Name   string
	Fields map[string]any
	// Order holds field names in ABI declaration order
	Order []string
}

// DecodeLog decodes a log's topics and data against contractABI
func DecodeLog(contractABI *abi.ABI, topics []string, data string) (*Event, error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("log has no topics")
	}
	hashes := make([]common.Hash, len(topics))
	for i, t := range topics {
		b, err := decodeHex(t)
		if err != nil {
			return nil, fmt.Errorf("topic %d: %w", i, err)
		}
		hashes[i] = common.BytesToHash(b)
	}

	event, err := contractABI.EventByID(hashes[0])
	if err != nil {
		return nil, fmt.Errorf("unknown event %s: %w", hashes[0].Hex(), err)
	}

	fields := make(map[string]any)
	payload, err := decodeHex(data)
	if err != nil {
		return nil, fmt.Errorf("log data: %w", err)
	}
	if len(payload) > 0 {
		if err := contractABI.UnpackIntoMap(fields, event.Name, payload); err != nil {
			return nil, fmt.Errorf("unpack %s data: %w", event.Name, err)
		}
	}

	var indexed abi.Arguments
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if len(indexed) > 0 {
		if len(hashes)-1 < len(indexed) {
			return nil, fmt.Errorf("%s expects %d indexed topics, got %d", event.Name, len(indexed), len(hashes)-1)
		}
		if err := abi.ParseTopicsIntoMap(fields, indexed, hashes[1:]); err != nil {
			return nil, fmt.Errorf("parse %s topics: %w", event.Name, err)
		}
	}

	order := make([]string, 0, len(event.Inputs))
	for _, input := range event.Inputs {
		order = append(order, input.Name)
	}
	return &Event{Name: event.Name, Fields: fields, Order: order}, nil
}

// String renders "Name(field=value, ...)"
func (e *Event) String() string {
	keys := e.Order
	if len(keys) == 0 {
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}
	out := e.Name + "("
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += k + "=" + FormatValue(e.Fields[k])
	}
	return out + ")"
}

// EncodeCall packs a method call and returns it as 0x hex
func EncodeCall(contractABI *abi.ABI, method string, args []string) (string, error) {
	m, ok := contractABI.Methods[method]
	if !ok {
		return "", fmt.Errorf("no method %q", method)
	}
	values, err := ParseArgs(m, args)
	if err != nil {
		return "", err
	}
	data, err := contractABI.Pack(method, values...)
	if err != nil {
		return "", fmt.Errorf("pack %s: %w", method, err)
	}
	return hexutil.Encode(data), nil
}
