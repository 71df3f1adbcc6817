package codec

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	errorSelector = []byte{0x08, 0xc3, 0x79, 0xa0}
	panicSelector = []byte{0x4e, 0x48, 0x7b, 0x71}
)

// solidity panic codes
var panicReasons = map[uint64]string{
	0x00: "generic compiler panic",
	0x01: "assert(false)",
	0x11: "arithmetic underflow or overflow",
	0x12: "division or modulo by zero",
	0x21: "invalid enum value",
	0x22: "invalid storage byte array",
	0x31: "pop() on empty array",
	0x32: "array index out of bounds",
	0x41: "out of memory",
	0x51: "call to zero-initialized function",
}

// RevertKind classifies revert data
type RevertKind string

const (
	RevertEmpty   RevertKind = "empty"
	RevertMessage RevertKind = "error"
	RevertPanic   RevertKind = "panic"
	RevertCustom  RevertKind = "custom"
	RevertUnknown RevertKind = "unknown"
)

// Revert is decoded revert data
type Revert struct {
	Kind    RevertKind
	Name    string
	Args    []any
	Message string
	Raw     []byte
}

func (r *Revert) String() string {
	switch r.Kind {
	case RevertEmpty:
		return "reverted without a reason"
	case RevertMessage:
		return r.Message
	case RevertPanic:
		return "panic: " + r.Message
	case RevertCustom:
		parts := make([]string, len(r.Args))
		for i, a := range r.Args {
			parts[i] = FormatValue(a)
		}
		return r.Name + "(" + strings.Join(parts, ", ") + ")"
	}
	return "unknown revert " + hexutil.Encode(r.Raw)
}

// DecodeRevert decodes Error(string), Panic(uint256) or a custom error
// declared in contractABI. contractABI may be nil.
func DecodeRevert(contractABI *abi.ABI, data []byte) *Revert {
	r := &Revert{Raw: data}
	if len(data) < 4 {
		r.Kind = RevertEmpty
		return r
	}
	selector := data[:4]

	switch {
	case bytes.Equal(selector, errorSelector):
		reason, err := abi.UnpackRevert(data)
		if err == nil {
			r.Kind = RevertMessage
			r.Name = "Error"
			r.Message = reason
			return r
		}
	case bytes.Equal(selector, panicSelector) && len(data) >= 36:
		code := new(big.Int).SetBytes(data[4:36])
		r.Kind = RevertPanic
		r.Name = "Panic"
		r.Args = []any{code}
		if reason, ok := panicReasons[code.Uint64()]; ok && code.IsUint64() {
			r.Message = fmt.Sprintf("%s (0x%x)", reason, code)
		} else {
			r.Message = fmt.Sprintf("code 0x%x", code)
		}
		return r
	}

	if contractABI != nil {
		var id [4]byte
		copy(id[:], selector)
		if abiErr, err := contractABI.ErrorByID(id); err == nil {
			r.Kind = RevertCustom
			r.Name = abiErr.Name
			if len(abiErr.Inputs) > 0 {
				if vals, err := abiErr.Inputs.Unpack(data[4:]); err == nil {
					r.Args = vals
				}
			}
			return r
		}
	}

	r.Kind = RevertUnknown
	return r
}

// DecodeRevertHex is DecodeRevert for a 0x string as returned by the mirror
func DecodeRevertHex(contractABI *abi.ABI, s string) (*Revert, error) {
	data, err := decodeHex(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return DecodeRevert(contractABI, data), nil
}
