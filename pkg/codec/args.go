package codec

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/lazysuperheroes/mission-cli/pkg/hedera"
)

var bigIntType = reflect.TypeOf(&big.Int{})

// ParseArgs converts positional CLI strings into values for method's inputs
func ParseArgs(method abi.Method, args []string) ([]any, error) {
	if len(args) != len(method.Inputs) {
		return nil, fmt.Errorf("%s expects %d argument(s) (%s), got %d", method.Name, len(method.Inputs), DescribeInputs(method.Inputs), len(args))
	}
	values := make([]any, len(args))
	for i, input := range method.Inputs {
		v, err := ParseArg(input.Type, args[i])
		if err != nil {
			name := input.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("argument %s (%s): %w", name, input.Type.String(), err)
		}
		values[i] = v
	}
	return values, nil
}

// DescribeInputs renders "name type, name type"
func DescribeInputs(args abi.Arguments) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a.Name != "" {
			parts = append(parts, a.Name+" "+a.Type.String())
		} else {
			parts = append(parts, a.Type.String())
		}
	}
	return strings.Join(parts, ", ")
}

// ParseArg converts one CLI string into the Go value go-ethereum packs for t.
// Addresses may be 0x hex or 0.0.N, lists may be comma separated or JSON.
func ParseArg(t abi.Type, s string) (any, error) {
	s = strings.TrimSpace(s)
	switch t.T {
	case abi.AddressTy:
		return hedera.ResolveAddress(s)
	case abi.BoolTy:
		b, err := strconv.ParseBool(strings.ToLower(s))
		if err != nil {
			return nil, fmt.Errorf("invalid bool %q", s)
		}
		return b, nil
	case abi.StringTy:
		return s, nil
	case abi.IntTy, abi.UintTy:
		return parseInteger(t, s)
	case abi.BytesTy:
		b, err := decodeHex(s)
		if err != nil {
			return nil, err
		}
		return b, nil
	case abi.FixedBytesTy:
		b, err := decodeHex(s)
		if err != nil {
			return nil, err
		}
		if len(b) > t.Size {
			return nil, fmt.Errorf("value is %d bytes, bytes%d holds at most %d", len(b), t.Size, t.Size)
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil
	case abi.SliceTy, abi.ArrayTy:
		return parseList(t, s)
	case abi.TupleTy:
		return parseTuple(t, s)
	}
	return nil, fmt.Errorf("unsupported argument type %s", t.String())
}

func decodeHex(s string) ([]byte, error) {
	if s == "" || s == "0x" {
		return []byte{}, nil
	}
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", s, err)
	}
	return b, nil
}

func parseInteger(t abi.Type, s string) (any, error) {
	v, ok := parseBigInt(s)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	if t.T == abi.UintTy {
		if v.Sign() < 0 {
			return nil, fmt.Errorf("uint%d cannot be negative", t.Size)
		}
		if v.BitLen() > t.Size {
			return nil, fmt.Errorf("%s overflows uint%d", s, t.Size)
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		if v.Cmp(limit) >= 0 || v.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("%s overflows int%d", s, t.Size)
		}
	}

	rt := t.GetType()
	if rt == bigIntType {
		return v, nil
	}
	out := reflect.New(rt).Elem()
	if t.T == abi.UintTy {
		out.SetUint(v.Uint64())
	} else {
		out.SetInt(v.Int64())
	}
	return out.Interface(), nil
}

// splitList accepts "a,b,c" or a JSON array; JSON strings are unquoted and
// nested arrays or objects are passed through as raw JSON.
func splitList(s string) ([]string, error) {
	if s == "" || s == "[]" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "[") {
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON array %q: %w", s, err)
	}
	out := make([]string, len(raw))
	for i, r := range raw {
		out[i] = rawToString(r)
	}
	return out, nil
}

func rawToString(r json.RawMessage) string {
	trimmed := strings.TrimSpace(string(r))
	if strings.HasPrefix(trimmed, `"`) {
		var str string
		if err := json.Unmarshal(r, &str); err == nil {
			return str
		}
	}
	return trimmed
}

func parseList(t abi.Type, s string) (any, error) {
	items, err := splitList(s)
	if err != nil {
		return nil, err
	}
	if t.T == abi.ArrayTy && len(items) != t.Size {
		return nil, fmt.Errorf("expected %d elements, got %d", t.Size, len(items))
	}

	var out reflect.Value
	if t.T == abi.ArrayTy {
		out = reflect.New(t.GetType()).Elem()
	} else {
		out = reflect.MakeSlice(t.GetType(), len(items), len(items))
	}
	for i, item := range items {
		v, err := ParseArg(*t.Elem, item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out.Index(i).Set(reflect.ValueOf(v))
	}
	return out.Interface(), nil
}

func parseTuple(t abi.Type, s string) (any, error) {
	var items []string
	if strings.HasPrefix(s, "{") {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(s), &obj); err != nil {
			return nil, fmt.Errorf("invalid JSON object %q: %w", s, err)
		}
		items = make([]string, len(t.TupleRawNames))
		for i, name := range t.TupleRawNames {
			raw, ok := obj[name]
			if !ok {
				return nil, fmt.Errorf("missing tuple field %q", name)
			}
			items[i] = rawToString(raw)
		}
	} else {
		var err error
		items, err = splitList(s)
		if err != nil {
			return nil, err
		}
	}
	if len(items) != len(t.TupleElems) {
		return nil, fmt.Errorf("tuple expects %d fields, got %d", len(t.TupleElems), len(items))
	}

	out := reflect.New(t.GetType()).Elem()
	for i, elem := range t.TupleElems {
		v, err := ParseArg(*elem, items[i])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", t.TupleRawNames[i], err)
		}
		out.Field(i).Set(reflect.ValueOf(v))
	}
	return out.Interface(), nil
}

// parseBigInt reads decimal or 0x-prefixed hex. Leading zeros stay decimal.
func parseBigInt(s string) (*big.Int, bool) {
	digits := strings.ReplaceAll(s, "_", "")
	neg := false
	if digits != "" && (digits[0] == '-' || digits[0] == '+') {
		neg = digits[0] == '-'
		digits = digits[1:]
	}
	if digits == "" || strings.ContainsAny(digits, "+-") {
		return nil, false
	}
	v, ok := math.ParseBig256(digits)
	if !ok {
		return nil, false
	}
	if neg {
		v.Neg(v)
	}
	return v, true
}
