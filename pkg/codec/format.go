package codec

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/lazysuperheroes/mission-cli/pkg/hedera"
)

// FormatValue renders a decoded ABI value for console output
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case common.Address:
		return hedera.DisplayAddress(val)
	case *big.Int:
		if val == nil {
			return "0"
		}
		return val.String()
	case []byte:
		return hexutil.Encode(val)
	case common.Hash:
		return val.Hex()
	case string:
		return val
	case bool:
		return fmt.Sprintf("%t", val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return hexutil.Encode(b)
		}
		return formatList(rv)
	case reflect.Slice:
		return formatList(rv)
	case reflect.Struct:
		t := rv.Type()
		parts := make([]string, 0, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			name := t.Field(i).Name
			if tag := t.Field(i).Tag.Get("json"); tag != "" {
				name = strings.Split(tag, ",")[0]
			}
			parts = append(parts, name+": "+FormatValue(rv.Field(i).Interface()))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case reflect.Ptr:
		if rv.IsNil() {
			return "<nil>"
		}
		return FormatValue(rv.Elem().Interface())
	}
	return fmt.Sprintf("%v", v)
}

func formatList(rv reflect.Value) string {
	parts := make([]string, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		parts[i] = FormatValue(rv.Index(i).Interface())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// FormatOutputs pairs decoded values with their output names, one line each
func FormatOutputs(outputs abi.Arguments, values []any) []string {
	lines := make([]string, len(values))
	for i, v := range values {
		label := fmt.Sprintf("[%d]", i)
		if i < len(outputs) && outputs[i].Name != "" {
			label = outputs[i].Name
		}
		lines[i] = label + ": " + FormatValue(v)
	}
	return lines
}

// Signature renders "name(type,type)" for a method
func Signature(m abi.Method) string {
	return m.Sig
}

// DescribeMethod renders "name(inputs) view returns (outputs)" for listings
func DescribeMethod(m abi.Method) string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteString("(")
	b.WriteString(DescribeInputs(m.Inputs))
	b.WriteString(")")
	if m.StateMutability != "" && m.StateMutability != "nonpayable" {
		b.WriteString(" " + m.StateMutability)
	}
	if len(m.Outputs) > 0 {
		b.WriteString(" returns (" + DescribeInputs(m.Outputs) + ")")
	}
	return b.String()
}
