package codec

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testABI = `[
	{"type":"function","name":"delegateNFT","stateMutability":"nonpayable","inputs":[{"name":"delegate","type":"address"},{"name":"token","type":"address"},{"name":"serials","type":"uint256[]"}],"outputs":[]},
	{"type":"function","name":"getSerialsDelegatedByRange","stateMutability":"view","inputs":[{"name":"token","type":"address"},{"name":"offset","type":"uint256"},{"name":"limit","type":"uint256"}],"outputs":[{"name":"serials","type":"uint256[]"}]},
	{"type":"function","name":"setFlags","stateMutability":"nonpayable","inputs":[{"name":"on","type":"bool"},{"name":"small","type":"uint8"},{"name":"signed","type":"int64"},{"name":"tag","type":"bytes4"},{"name":"blob","type":"bytes"},{"name":"label","type":"string"}],"outputs":[]},
	{"type":"function","name":"setRequirement","stateMutability":"nonpayable","inputs":[{"name":"req","type":"tuple","components":[{"name":"token","type":"address"},{"name":"count","type":"uint256"}]}],"outputs":[]},
	{"type":"function","name":"pair","stateMutability":"view","inputs":[{"name":"ids","type":"uint32[2]"}],"outputs":[]},
	{"type":"event","name":"TokenDelegated","anonymous":false,"inputs":[{"indexed":true,"name":"token","type":"address"},{"indexed":true,"name":"serial","type":"uint256"},{"indexed":false,"name":"delegate","type":"address"},{"indexed":false,"name":"delegated","type":"bool"}]},
	{"type":"error","name":"LazyDelegateRegistryOnlyOwner","inputs":[]},
	{"type":"error","name":"BadArgument","inputs":[{"name":"code","type":"uint256"}]}
]`

func parsedABI(t *testing.T) *abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(testABI))
	require.NoError(t, err)
	return &parsed
}

func TestParseArgsAddressesAndLists(t *testing.T) {
	a := parsedABI(t)
	values, err := ParseArgs(a.Methods["delegateNFT"], []string{"0.0.1001", "0x00000000000000000000000000000000000003ea", "1,2, 3"})
	require.NoError(t, err)

	assert.Equal(t, common.BigToAddress(big.NewInt(1001)), values[0])
	assert.Equal(t, common.BigToAddress(big.NewInt(1002)), values[1])
	serials := values[2].([]*big.Int)
	require.Len(t, serials, 3)
	assert.Equal(t, int64(3), serials[2].Int64())

	_, err = a.Pack("delegateNFT", values...)
	require.NoError(t, err)

	values, err = ParseArgs(a.Methods["delegateNFT"], []string{"0.0.1", "0.0.2", "[4,5]"})
	require.NoError(t, err)
	assert.Len(t, values[2].([]*big.Int), 2)

	values, err = ParseArgs(a.Methods["delegateNFT"], []string{"0.0.1", "0.0.2", ""})
	require.NoError(t, err)
	assert.Len(t, values[2].([]*big.Int), 0)
}

func TestParseArgsArity(t *testing.T) {
	a := parsedABI(t)
	_, err := ParseArgs(a.Methods["delegateNFT"], []string{"0.0.1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects 3 argument(s)")
	assert.Contains(t, err.Error(), "delegate address")
}

func TestParseArgsScalars(t *testing.T) {
	a := parsedABI(t)
	values, err := ParseArgs(a.Methods["setFlags"], []string{"true", "0xff", "-42", "0xdeadbeef", "0x0102", "hello"})
	require.NoError(t, err)

	assert.Equal(t, true, values[0])
	assert.Equal(t, uint8(255), values[1])
	assert.Equal(t, int64(-42), values[2])
	assert.Equal(t, [4]byte{0xde, 0xad, 0xbe, 0xef}, values[3])
	assert.Equal(t, []byte{1, 2}, values[4])
	assert.Equal(t, "hello", values[5])

	_, err = a.Pack("setFlags", values...)
	require.NoError(t, err)
}

func TestParseArgRejectsBadValues(t *testing.T) {
	a := parsedABI(t)
	m := a.Methods["setFlags"]

	_, err := ParseArg(m.Inputs[0].Type, "maybe")
	assert.Error(t, err)
	_, err = ParseArg(m.Inputs[1].Type, "256")
	assert.ErrorContains(t, err, "overflows uint8")
	_, err = ParseArg(m.Inputs[1].Type, "-1")
	assert.ErrorContains(t, err, "cannot be negative")
	_, err = ParseArg(m.Inputs[3].Type, "0x0102030405")
	assert.Error(t, err)
	_, err = ParseArg(a.Methods["delegateNFT"].Inputs[0].Type, "alice")
	assert.Error(t, err)
	_, err = ParseArg(a.Methods["pair"].Inputs[0].Type, "1,2,3")
	assert.ErrorContains(t, err, "expected 2 elements")
}

func TestParseArgIntegerBases(t *testing.T) {
	a := parsedABI(t)
	u256 := a.Methods["getSerialsDelegatedByRange"].Inputs[1].Type
	i64 := a.Methods["setFlags"].Inputs[2].Type

	for in, want := range map[string]int64{"010": 10, "08": 8, "0x10": 16, "0X1f": 31, "1_000": 1000} {
		v, err := ParseArg(u256, in)
		require.NoError(t, err, in)
		assert.Equal(t, big.NewInt(want), v, in)
	}

	v, err := ParseArg(i64, "-0x10")
	require.NoError(t, err)
	assert.Equal(t, int64(-16), v)
	v, err = ParseArg(i64, "-010")
	require.NoError(t, err)
	assert.Equal(t, int64(-10), v)

	for _, in := range []string{"0b11", "0o7", "0x", "", "--1", "-+1", "0x-1", "-", "1e3"} {
		_, err := ParseArg(u256, in)
		assert.Error(t, err, in)
	}
}

func TestParseArgFixedArray(t *testing.T) {
	a := parsedABI(t)
	v, err := ParseArg(a.Methods["pair"].Inputs[0].Type, "[7, 8]")
	require.NoError(t, err)
	assert.Equal(t, [2]uint32{7, 8}, v)
}

func TestParseArgTuple(t *testing.T) {
	a := parsedABI(t)
	typ := a.Methods["setRequirement"].Inputs[0].Type

	positional, err := ParseArg(typ, `["0.0.55", 3]`)
	require.NoError(t, err)
	named, err := ParseArg(typ, `{"token":"0.0.55","count":"3"}`)
	require.NoError(t, err)
	assert.Equal(t, FormatValue(positional), FormatValue(named))
	assert.Contains(t, FormatValue(named), "count: 3")

	_, err = a.Pack("setRequirement", named)
	require.NoError(t, err)

	_, err = ParseArg(typ, `{"token":"0.0.55"}`)
	assert.ErrorContains(t, err, "missing tuple field")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "0.0.5 (0x0000000000000000000000000000000000000005)", FormatValue(common.BigToAddress(big.NewInt(5))))
	assert.Equal(t, "12345678901234567890", FormatValue(new(big.Int).SetUint64(12345678901234567890)))
	assert.Equal(t, "0x0102", FormatValue([]byte{1, 2}))
	assert.Equal(t, "0xdeadbeef", FormatValue([4]byte{0xde, 0xad, 0xbe, 0xef}))
	assert.Equal(t, "[1, 2]", FormatValue([]*big.Int{big.NewInt(1), big.NewInt(2)}))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, "7", FormatValue(uint8(7)))

	lines := FormatOutputs(parsedABI(t).Methods["getSerialsDelegatedByRange"].Outputs, []any{[]*big.Int{big.NewInt(9)}})
	assert.Equal(t, []string{"serials: [9]"}, lines)
	assert.Equal(t, []string{"[0]: x"}, FormatOutputs(nil, []any{"x"}))
}

func TestDescribeMethod(t *testing.T) {
	a := parsedABI(t)
	assert.Equal(t, "getSerialsDelegatedByRange(token address, offset uint256, limit uint256) view returns (serials uint256[])", DescribeMethod(a.Methods["getSerialsDelegatedByRange"]))
	assert.Equal(t, "delegateNFT(address,address,uint256[])", Signature(a.Methods["delegateNFT"]))
}

func TestDecodeRevert(t *testing.T) {
	a := parsedABI(t)

	t.Run("custom error without args", func(t *testing.T) {
		data := crypto.Keccak256([]byte("LazyDelegateRegistryOnlyOwner()"))[:4]
		r := DecodeRevert(a, data)
		assert.Equal(t, RevertCustom, r.Kind)
		assert.Equal(t, "LazyDelegateRegistryOnlyOwner()", r.String())
	})

	t.Run("custom error with args", func(t *testing.T) {
		packed, err := a.Errors["BadArgument"].Inputs.Pack(big.NewInt(7))
		require.NoError(t, err)
		data := append(crypto.Keccak256([]byte("BadArgument(uint256)"))[:4], packed...)
		r := DecodeRevert(a, data)
		assert.Equal(t, "BadArgument(7)", r.String())
	})

	t.Run("error string", func(t *testing.T) {
		strType, _ := abi.NewType("string", "", nil)
		packed, err := abi.Arguments{{Type: strType}}.Pack("not allowed")
		require.NoError(t, err)
		r := DecodeRevert(a, append(append([]byte{}, errorSelector...), packed...))
		assert.Equal(t, RevertMessage, r.Kind)
		assert.Equal(t, "not allowed", r.String())
	})

	t.Run("panic", func(t *testing.T) {
		data := append(append([]byte{}, panicSelector...), common.LeftPadBytes([]byte{0x11}, 32)...)
		r := DecodeRevert(nil, data)
		assert.Equal(t, RevertPanic, r.Kind)
		assert.Contains(t, r.String(), "overflow")
	})

	t.Run("empty and unknown", func(t *testing.T) {
		assert.Equal(t, RevertEmpty, DecodeRevert(a, nil).Kind)
		r, err := DecodeRevertHex(a, "0x12345678")
		require.NoError(t, err)
		assert.Equal(t, RevertUnknown, r.Kind)
		assert.Contains(t, r.String(), "0x12345678")
	})
}

func TestDecodeLog(t *testing.T) {
	a := parsedABI(t)
	event := a.Events["TokenDelegated"]

	token := common.BigToAddress(big.NewInt(77))
	delegate := common.BigToAddress(big.NewInt(88))
	data, err := event.Inputs.NonIndexed().Pack(delegate, true)
	require.NoError(t, err)

	topics := []string{
		event.ID.Hex(),
		common.BytesToHash(token.Bytes()).Hex(),
		common.BigToHash(big.NewInt(12)).Hex(),
	}
	decoded, err := DecodeLog(a, topics, hexutil.Encode(data))
	require.NoError(t, err)

	assert.Equal(t, "TokenDelegated", decoded.Name)
	assert.Equal(t, token, decoded.Fields["token"])
	assert.Equal(t, int64(12), decoded.Fields["serial"].(*big.Int).Int64())
	assert.Equal(t, delegate, decoded.Fields["delegate"])
	assert.Equal(t, true, decoded.Fields["delegated"])
	assert.True(t, strings.HasPrefix(decoded.String(), "TokenDelegated(token=0.0.77"))

	_, err = DecodeLog(a, []string{common.Hash{}.Hex()}, "0x")
	assert.Error(t, err)
	_, err = DecodeLog(a, nil, "0x")
	assert.Error(t, err)
}

func TestEncodeCall(t *testing.T) {
	a := parsedABI(t)
	data, err := EncodeCall(a, "getSerialsDelegatedByRange", []string{"0.0.5", "0", "10"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(data, hexutil.Encode(a.Methods["getSerialsDelegatedByRange"].ID)))

	_, err = EncodeCall(a, "nope", nil)
	assert.Error(t, err)
}
