package hedera

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestParseNetwork(t *testing.T) {
	tests := []struct {
		input string
		want  Network
	}{
		{"TEST", Testnet},
		{"test", Testnet},
		{"testnet", Testnet},
		{"MAIN", Mainnet},
		{"Mainnet", Mainnet},
		{"PREVIEW", Previewnet},
		{"LOCAL", Local},
		{" local ", Local},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseNetwork(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseNetwork("devnet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST, MAIN, PREVIEW, LOCAL")
}

func TestNetworkInfo(t *testing.T) {
	assert.Equal(t, int64(296), Testnet.ChainID())
	assert.Equal(t, int64(295), Mainnet.ChainID())
	assert.Equal(t, int64(297), Previewnet.ChainID())
	assert.Equal(t, int64(298), Local.ChainID())
	assert.Equal(t, "https://mainnet-public.mirrornode.hedera.com", Mainnet.Info().MirrorURL)
	assert.Equal(t, "MAIN", Mainnet.EnvName())
	assert.Equal(t, Testnet.Info(), Network("bogus").Info())
}

func TestEntityID(t *testing.T) {
	id, err := ParseEntityID("0.0.1234")
	require.NoError(t, err)
	assert.Equal(t, EntityID{Num: 1234}, id)
	assert.Equal(t, "0.0.1234", id.String())

	addr := id.ToEVMAddress()
	assert.Equal(t, "0x00000000000000000000000000000000000004d2", addr.Hex())
	assert.True(t, IsLongZero(addr))

	back, err := EntityIDFromEVMAddress(addr)
	require.NoError(t, err)
	assert.Equal(t, id, back)

	for _, bad := range []string{"", "0.0", "0.0.x", "1.2.3.4", "-1.0.5"} {
		_, err := ParseEntityID(bad)
		assert.Error(t, err, bad)
	}
}

func TestEntityIDFromAliasAddress(t *testing.T) {
	_, err := EntityIDFromEVMAddress(common.HexToAddress("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a long-zero address")
}

func TestResolveAddress(t *testing.T) {
	a, err := ResolveAddress("0.0.5")
	require.NoError(t, err)
	assert.Equal(t, common.BigToAddress(big.NewInt(5)), a)

	b, err := ResolveAddress("0x0000000000000000000000000000000000000005")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := ResolveAddress("0000000000000000000000000000000000000005")
	require.NoError(t, err)
	assert.Equal(t, a, c)

	_, err = ResolveAddress("not-an-address")
	assert.Error(t, err)

	assert.Equal(t, "0.0.5 (0x0000000000000000000000000000000000000005)", DisplayAddress(a))
}

func TestParsePrivateKey(t *testing.T) {
	expected, err := crypto.HexToECDSA(testKeyHex)
	require.NoError(t, err)
	want := crypto.PubkeyToAddress(expected.PublicKey)

	for name, input := range map[string]string{
		"raw":      testKeyHex,
		"prefixed": "0x" + testKeyHex,
		"der":      ecdsaDERPrefix + testKeyHex,
		"der 0x":   "0x" + ecdsaDERPrefix + testKeyHex,
	} {
		t.Run(name, func(t *testing.T) {
			key, err := ParsePrivateKey(input)
			require.NoError(t, err)
			assert.Equal(t, want, AliasAddress(key))
		})
	}

	_, err = ParsePrivateKey(ed25519DERPrefix + testKeyHex)
	assert.ErrorIs(t, err, ErrED25519Key)

	_, err = ParsePrivateKey("abcd")
	assert.Error(t, err)

	_, err = ParsePrivateKey("")
	assert.Error(t, err)
}

func TestUnits(t *testing.T) {
	v, err := ParseHbar("1.5")
	require.NoError(t, err)
	assert.Equal(t, "150000000", v.String())

	v, err = ParseHbar("2hbar")
	require.NoError(t, err)
	assert.Equal(t, "200000000", v.String())

	v, err = ParseHbar("42tinybar")
	require.NoError(t, err)
	assert.Equal(t, "42", v.String())

	_, err = ParseHbar("1.000000001")
	assert.Error(t, err)

	assert.Equal(t, "10000000000", TinybarToWeibar(big.NewInt(1)).String())
	assert.Equal(t, "3", WeibarToTinybar(big.NewInt(39_999_999_999)).String())

	assert.Equal(t, "1.5 ℏ", FormatHbar(big.NewInt(150_000_000)))
	assert.Equal(t, "0.05", FormatDecimal(big.NewInt(5), 2))
	assert.Equal(t, "12", FormatDecimal(big.NewInt(12), 0))
	assert.Equal(t, "-1.2", FormatDecimal(big.NewInt(-12), 1))

	d, err := ParseDecimal(".5", 1)
	require.NoError(t, err)
	assert.Equal(t, "5", d.String())
}
