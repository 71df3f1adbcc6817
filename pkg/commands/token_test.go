package commands

import (
	"math/big"
	"testing"

	"github.com/lazysuperheroes/mission-cli/pkg/common/contracts"
	"github.com/lazysuperheroes/mission-cli/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const erc20TestABI = `[
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

func lazyTokenRoute() map[string]any {
	return map[string]any{
		"token_id":            "0.0.8000",
		"name":                "Lazy Token",
		"symbol":              "LAZY",
		"decimals":            "1",
		"total_supply":        "2500000000",
		"max_supply":          "0",
		"supply_type":         "INFINITE",
		"type":                "FUNGIBLE_COMMON",
		"treasury_account_id": "0.0.1001",
	}
}

func TestAccountInfo(t *testing.T) {
	env := testutils.NewEnv(t, testutils.EnvOptions{})
	env.Mirror.Routes["/api/v1/accounts/0.0.1001"] = map[string]any{
		"account":     "0.0.1001",
		"evm_address": addr(1001).Hex(),
		"balance":     map[string]any{"balance": 150000000, "timestamp": "1700000000.0"},
		"key":         map[string]any{"_type": "ECDSA_SECP256K1", "key": "02ab"},
	}
	env.Mirror.Routes["/api/v1/accounts/0.0.1001/tokens"] = map[string]any{
		"tokens": []map[string]any{
			{"token_id": "0.0.8000", "balance": 1235},
			{"token_id": "0.0.8001", "balance": 7},
		},
		"links": map[string]any{"next": nil},
	}
	env.Mirror.Routes["/api/v1/tokens/0.0.8000"] = lazyTokenRoute()

	_, err := env.Run([]*cli.Command{AccountCommand}, "account", "info", "0.0.1001")
	require.NoError(t, err)
	assert.True(t, env.Logger.Contains("Balance:     1.5 ℏ"))
	assert.True(t, env.Logger.Contains("Key type:    ECDSA_SECP256K1"))
	assert.True(t, env.Logger.Contains("Tokens:      2"))
	assert.True(t, env.Logger.Contains("0.0.8000 (LAZY): 123.5"))
	assert.True(t, env.Logger.Contains("0.0.8001: 7"))
}

func TestAccountNeedsAnAccount(t *testing.T) {
	env := testutils.NewEnv(t, testutils.EnvOptions{})

	_, err := env.Run([]*cli.Command{AccountCommand}, "account", "info")
	assert.ErrorContains(t, err, "no account given")

	_, err = env.Run([]*cli.Command{AccountCommand}, "account", "nfts", "0.0.1", "0.0.2")
	assert.ErrorContains(t, err, "at most one account")
}

func TestAccountNFTsGroupsByToken(t *testing.T) {
	env := testutils.NewEnv(t, testutils.EnvOptions{})
	env.Mirror.Routes["/api/v1/accounts/0.0.1001/nfts"] = map[string]any{
		"nfts": []map[string]any{
			{"token_id": "0.0.9000", "serial_number": 3},
			{"token_id": "0.0.9000", "serial_number": 1},
			{"token_id": "0.0.9001", "serial_number": 5, "deleted": true},
		},
		"links": map[string]any{"next": nil},
	}

	_, err := env.Run([]*cli.Command{AccountCommand}, "account", "nfts", "0.0.1001")
	require.NoError(t, err)
	assert.True(t, env.Logger.Contains("0.0.9000 (2): [1 3]"))
	assert.False(t, env.Logger.Contains("0.0.9001"))
}

func TestTokenInfo(t *testing.T) {
	env := testutils.NewEnv(t, testutils.EnvOptions{})
	env.Mirror.Routes["/api/v1/tokens/0.0.8000"] = lazyTokenRoute()

	_, err := env.Run([]*cli.Command{TokenCommand}, "token", "info", "0.0.8000")
	require.NoError(t, err)
	assert.True(t, env.Logger.Contains("Lazy Token (0.0.8000)"))
	assert.True(t, env.Logger.Contains("Decimals: 1"))
	assert.True(t, env.Logger.Contains("Supply:   250000000"))
	assert.False(t, env.Logger.Contains("Max:"))

	_, err = env.Run([]*cli.Command{TokenCommand}, "token", "info", "0.0.8999")
	assert.Error(t, err)
}

func TestTokenApproveUsesDecimals(t *testing.T) {
	env := testutils.NewEnv(t, testutils.EnvOptions{
		ABIs:         map[contracts.ContractType]string{contracts.ERC20Contract: erc20TestABI},
		WithOperator: true,
		AssumeYes:    true,
	})
	env.Mirror.Routes["/api/v1/tokens/0.0.8000"] = lazyTokenRoute()

	_, err := env.Run([]*cli.Command{TokenCommand}, "token", "approve", "0.0.8000", "0.0.4000", "12.5")
	require.NoError(t, err)
	require.Len(t, env.Relay.Sent, 1)
	assert.Equal(t, addr(8000), *env.Relay.Sent[0].To())

	name, values := unpackSent(t, parseABI(t, erc20TestABI), env.Relay.Sent[0])
	assert.Equal(t, "approve", name)
	assert.Equal(t, addr(4000), values[0])
	assert.Equal(t, big.NewInt(125), values[1])

	_, err = env.Run([]*cli.Command{TokenCommand}, "token", "approve", "0.0.8000", "0.0.4000", "1.25")
	assert.ErrorContains(t, err, "at most 1 decimal places")
}

func TestTokenApproveRejectsNFTs(t *testing.T) {
	env := testutils.NewEnv(t, testutils.EnvOptions{WithOperator: true, AssumeYes: true})
	nft := lazyTokenRoute()
	nft["type"] = "NON_FUNGIBLE_UNIQUE"
	nft["decimals"] = "0"
	env.Mirror.Routes["/api/v1/tokens/0.0.9000"] = nft

	_, err := env.Run([]*cli.Command{TokenCommand}, "token", "approve", "0.0.9000", "0.0.4000", "1")
	assert.ErrorContains(t, err, "use approve-nft-all")
	assert.Empty(t, env.Relay.Sent)
}
