package common

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/lazysuperheroes/mission-cli/pkg/common/contracts"
	"github.com/lazysuperheroes/mission-cli/pkg/hedera"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestNetworkFromEnvPrecedence(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	t.Setenv(EnvEnvironment, "")
	_, err := NetworkFromEnv("")
	assert.ErrorContains(t, err, "network not set")

	require.NoError(t, SaveGlobalConfig(&GlobalConfig{DefaultNetwork: "PREVIEW"}))
	n, err := NetworkFromEnv("")
	require.NoError(t, err)
	assert.Equal(t, hedera.Previewnet, n)

	t.Setenv(EnvEnvironment, "MAIN")
	n, err = NetworkFromEnv("")
	require.NoError(t, err)
	assert.Equal(t, hedera.Mainnet, n)

	n, err = NetworkFromEnv("test")
	require.NoError(t, err)
	assert.Equal(t, hedera.Testnet, n)

	_, err = NetworkFromEnv("DEVNET")
	assert.ErrorContains(t, err, "expected one of TEST, MAIN, PREVIEW, LOCAL")
}

func TestOperatorFromEnv(t *testing.T) {
	t.Setenv(EnvPrivateKey, "")
	t.Setenv(EnvAccountID, "0.0.1001")
	_, err := OperatorFromEnv()
	assert.ErrorIs(t, err, ErrMissingCredentials)

	t.Setenv(EnvPrivateKey, "0x"+testKeyHex)
	op, err := OperatorFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "0.0.1001", op.AccountID.String())
	key, _ := crypto.HexToECDSA(testKeyHex)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), op.EVMAddress())

	t.Setenv(EnvAccountID, "1001")
	_, err = OperatorFromEnv()
	assert.ErrorContains(t, err, EnvAccountID)

	t.Setenv(EnvAccountID, "0.0.1001")
	t.Setenv(EnvPrivateKey, "302e020100300506032b657004220420"+testKeyHex)
	_, err = OperatorFromEnv()
	assert.ErrorIs(t, err, hedera.ErrED25519Key)
}

func TestEconomicEnv(t *testing.T) {
	t.Setenv(EnvLazyDecimals, "")
	t.Setenv(EnvLazyBurnPercent, "")
	assert.Equal(t, DefaultLazyDecimals, LazyDecimals())
	assert.Equal(t, DefaultLazyBurnPercentage, LazyBurnPercent())

	t.Setenv(EnvLazyDecimals, "8")
	t.Setenv(EnvLazyBurnPercent, "-3")
	assert.Equal(t, 8, LazyDecimals())
	assert.Equal(t, DefaultLazyBurnPercentage, LazyBurnPercent())
}

func TestContractEnvVar(t *testing.T) {
	name, ok := ContractEnvVar(contracts.LazyDelegateRegistryContract)
	assert.True(t, ok)
	assert.Equal(t, EnvLazyDelegateRegistry, name)
	_, ok = ContractEnvVar(contracts.ERC20Contract)
	assert.False(t, ok)
}
