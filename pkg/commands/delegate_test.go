package commands

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/lazysuperheroes/mission-cli/pkg/common/contracts"
	"github.com/lazysuperheroes/mission-cli/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func delegateEnv(t *testing.T, opts testutils.EnvOptions) *testutils.Env {
	t.Helper()
	opts.ABIs = map[contracts.ContractType]string{contracts.LazyDelegateRegistryContract: delegateTestABI}
	env := testutils.NewEnv(t, opts)
	env.Register(t, contracts.LazyDelegateRegistryContract, 6000)
	return env
}

func TestDelegateSerialsPaging(t *testing.T) {
	env := delegateEnv(t, testutils.EnvOptions{})
	env.Mirror.Calls["getSerialsDelegatedByRange"] = []any{[]*big.Int{big.NewInt(11), big.NewInt(12)}}

	_, err := env.Run([]*cli.Command{DelegateCommand}, "delegate", "serials", "--offset", "100", "--limit", "2", "0.0.7777")
	require.NoError(t, err)
	assert.True(t, env.Logger.Contains("serials: [11, 12]"))

	require.NotEmpty(t, env.Mirror.Requests)
	data, err := hexutil.Decode(env.Mirror.Requests[len(env.Mirror.Requests)-1].Data)
	require.NoError(t, err)
	values, err := parseABI(t, delegateTestABI).Methods["getSerialsDelegatedByRange"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	assert.Equal(t, addr(7777), values[0])
	assert.Equal(t, int64(100), values[1].(*big.Int).Int64())
	assert.Equal(t, int64(2), values[2].(*big.Int).Int64())
}

func TestDelegateSerialsRejectsZeroLimit(t *testing.T) {
	env := delegateEnv(t, testutils.EnvOptions{})

	_, err := env.Run([]*cli.Command{DelegateCommand}, "delegate", "serials", "--limit", "0", "0.0.7777")
	assert.ErrorContains(t, err, "--limit must be positive")

	_, err = env.Run([]*cli.Command{DelegateCommand}, "delegate", "serials")
	assert.ErrorContains(t, err, "expects 1 argument(s)")
}

func TestDelegateNFT(t *testing.T) {
	env := delegateEnv(t, testutils.EnvOptions{WithOperator: true, AssumeYes: true})

	_, err := env.Run([]*cli.Command{DelegateCommand}, "delegate", "nft", "0.0.2002", "0.0.7777", "1,2")
	require.NoError(t, err)
	require.Len(t, env.Relay.Sent, 1)

	name, values := unpackSent(t, parseABI(t, delegateTestABI), env.Relay.Sent[0])
	assert.Equal(t, "delegateNFT", name)
	assert.Equal(t, addr(2002), values[0])
	assert.Len(t, values[2], 2)
}

func TestDelegateArityIsChecked(t *testing.T) {
	env := delegateEnv(t, testutils.EnvOptions{})

	_, err := env.Run([]*cli.Command{DelegateCommand}, "delegate", "total", "extra")
	assert.ErrorContains(t, err, "expects 0 argument(s)")
}
