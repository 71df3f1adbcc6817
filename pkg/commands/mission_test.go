package commands

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/common/contracts"
	"github.com/lazysuperheroes/mission-cli/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func missionEnv(t *testing.T, opts testutils.EnvOptions) *testutils.Env {
	t.Helper()
	opts.ABIs = map[contracts.ContractType]string{contracts.MissionContract: missionTestABI}
	env := testutils.NewEnv(t, opts)
	env.Register(t, contracts.MissionContract, 5000)
	return env
}

func TestMissionUsersQuery(t *testing.T) {
	env := missionEnv(t, testutils.EnvOptions{})
	env.Mirror.Calls["getUsersOnMission"] = []any{[]ethcommon.Address{addr(1001), addr(1002)}}

	_, err := env.Run([]*cli.Command{MissionCommand}, "mission", "users")
	require.NoError(t, err)
	assert.True(t, env.Logger.Contains("0.0.1001"))
	assert.True(t, env.Logger.Contains("0.0.1002"))
	assert.Equal(t, []string{"getUsersOnMission"}, env.Mirror.CalledMethods())
	assert.Empty(t, env.Relay.Sent, "queries never send transactions")
}

func TestMissionEnter(t *testing.T) {
	env := missionEnv(t, testutils.EnvOptions{WithOperator: true})

	_, err := env.Run([]*cli.Command{MissionCommand}, "mission", "enter", "--token", "0.0.7777", "--yes", "3", "4,5")
	require.NoError(t, err)

	require.Len(t, env.Relay.Sent, 1)
	tx := env.Relay.Sent[0]
	assert.Equal(t, addr(5000), *tx.To())

	name, values := unpackSent(t, parseABI(t, missionTestABI), tx)
	assert.Equal(t, "enterMission", name)
	assert.Equal(t, []ethcommon.Address{addr(7777), addr(7777), addr(7777)}, values[0])
	serials := values[1].([]*big.Int)
	require.Len(t, serials, 3)
	assert.Equal(t, int64(5), serials[2].Int64())

	assert.True(t, env.Logger.Contains("Status:      SUCCESS"))
	assert.True(t, env.Logger.Contains("Operator: 0.0.1001"))
}

func TestMissionEnterNeedsConfirmation(t *testing.T) {
	env := missionEnv(t, testutils.EnvOptions{WithOperator: true})

	_, err := env.Run([]*cli.Command{MissionCommand}, "mission", "enter", "--token", "0.0.7777", "3")
	assert.ErrorIs(t, err, common.ErrNotConfirmed)
	assert.Empty(t, env.Relay.Sent)
}

func TestMissionEnterWithoutCredentials(t *testing.T) {
	env := missionEnv(t, testutils.EnvOptions{})

	_, err := env.Run([]*cli.Command{MissionCommand}, "mission", "leave", "--yes")
	assert.ErrorIs(t, err, common.ErrMissingCredentials)
	assert.Empty(t, env.Relay.Sent)
}

func TestMissionDryRunAndValue(t *testing.T) {
	env := missionEnv(t, testutils.EnvOptions{WithOperator: true})

	_, err := env.Run([]*cli.Command{MissionCommand}, "mission", "pause", "--dry-run")
	require.NoError(t, err)
	assert.Empty(t, env.Relay.Sent)
	assert.True(t, env.Logger.Contains("Dry run: nothing sent"))

	_, err = env.Run([]*cli.Command{MissionCommand}, "mission", "leave", "--value", "1", "--yes")
	assert.ErrorContains(t, err, "not payable")

	_, err = env.Run([]*cli.Command{MissionCommand}, "mission", "pause", "--yes", "extra")
	assert.ErrorContains(t, err, "takes no arguments")
}

func TestMissionPauseSendsBool(t *testing.T) {
	env := missionEnv(t, testutils.EnvOptions{WithOperator: true, AssumeYes: true})

	_, err := env.Run([]*cli.Command{MissionCommand}, "mission", "unpause")
	require.NoError(t, err)
	require.Len(t, env.Relay.Sent, 1)
	name, values := unpackSent(t, parseABI(t, missionTestABI), env.Relay.Sent[0])
	assert.Equal(t, "updatePauseStatus", name)
	assert.Equal(t, false, values[0])
}

func TestMissionRevertIsDecoded(t *testing.T) {
	env := missionEnv(t, testutils.EnvOptions{WithOperator: true})
	env.Mirror.Reverts["enterMission"] = crypto.Keccak256([]byte("MissionFull()"))[:4]

	_, err := env.Run([]*cli.Command{MissionCommand}, "mission", "enter", "--token", "0.0.7777", "--yes", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MissionFull")
	assert.Empty(t, env.Relay.Sent)
}

func TestMissionInfoSkipsFailingViews(t *testing.T) {
	env := missionEnv(t, testutils.EnvOptions{})
	env.Mirror.Calls["entryFee"] = []any{big.NewInt(250)}
	env.Mirror.Calls["getSlotsRemaining"] = []any{big.NewInt(7)}
	env.Mirror.Calls["getUsersOnMission"] = []any{[]ethcommon.Address{}}
	env.Mirror.Calls["isPaused"] = []any{true}

	_, err := env.Run([]*cli.Command{MissionCommand}, "mission", "info")
	require.NoError(t, err)
	assert.True(t, env.Logger.Contains("entryFee: 250"))
	assert.True(t, env.Logger.Contains("isPaused: true"))
	assert.False(t, env.Logger.Contains("[0]:"))
	assert.True(t, env.Logger.ContainsLevel("WARN", "getDecrementDetails: not in ABI"))
}

func TestMissionWithoutAddress(t *testing.T) {
	env := testutils.NewEnv(t, testutils.EnvOptions{ABIs: map[contracts.ContractType]string{contracts.MissionContract: missionTestABI}})
	t.Setenv(common.EnvMission, "")

	_, err := env.Run([]*cli.Command{MissionCommand}, "mission", "slots")
	require.Error(t, err)
	assert.Contains(t, err.Error(), common.EnvMission)

	env.Mirror.Calls["getSlotsRemaining"] = []any{big.NewInt(3)}
	_, err = env.Run([]*cli.Command{MissionCommand}, "mission", "slots", "--contract", "0.0.5001")
	require.NoError(t, err)
	assert.True(t, env.Logger.Contains("[0]: 3"))
}
