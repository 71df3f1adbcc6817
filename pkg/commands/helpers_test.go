package commands

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/lazysuperheroes/mission-cli/pkg/hedera"
	"github.com/stretchr/testify/require"
)

const missionTestABI = `[
	{"type":"function","name":"getUsersOnMission","stateMutability":"view","inputs":[],"outputs":[{"name":"users","type":"address[]"}]},
	{"type":"function","name":"getSlotsRemaining","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"entryFee","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"isPaused","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"enterMission","stateMutability":"nonpayable","inputs":[{"name":"collections","type":"address[]"},{"name":"serials","type":"uint256[]"}],"outputs":[]},
	{"type":"function","name":"leaveMission","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"updatePauseStatus","stateMutability":"nonpayable","inputs":[{"name":"paused","type":"bool"}],"outputs":[]},
	{"type":"error","name":"MissionFull","inputs":[]}
]`

const factoryTestABI = `[
	{"type":"function","name":"getDeployedMissions","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"}]},
	{"type":"function","name":"deployMission","stateMutability":"nonpayable","inputs":[{"name":"duration","type":"uint256"},{"name":"fee","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"addAdmin","stateMutability":"nonpayable","inputs":[{"name":"admin","type":"address"}],"outputs":[]},
	{"type":"function","name":"removeAdmin","stateMutability":"nonpayable","inputs":[{"name":"admin","type":"address"}],"outputs":[]}
]`

const delegateTestABI = `[
	{"type":"function","name":"getSerialsDelegatedByRange","stateMutability":"view","inputs":[{"name":"token","type":"address"},{"name":"offset","type":"uint256"},{"name":"limit","type":"uint256"}],"outputs":[{"name":"serials","type":"uint256[]"}]},
	{"type":"function","name":"delegateNFT","stateMutability":"nonpayable","inputs":[{"name":"delegate","type":"address"},{"name":"token","type":"address"},{"name":"serials","type":"uint256[]"}],"outputs":[]},
	{"type":"function","name":"totalSerialsDelegated","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"event","name":"TokenDelegated","anonymous":false,"inputs":[{"indexed":true,"name":"token","type":"address"},{"indexed":true,"name":"serial","type":"uint256"},{"indexed":false,"name":"delegate","type":"address"},{"indexed":false,"name":"delegated","type":"bool"}]}
]`

func parseABI(t *testing.T, raw string) *abi.ABI {
	t.Helper()
	a, err := abi.JSON(strings.NewReader(raw))
	require.NoError(t, err)
	return &a
}

func addr(num uint64) ethcommon.Address {
	return hedera.EntityID{Num: num}.ToEVMAddress()
}

// unpackSent decodes the inputs of a sent transaction
func unpackSent(t *testing.T, a *abi.ABI, tx *types.Transaction) (string, []any) {
	t.Helper()
	m, err := a.MethodById(tx.Data()[:4])
	require.NoError(t, err)
	values, err := m.Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	return m.Name, values
}
