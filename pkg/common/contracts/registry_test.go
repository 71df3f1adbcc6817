package contracts

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const missionArtifact = `{
  "contractName": "Mission",
  "sourceName": "contracts/Mission.sol",
  "abi": [
    {"type":"function","name":"getSlotsRemaining","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
    {"type":"function","name":"enterMission","stateMutability":"payable","inputs":[{"name":"collections","type":"address[]"},{"name":"serials","type":"uint256[]"}],"outputs":[]}
  ],
  "bytecode": "0x"
}`

func writeArtifact(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(missionArtifact), 0o644))
}

func TestLoadArtifact(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, ArtifactPath(dir, "Mission"))

	art, err := LoadArtifact(dir, "Mission")
	require.NoError(t, err)
	assert.Equal(t, "Mission", art.ContractName)
	assert.Contains(t, art.ABI.Methods, "getSlotsRemaining")
	assert.True(t, art.ABI.Methods["enterMission"].IsPayable())
}

func TestLoadArtifactFallsBackToSearch(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, filepath.Join(dir, "contracts", "nested", "Mission.sol", "Mission.json"))

	art, err := LoadArtifact(dir, "Mission")
	require.NoError(t, err)
	assert.Contains(t, art.Path, "nested")
}

func TestLoadArtifactMissing(t *testing.T) {
	_, err := LoadArtifact(t.TempDir(), "Nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hardhat compile")
}

func TestParseContractType(t *testing.T) {
	assert.Equal(t, LazyGasStationContract, ParseContractType("LGS"))
	assert.Equal(t, LazyGasStationContract, ParseContractType("lazy-gas-station"))
	assert.Equal(t, MissionFactoryContract, ParseContractType("factory"))
	assert.Equal(t, LazyDelegateRegistryContract, ParseContractType("LazyDelegateRegistry"))
	assert.Equal(t, ContractType("SomethingElse"), ParseContractType("SomethingElse"))
	assert.True(t, ERC20Contract.Embedded())
	assert.False(t, MissionContract.Embedded())
}

func TestRegistry(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, ArtifactPath(dir, "Mission"))

	addr := common.HexToAddress("0x0000000000000000000000000000000000001234")
	token := common.HexToAddress("0x0000000000000000000000000000000000000099")
	registry, err := NewRegistryBuilder(dir).
		Add(MissionContract, addr, "0.0.4660").
		Add(ERC20Contract, token, "0.0.153").
		Add(BoostManagerContract, common.Address{}, "").
		Build()
	require.NoError(t, err)

	inst, err := registry.GetContract(MissionContract, addr)
	require.NoError(t, err)
	assert.Equal(t, "0.0.4660", inst.Info.ContractID)

	_, err = inst.Method("getSlotsRemaining")
	require.NoError(t, err)
	_, err = inst.Method("nope")
	assert.Error(t, err)

	erc, err := registry.GetContract(ERC20Contract, token)
	require.NoError(t, err)
	assert.Contains(t, erc.ABI.Methods, "approve")

	_, err = registry.GetContract(BoostManagerContract, addr)
	assert.Error(t, err)

	info, ok := registry.Lookup(addr)
	assert.True(t, ok)
	assert.Equal(t, MissionContract, info.Type)
	assert.Len(t, registry.ListContracts(MissionContract), 1)
}

func TestRegistryBuildReportsMissingArtifacts(t *testing.T) {
	_, err := NewRegistryBuilder(t.TempDir()).
		Add(LazyNFTStakingContract, common.HexToAddress("0x01"), "0.0.1").
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LazyNFTStaking")
}

func TestPackHelpers(t *testing.T) {
	data, err := PackAssociateCall()
	require.NoError(t, err)
	assert.Len(t, data, 4)

	data, err = PackApproveCall(common.HexToAddress("0x01"), big.NewInt(10))
	require.NoError(t, err)
	assert.Len(t, data, 4+64)

	_, err = GetERC721ABI()
	require.NoError(t, err)
}
