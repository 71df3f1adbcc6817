package commands

import (
	"encoding/json"
	"testing"

	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/manifest"
	"github.com/lazysuperheroes/mission-cli/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestDeploymentsContractLifecycle(t *testing.T) {
	env := testutils.NewEnv(t, testutils.EnvOptions{})
	cmds := []*cli.Command{DeploymentsCommand}

	_, err := env.Run(cmds, "deployments", "set-contract", "--depends-on", "LazyGasStation", "MissionFactory", "0.0.4000")
	require.NoError(t, err)

	out, err := env.Run(cmds, "deployments", "show")
	require.NoError(t, err)
	var m manifest.Manifest
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	require.Contains(t, m.Contracts, "MissionFactory")
	entry := m.Contracts["MissionFactory"]
	assert.Equal(t, "0.0.4000", entry.ContractID)
	assert.Equal(t, addr(4000).Hex(), entry.EVMAddress)
	assert.Equal(t, []string{"LazyGasStation"}, entry.Dependencies)

	_, err = env.Run(cmds, "deployments", "list")
	require.NoError(t, err)
	assert.True(t, env.Logger.Contains("MissionFactory"))

	_, err = env.Run(cmds, "deployments", "remove-contract", "MissionFactory")
	assert.ErrorIs(t, err, common.ErrNotConfirmed)

	_, err = env.Run(cmds, "deployments", "remove-contract", "--yes", "MissionFactory")
	require.NoError(t, err)
	names, err := env.Session.Manifests.ListContracts(env.Session.Network.String())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDeploymentsSetContractValidates(t *testing.T) {
	env := testutils.NewEnv(t, testutils.EnvOptions{})
	cmds := []*cli.Command{DeploymentsCommand}

	_, err := env.Run(cmds, "deployments", "set-contract", "Mission", "not-an-id")
	assert.ErrorContains(t, err, "contract id")

	_, err = env.Run(cmds, "deployments", "set-contract", "Mission")
	assert.ErrorContains(t, err, "expects 2 argument(s)")
}

func TestDeploymentsRoles(t *testing.T) {
	env := testutils.NewEnv(t, testutils.EnvOptions{})
	cmds := []*cli.Command{DeploymentsCommand}

	_, err := env.Run(cmds, "deployments", "add-role", "stakingAdmins", "0.0.3003")
	require.NoError(t, err)
	_, err = env.Run(cmds, "deployments", "add-role", "stakingAdmins", "0.0.3003")
	require.NoError(t, err)

	m, err := env.Session.Manifests.Load(env.Session.Network.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"0.0.3003"}, m.Roles.StakingAdmins)

	_, err = env.Run(cmds, "deployments", "add-role", "owners", "0.0.3003")
	assert.ErrorContains(t, err, `unknown role "owners"`)

	_, err = env.Run(cmds, "deployments", "add-role", "stakingAdmins", "alice")
	assert.ErrorContains(t, err, "role member")

	_, err = env.Run(cmds, "deployments", "remove-role", "stakingAdmins", "0.0.3003")
	require.NoError(t, err)
	m, err = env.Session.Manifests.Load(env.Session.Network.String())
	require.NoError(t, err)
	assert.Empty(t, m.Roles.StakingAdmins)
}

func TestDeploymentsInitAndValidate(t *testing.T) {
	env := testutils.NewEnv(t, testutils.EnvOptions{})
	cmds := []*cli.Command{DeploymentsCommand}

	_, err := env.Run(cmds, "deployments", "init", "--description", "test deployments")
	require.NoError(t, err)
	_, err = env.Run(cmds, "deployments", "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = env.Run(cmds, "deployments", "validate")
	require.NoError(t, err)
	assert.True(t, env.Logger.Contains("manifest is valid"))

	out, err := env.Run(cmds, "deployments", "export", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "description: test deployments")
}
