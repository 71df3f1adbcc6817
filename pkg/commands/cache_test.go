package commands

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/economy"
	"github.com/lazysuperheroes/mission-cli/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func cacheEnv(t *testing.T) *testutils.Env {
	t.Helper()
	for _, name := range []string{
		common.EnvLazyTokenID, common.EnvLazyGasStation, common.EnvMission, common.EnvMissionFactory,
		common.EnvBoostManager, common.EnvLazyNFTStaking, common.EnvDirectusURL, common.EnvDirectusToken,
	} {
		t.Setenv(name, "")
	}
	return testutils.NewEnv(t, testutils.EnvOptions{})
}

func TestCacheRunRejectsBadSinks(t *testing.T) {
	env := cacheEnv(t)
	cmds := []*cli.Command{CacheCommand}

	_, err := env.Run(cmds, "cache", "run", "--sink", "kafka")
	assert.ErrorContains(t, err, `unknown sink "kafka"`)

	_, err = env.Run(cmds, "cache", "run", "--sink", "sql")
	assert.ErrorContains(t, err, "sql sink needs --sql-dsn")

	_, err = env.Run(cmds, "cache", "run", "--sink", "stdout", "--sink", "directus")
	assert.ErrorContains(t, err, "directus: url not configured")
}

func TestCacheRunWritesPartialSnapshot(t *testing.T) {
	env := cacheEnv(t)
	dsn := filepath.Join(t.TempDir(), "economy.db")

	out, err := env.Run([]*cli.Command{CacheCommand}, "cache", "run", "--sink", "stdout", "--sink", "sql", "--sql-dsn", dsn)
	require.NoError(t, err)

	var snap economy.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, env.Session.Network.String(), snap.Network)
	assert.Contains(t, snap.Errors, economy.SectionLazyToken)
	assert.True(t, env.Logger.ContainsLevel("WARN", "is partial"))

	sqlSink, err := economy.OpenSQLSink(dsn)
	require.NoError(t, err)
	defer sqlSink.Close()
	stored, err := sqlSink.Latest(context.Background(), snap.Network)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, stored.ID)
}

func TestCacheScheduleRejectsBadExpression(t *testing.T) {
	env := cacheEnv(t)

	_, err := env.Run([]*cli.Command{CacheCommand}, "cache", "schedule", "--cron-expr", "every tuesday")
	assert.Error(t, err)
}
