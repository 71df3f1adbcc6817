package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool {
	return &b
}

func TestGlobalConfig(t *testing.T) {
	t.Run("LoadGlobalConfig_FirstTime", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		config, err := LoadGlobalConfig()
		require.NoError(t, err)
		assert.True(t, config.FirstRun)
		assert.Nil(t, config.TelemetryEnabled)

		first, err := IsFirstRun()
		require.NoError(t, err)
		assert.True(t, first)
	})

	t.Run("SaveAndLoadGlobalConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", tmpDir)

		require.NoError(t, SaveGlobalConfig(&GlobalConfig{TelemetryEnabled: boolPtr(true), DefaultNetwork: "TEST"}))
		assert.FileExists(t, filepath.Join(tmpDir, GlobalConfigDirName, GlobalConfigFile))

		loaded, err := LoadGlobalConfig()
		require.NoError(t, err)
		assert.False(t, loaded.FirstRun)
		require.NotNil(t, loaded.TelemetryEnabled)
		assert.True(t, *loaded.TelemetryEnabled)
		assert.Equal(t, "TEST", loaded.DefaultNetwork)
	})

	t.Run("TelemetryPreference", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		pref, err := GetGlobalTelemetryPreference()
		require.NoError(t, err)
		assert.Nil(t, pref)

		require.NoError(t, SetGlobalTelemetryPreference(false))
		pref, err = GetGlobalTelemetryPreference()
		require.NoError(t, err)
		require.NotNil(t, pref)
		assert.False(t, *pref)

		first, err := IsFirstRun()
		require.NoError(t, err)
		assert.False(t, first)
	})

	t.Run("MarkFirstRunComplete", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		require.NoError(t, MarkFirstRunComplete())
		first, err := IsFirstRun()
		require.NoError(t, err)
		assert.False(t, first)
	})

	t.Run("EnsureUserUUID", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		assert.Empty(t, getUserUUIDFromGlobalConfig())

		id, err := EnsureUserUUID()
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		again, err := EnsureUserUUID()
		require.NoError(t, err)
		assert.Equal(t, id, again)
		assert.Equal(t, id, getUserUUIDFromGlobalConfig())
	})
}

func TestGlobalConfigWithHomeDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)

	dir, err := GetGlobalConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", GlobalConfigDirName), dir)

	// relative XDG paths are ignored
	t.Setenv("XDG_CONFIG_HOME", "relative/dir")
	dir, err = GetGlobalConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", GlobalConfigDirName), dir)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
