package common

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lazysuperheroes/mission-cli/pkg/common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scriptedPrompter(input string, interactive bool) (*Prompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Prompter{In: strings.NewReader(input), Out: out, Interactive: &interactive}, out
}

func TestTelemetryPromptWithOptions(t *testing.T) {
	log := logger.NewNoopLogger()

	t.Run("flags win", func(t *testing.T) {
		p, _ := scriptedPrompter("n\n", true)
		enabled, err := TelemetryPromptWithOptions(log, TelemetryPromptOptions{EnableTelemetry: true, Prompter: p})
		require.NoError(t, err)
		assert.True(t, enabled)

		enabled, err = TelemetryPromptWithOptions(log, TelemetryPromptOptions{DisableTelemetry: true, Prompter: p})
		require.NoError(t, err)
		assert.False(t, enabled)
	})

	t.Run("CI skips the prompt", func(t *testing.T) {
		t.Setenv("CI", "true")
		p, out := scriptedPrompter("y\n", true)
		enabled, err := TelemetryPromptWithOptions(log, TelemetryPromptOptions{SkipPromptInCI: true, Prompter: p})
		require.NoError(t, err)
		assert.False(t, enabled)
		assert.Empty(t, out.String())
	})

	t.Run("empty answer defaults to yes", func(t *testing.T) {
		t.Setenv("CI", "")
		p, out := scriptedPrompter("\n", true)
		enabled, err := TelemetryPromptWithOptions(log, TelemetryPromptOptions{Prompter: p})
		require.NoError(t, err)
		assert.True(t, enabled)
		assert.Contains(t, out.String(), "[Y/n]")
	})

	t.Run("no declines", func(t *testing.T) {
		p, _ := scriptedPrompter("no\n", true)
		enabled, err := TelemetryPromptWithOptions(log, TelemetryPromptOptions{Prompter: p})
		require.NoError(t, err)
		assert.False(t, enabled)
	})

	t.Run("non-interactive disables", func(t *testing.T) {
		p, out := scriptedPrompter("y\n", false)
		enabled, err := TelemetryPromptWithOptions(log, TelemetryPromptOptions{Prompter: p})
		require.NoError(t, err)
		assert.False(t, enabled)
		assert.Contains(t, out.String(), "Non-interactive")
	})
}

func TestHandleFirstRunTelemetryPromptWithOptions(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	log := logger.NewNoopLogger()

	enabled, firstRun, err := HandleFirstRunTelemetryPromptWithOptions(log, TelemetryPromptOptions{EnableTelemetry: true, Prompter: &Prompter{Out: &bytes.Buffer{}}})
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.True(t, firstRun)

	// second run reads the stored preference without prompting
	enabled, firstRun, err = HandleFirstRunTelemetryPromptWithOptions(log, TelemetryPromptOptions{DisableTelemetry: true})
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.False(t, firstRun)
}

func TestConfirm(t *testing.T) {
	p, out := scriptedPrompter("y\n", true)
	require.NoError(t, p.Confirm(false, "Proceed?"))
	assert.Equal(t, "Proceed? [y/N]: ", out.String())

	p, _ = scriptedPrompter("YES\n", true)
	assert.NoError(t, p.Confirm(false, "Proceed?"))

	p, _ = scriptedPrompter("\n", true)
	assert.ErrorIs(t, p.Confirm(false, "Proceed?"), ErrNotConfirmed)

	p, _ = scriptedPrompter("", true)
	assert.ErrorIs(t, p.Confirm(false, "Proceed?"), ErrNotConfirmed, "EOF declines")

	p, out = scriptedPrompter("y\n", false)
	assert.ErrorIs(t, p.Confirm(false, "Proceed?"), ErrNotConfirmed)
	assert.Empty(t, out.String())

	assert.NoError(t, p.Confirm(true, "Proceed?"))
}
