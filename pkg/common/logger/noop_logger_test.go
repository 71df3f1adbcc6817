package logger

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lazysuperheroes/mission-cli/pkg/common/iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ iface.Logger          = (*NoopLogger)(nil)
	_ iface.Logger          = (*BasicLogger)(nil)
	_ iface.Logger          = (*ZapLogger)(nil)
	_ iface.Logger          = (*MultiLogger)(nil)
	_ iface.ProgressTracker = (*NoopProgressTracker)(nil)
)

func TestNoopLogger_LoggingMethods(t *testing.T) {
	log := NewNoopLogger()
	assert.Empty(t, log.GetEntries())

	log.Title("Mission %s", "0.0.42")
	log.Info("participants: %d", 3)
	log.Warn("slots low")
	log.Error("revert: %s", "LazyDelegateRegistryOnlyOwner()")
	log.Debug("gas estimate %d", 120000)

	entries := log.GetEntries()
	require.Len(t, entries, 5)
	assert.Equal(t, "TITLE", entries[0].Level)
	assert.Contains(t, entries[0].Message, "Mission 0.0.42")
	assert.Equal(t, LogEntry{Level: "INFO", Message: "participants: 3"}, entries[1])
	assert.Equal(t, LogEntry{Level: "WARN", Message: "slots low"}, entries[2])
	assert.Equal(t, "ERROR", entries[3].Level)
	assert.Equal(t, "gas estimate 120000", entries[4].Message)
}

func TestNoopLogger_SkipsEmptyMessages(t *testing.T) {
	log := NewNoopLogger()
	log.Info("")
	log.Warn("\n")
	log.Debug("\n\n")
	assert.Equal(t, 0, log.Len())
}

func TestNoopLogger_Queries(t *testing.T) {
	log := NewNoopLogger()
	log.Info("boost applied")
	log.Error("boost failed")
	log.Info("done")

	assert.Len(t, log.GetEntriesByLevel("INFO"), 2)
	assert.Nil(t, log.GetEntriesByLevel("DEBUG"))
	assert.Equal(t, []string{"boost applied", "boost failed", "done"}, log.GetMessages())
	assert.Equal(t, []string{"boost failed"}, log.GetMessagesByLevel("ERROR"))

	assert.True(t, log.Contains("boost"))
	assert.False(t, log.Contains("stake"))
	assert.True(t, log.ContainsLevel("ERROR", "failed"))
	assert.False(t, log.ContainsLevel("INFO", "failed"))

	log.Clear()
	assert.Equal(t, 0, log.Len())
	assert.Empty(t, log.GetMessages())
}

func TestNoopLogger_ConcurrentSafety(t *testing.T) {
	log := NewNoopLogger()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				log.Info("worker %d line %d", g, i)
				_ = log.Contains("worker")
			}
		}(g)
	}
	wg.Wait()
	assert.Equal(t, 400, log.Len())
}

func TestBasicLogger_Prefixes(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, false)
	log.Info("hello")
	log.Warn("careful")
	log.Error("broken\nsecond line")
	log.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "Warning: careful")
	assert.Contains(t, out, "Error: broken")
	assert.Contains(t, out, "Error: second line")
	assert.NotContains(t, out, "hidden")

	buf.Reset()
	NewLoggerTo(&buf, true).Debug("shown %d", 1)
	assert.Contains(t, buf.String(), "Debug: shown 1")
}

func TestMultiLogger_FansOut(t *testing.T) {
	a, b := NewNoopLogger(), NewNoopLogger()
	multi := NewMultiLogger(a, b)
	multi.Info("x=%d", 1)
	multi.Error("y")
	for _, l := range []*NoopLogger{a, b} {
		assert.Equal(t, []string{"x=1", "y"}, l.GetMessages())
	}
}

func TestFileLogger_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mission.log")
	log := NewFileLogger(FileConfig{Path: path}, false)
	log.Info("snapshot %s", "ok")
	log.Debug("not at info level")
	_ = log.Sync()

	assert.FileExists(t, path)
	log.SetVerbose(true)
	log.Debug(fmt.Sprintf("now %s", "visible"))
	_ = log.Sync()
}
