package logger

import (
	"fmt"
	"strings"
	"sync"

	"github.com/lazysuperheroes/mission-cli/pkg/common/iface"
)

// LogEntry is one buffered line of a NoopLogger
type LogEntry struct {
	Level   string
	Message string
}

// NoopLogger prints nothing and records every line so tests can assert on
// what a command logged. It is safe for concurrent use.
type NoopLogger struct {
	mu      sync.RWMutex
	entries []LogEntry
}

func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

func (l *NoopLogger) Title(msg string, args ...any) {
	l.add("TITLE", fmt.Sprintf("\n"+msg+"\n", args...))
}

func (l *NoopLogger) Info(msg string, args ...any)  { l.record("INFO", msg, args) }
func (l *NoopLogger) Warn(msg string, args ...any)  { l.record("WARN", msg, args) }
func (l *NoopLogger) Error(msg string, args ...any) { l.record("ERROR", msg, args) }
func (l *NoopLogger) Debug(msg string, args ...any) { l.record("DEBUG", msg, args) }

func (l *NoopLogger) record(level, msg string, args []any) {
	if msg = strings.Trim(msg, "\n"); msg == "" {
		return
	}
	l.add(level, fmt.Sprintf(msg, args...))
}

func (l *NoopLogger) add(level, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: message})
}

// filter returns the entries accepted by keep, in order
func (l *NoopLogger) filter(keep func(LogEntry) bool) []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []LogEntry
	for _, e := range l.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func messages(entries []LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

// GetEntries returns a copy of every buffered entry
func (l *NoopLogger) GetEntries() []LogEntry {
	entries := l.filter(func(LogEntry) bool { return true })
	if entries == nil {
		return []LogEntry{}
	}
	return entries
}

func (l *NoopLogger) GetEntriesByLevel(level string) []LogEntry {
	return l.filter(func(e LogEntry) bool { return e.Level == level })
}

func (l *NoopLogger) GetMessages() []string {
	return messages(l.GetEntries())
}

func (l *NoopLogger) GetMessagesByLevel(level string) []string {
	return messages(l.GetEntriesByLevel(level))
}

func (l *NoopLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}

func (l *NoopLogger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Contains reports whether any message contains text
func (l *NoopLogger) Contains(text string) bool {
	return len(l.filter(func(e LogEntry) bool { return strings.Contains(e.Message, text) })) > 0
}

// ContainsLevel reports whether any message at level contains text
func (l *NoopLogger) ContainsLevel(level, text string) bool {
	return len(l.filter(func(e LogEntry) bool {
		return e.Level == level && strings.Contains(e.Message, text)
	})) > 0
}

// NoopProgressTracker discards progress updates
type NoopProgressTracker struct{}

func NewNoopProgressTracker() *NoopProgressTracker {
	return &NoopProgressTracker{}
}

func (n *NoopProgressTracker) ProgressRows() []iface.ProgressRow { return []iface.ProgressRow{} }
func (n *NoopProgressTracker) Set(string, int, string)           {}
func (n *NoopProgressTracker) Render()                           {}
func (n *NoopProgressTracker) Clear()                            {}
