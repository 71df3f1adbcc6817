package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// BasicLogger writes plain, prefixed lines through the standard log package.
// It is used on interactive terminals where zap's structured output is noise.
type BasicLogger struct {
	verbose bool
	out     *log.Logger
}

func NewLogger(verbose bool) *BasicLogger {
	return NewLoggerTo(os.Stderr, verbose)
}

// NewLoggerTo writes to w instead of stderr
func NewLoggerTo(w io.Writer, verbose bool) *BasicLogger {
	return &BasicLogger{
		verbose: verbose,
		out:     log.New(w, "", log.LstdFlags),
	}
}

func (l *BasicLogger) Title(msg string, args ...any) {
	for _, line := range strings.Split(fmt.Sprintf("\n"+msg+"\n", args...), "\n") {
		l.out.Printf("%s", line)
	}
}

func (l *BasicLogger) Info(msg string, args ...any) {
	l.emit("", msg, args)
}

func (l *BasicLogger) Warn(msg string, args ...any) {
	l.emit("Warning: ", msg, args)
}

func (l *BasicLogger) Error(msg string, args ...any) {
	l.emit("Error: ", msg, args)
}

func (l *BasicLogger) Debug(msg string, args ...any) {
	if !l.verbose {
		return
	}
	l.emit("Debug: ", msg, args)
}

// emit formats once and prints every line with the prefix
func (l *BasicLogger) emit(prefix, msg string, args []any) {
	formatted := strings.TrimSuffix(fmt.Sprintf(msg, args...), "\n")
	for _, line := range strings.Split(formatted, "\n") {
		l.out.Printf("%s%s", prefix, line)
	}
}
