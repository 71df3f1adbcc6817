package logger

import "github.com/lazysuperheroes/mission-cli/pkg/common/iface"

// MultiLogger fans every call out to several loggers
type MultiLogger struct {
	loggers []iface.Logger
}

func NewMultiLogger(loggers ...iface.Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

func (m *MultiLogger) Title(msg string, args ...any) {
	for _, l := range m.loggers {
		l.Title(msg, args...)
	}
}

func (m *MultiLogger) Info(msg string, args ...any) {
	for _, l := range m.loggers {
		l.Info(msg, args...)
	}
}

func (m *MultiLogger) Warn(msg string, args ...any) {
	for _, l := range m.loggers {
		l.Warn(msg, args...)
	}
}

func (m *MultiLogger) Error(msg string, args ...any) {
	for _, l := range m.loggers {
		l.Error(msg, args...)
	}
}

func (m *MultiLogger) Debug(msg string, args ...any) {
	for _, l := range m.loggers {
		l.Debug(msg, args...)
	}
}
