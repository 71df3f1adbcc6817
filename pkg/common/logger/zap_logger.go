package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig enables a rotating JSON log file next to console output
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type ZapLogger struct {
	log   *zap.SugaredLogger
	level zap.AtomicLevel
}

func NewZapLogger(verbose bool) *ZapLogger {
	return NewZapLoggerWithFile(verbose, nil)
}

// NewZapLoggerWithFile tees every entry into a lumberjack-rotated file when
// file is set
func NewZapLoggerWithFile(verbose bool, file *FileConfig) *ZapLogger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	base, err := cfg.Build()
	if err != nil {
		base = zap.NewNop()
	}
	if file != nil && file.Path != "" {
		fileCore := newFileCore(file, cfg.Level)
		base = base.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, fileCore)
		}))
	}
	return &ZapLogger{log: base.Sugar(), level: cfg.Level}
}

// NewFileLogger logs only to the rotating file
func NewFileLogger(file FileConfig, verbose bool) *ZapLogger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	}
	return &ZapLogger{log: zap.New(newFileCore(&file, level)).Sugar(), level: level}
}

func newFileCore(file *FileConfig, level zap.AtomicLevel) zapcore.Core {
	maxSize := file.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 50
	}
	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   file.Path,
		MaxSize:    maxSize,
		MaxBackups: file.MaxBackups,
		MaxAge:     file.MaxAgeDays,
		Compress:   true,
	})
	return zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), writer, level)
}

// SetVerbose flips the level between debug and info at runtime
func (l *ZapLogger) SetVerbose(verbose bool) {
	if verbose {
		l.level.SetLevel(zapcore.DebugLevel)
	} else {
		l.level.SetLevel(zapcore.InfoLevel)
	}
}

// Sync flushes buffered entries
func (l *ZapLogger) Sync() error {
	return l.log.Sync()
}

func (l *ZapLogger) Title(msg string, args ...any) {
	for _, line := range strings.Split(fmt.Sprintf("\n"+msg+"\n", args...), "\n") {
		l.log.Infof("%s", line)
	}
}

func (l *ZapLogger) Info(msg string, args ...any) {
	if msg = strings.Trim(msg, "\n"); msg != "" {
		l.log.Infof(msg, args...)
	}
}

func (l *ZapLogger) Warn(msg string, args ...any) {
	if msg = strings.Trim(msg, "\n"); msg != "" {
		l.log.Warnf(msg, args...)
	}
}

func (l *ZapLogger) Error(msg string, args ...any) {
	if msg = strings.Trim(msg, "\n"); msg != "" {
		l.log.Errorf(msg, args...)
	}
}

func (l *ZapLogger) Debug(msg string, args ...any) {
	if msg = strings.Trim(msg, "\n"); msg != "" {
		l.log.Debugf(msg, args...)
	}
}
