package common

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/lazysuperheroes/mission-cli/pkg/common/iface"
	"github.com/lazysuperheroes/mission-cli/pkg/common/logger"
	"github.com/lazysuperheroes/mission-cli/pkg/common/progress"
	"github.com/urfave/cli/v2"
)

// loggerContextKey is used to store the logger in the context
type loggerContextKey struct{}

// progressTrackerContextKey is used to store the progress tracker in the context
type progressTrackerContextKey struct{}

// RexExp to match semver strings
var semverRegex = regexp.MustCompile(`^v?\d+\.\d+\.\d+$`)

// GetLoggerFromCLIContext creates a logger from the --verbose and --log-file flags
func GetLoggerFromCLIContext(cCtx *cli.Context) (iface.Logger, iface.ProgressTracker) {
	verbose := cCtx.Bool("verbose")
	log, tracker := GetLogger(verbose)
	if path := cCtx.String("log-file"); path != "" {
		file := logger.NewFileLogger(logger.FileConfig{Path: path, MaxBackups: 3, MaxAgeDays: 28}, verbose)
		log = logger.NewMultiLogger(log, file)
	}
	return log, tracker
}

// Get logger for the env we're in
func GetLogger(verbose bool) (iface.Logger, iface.ProgressTracker) {
	var log iface.Logger
	var tracker iface.ProgressTracker

	if progress.IsTTY() {
		log = logger.NewLogger(verbose)
		tracker = progress.NewTTYProgressTracker(10, os.Stdout)
	} else {
		log = logger.NewZapLogger(verbose)
		tracker = progress.NewLogProgressTracker(10, log)
	}

	return log, tracker
}

// isCI checks if the code is running in a CI environment like GitHub Actions.
func isCI() bool {
	return os.Getenv("CI") == "true"
}

// WithLogger stores the logger in the context
func WithLogger(ctx context.Context, logger iface.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// WithProgressTracker stores the progress tracker in the context
func WithProgressTracker(ctx context.Context, tracker iface.ProgressTracker) context.Context {
	return context.WithValue(ctx, progressTrackerContextKey{}, tracker)
}

// LoggerFromContext retrieves the logger from the context
// If no logger is found, it returns a non-verbose logger as fallback
func LoggerFromContext(ctx context.Context) iface.Logger {
	if logger, ok := ctx.Value(loggerContextKey{}).(iface.Logger); ok {
		return logger
	}
	log, _ := GetLogger(false)
	return log
}

// ProgressTrackerFromContext retrieves the progress tracker from the context
// If no tracker is found, it returns a non-verbose tracker as fallback
func ProgressTrackerFromContext(ctx context.Context) iface.ProgressTracker {
	if tracker, ok := ctx.Value(progressTrackerContextKey{}).(iface.ProgressTracker); ok {
		return tracker
	}
	_, tracker := GetLogger(false)
	return tracker
}

// IsSemver checks if a version string is valid
func IsSemver(s string) bool {
	return semverRegex.MatchString(s)
}

// ParseVersion converts version string like "1.1.0" to comparable integers
func ParseVersion(v string) (major, minor, patch int, err error) {
	parts := strings.Split(strings.TrimPrefix(v, "v"), ".")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid version format: %s", v)
	}

	nums := make([]int, 3)
	for i, name := range []string{"major", "minor", "patch"} {
		nums[i], err = strconv.Atoi(parts[i])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid %s version: %s", name, parts[i])
		}
	}
	return nums[0], nums[1], nums[2], nil
}

// CompareVersions returns true if v1 > v2
func CompareVersions(v1, v2 string) (bool, error) {
	major1, minor1, patch1, err := ParseVersion(v1)
	if err != nil {
		return false, fmt.Errorf("parse version %s: %w", v1, err)
	}
	major2, minor2, patch2, err := ParseVersion(v2)
	if err != nil {
		return false, fmt.Errorf("parse version %s: %w", v2, err)
	}

	if major1 != major2 {
		return major1 > major2, nil
	}
	if minor1 != minor2 {
		return minor1 > minor2, nil
	}
	return patch1 > patch2, nil
}
