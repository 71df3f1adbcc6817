package progress

import (
	"github.com/lazysuperheroes/mission-cli/pkg/common/iface"
)

// LogProgressTracker logs a line when a step reaches 100%. It is used when
// output is not a terminal.
type LogProgressTracker struct {
	tracker
	logger iface.Logger
}

func NewLogProgressTracker(max int, logger iface.Logger) *LogProgressTracker {
	return &LogProgressTracker{tracker: newTracker(max), logger: logger}
}

func (s *LogProgressTracker) ProgressRows() []iface.ProgressRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows()
}

func (s *LogProgressTracker) Set(id string, pct int, label string) {
	s.mu.Lock()
	info := s.update(id, pct, label)
	s.mu.Unlock()
	if info != nil && info.Percentage == 100 {
		s.logger.Info("Progress: %s - %d%%", info.DisplayText, info.Percentage)
	}
}

func (s *LogProgressTracker) Render() {}

func (s *LogProgressTracker) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}
