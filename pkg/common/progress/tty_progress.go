package progress

import (
	"fmt"
	"os"
	"strings"

	"github.com/lazysuperheroes/mission-cli/pkg/common/iface"
)

const barWidth = 30

// TTYProgressTracker redraws a block of progress bars in place
type TTYProgressTracker struct {
	tracker
	linesDrawn int
	target     *os.File
}

func NewTTYProgressTracker(max int, target *os.File) *TTYProgressTracker {
	return &TTYProgressTracker{tracker: newTracker(max), target: target}
}

func (t *TTYProgressTracker) ProgressRows() []iface.ProgressRow {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rows()
}

func (t *TTYProgressTracker) Set(id string, pct int, label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.update(id, pct, label)
}

func (t *TTYProgressTracker) Render() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.linesDrawn > 0 {
		fmt.Fprintf(t.target, "\033[%dA", t.linesDrawn)
	}
	for _, id := range t.order {
		info := t.progress[id]
		fmt.Fprintf(t.target, "\r\033[K%s %s %3d%% %s\n",
			info.Timestamp, bar(info.Percentage), info.Percentage, info.DisplayText)
	}
	t.linesDrawn = len(t.order)
}

func (t *TTYProgressTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := 0; i < t.linesDrawn; i++ {
		fmt.Fprint(t.target, "\033[1A\r\033[K")
	}
	t.linesDrawn = 0
	t.reset()
}

func bar(pct int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct * barWidth / 100
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled) + "]"
}
