package progress

import (
	"os"
	"sync"
	"time"

	"github.com/lazysuperheroes/mission-cli/pkg/common/iface"
	"golang.org/x/term"
)

// IsTTY reports whether stdout is an interactive terminal
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// tracker holds the ordered, capped step table shared by both trackers
type tracker struct {
	mu         sync.Mutex
	progress   map[string]*iface.ProgressInfo
	order      []string
	maxTracked int
}

func newTracker(max int) tracker {
	return tracker{
		progress:   make(map[string]*iface.ProgressInfo),
		order:      make([]string, 0, max),
		maxTracked: max,
	}
}

// update applies a report and returns the stored info, or nil when the
// report was dropped. Percentages never move backwards. Caller holds mu.
func (t *tracker) update(id string, pct int, label string) *iface.ProgressInfo {
	ts := time.Now().Format("2006/01/02 15:04:05")
	if info, ok := t.progress[id]; ok {
		if info.Percentage >= pct {
			return nil
		}
		info.Percentage = pct
		info.DisplayText = label
		info.Timestamp = ts
		return info
	}
	if len(t.progress) >= t.maxTracked {
		return nil
	}
	info := &iface.ProgressInfo{Percentage: pct, DisplayText: label, Timestamp: ts}
	t.progress[id] = info
	t.order = append(t.order, id)
	return info
}

func (t *tracker) rows() []iface.ProgressRow {
	rows := make([]iface.ProgressRow, 0, len(t.order))
	for _, id := range t.order {
		info := t.progress[id]
		rows = append(rows, iface.ProgressRow{Module: id, Pct: info.Percentage, Label: info.DisplayText})
	}
	return rows
}

func (t *tracker) reset() {
	t.progress = make(map[string]*iface.ProgressInfo)
	t.order = t.order[:0]
}
