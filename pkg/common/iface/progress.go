package iface

// ProgressRow is one tracked step as reported by ProgressRows
type ProgressRow struct {
	Module string
	Pct    int
	Label  string
}

// ProgressTracker reports per-step completion of long operations such as
// an economy snapshot
type ProgressTracker interface {
	ProgressRows() []ProgressRow
	Set(id string, pct int, label string)
	Render()
	Clear()
}

// ProgressInfo is the tracker-internal state of a step
type ProgressInfo struct {
	Percentage  int
	DisplayText string
	Timestamp   string
}
