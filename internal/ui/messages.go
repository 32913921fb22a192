package ui

// View represents the current active view
type View int

const (
	ViewToday View = iota
	ViewHistory
	ViewPto
)

// String returns the display name for a view
func (v View) String() string {
	switch v {
	case ViewToday:
		return "Today"
	case ViewHistory:
		return "History"
	case ViewPto:
		return "PTO"
	default:
		return "Unknown"
	}
}

// Messages for inter-component communication

// DarkModeChangedMsg reports the persisted dark mode flag after a toggle
type DarkModeChangedMsg struct {
	Dark bool
	Err  error
}

// ExportedMsg reports a finished backup export
type ExportedMsg struct {
	Path string
	Err  error
}
