package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the application
type KeyMap struct {
	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Entry actions
	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Toggle key.Binding

	// Per-entry timer
	TimerStart key.Binding
	TimerPause key.Binding
	TimerStop  key.Binding

	// Stopwatch
	StopwatchToggle key.Binding
	StopwatchStop   key.Binding
	StopwatchReset  key.Binding

	// Views
	TodayView   key.Binding
	HistoryView key.Binding
	PtoView     key.Binding
	WeekFilter  key.Binding

	// General
	DarkMode key.Binding
	Export   key.Binding
	Help     key.Binding
	Quit     key.Binding
	Back     key.Binding
	Confirm  key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "bottom"),
		),

		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("enter", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("tab", "x"),
			key.WithHelp("tab", "toggle done"),
		),

		TimerStart: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "start/resume timer"),
		),
		TimerPause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause timer"),
		),
		TimerStop: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "stop timer"),
		),

		StopwatchToggle: key.NewBinding(
			key.WithKeys("s", " "),
			key.WithHelp("s/space", "stopwatch start/pause"),
		),
		StopwatchStop: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "stopwatch stop"),
		),
		StopwatchReset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "stopwatch reset"),
		),

		TodayView: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "today"),
		),
		HistoryView: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "history"),
		),
		PtoView: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "pto"),
		),
		WeekFilter: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "past week"),
		),

		DarkMode: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "dark mode"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("C-e", "export"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
	}
}

// ShortHelp returns short help bindings (for status bar)
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns full help bindings (for help view)
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Add, k.Edit, k.Delete, k.Toggle},
		{k.TimerStart, k.TimerPause, k.TimerStop},
		{k.StopwatchToggle, k.StopwatchStop, k.StopwatchReset},
		{k.TodayView, k.HistoryView, k.PtoView, k.WeekFilter},
		{k.DarkMode, k.Export, k.Help, k.Quit},
	}
}
