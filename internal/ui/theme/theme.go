package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/timelog/internal/model"
)

// Theme defines the color scheme and styles for the UI
type Theme struct {
	Name string
	Dark bool

	// Base colors
	Background lipgloss.Color
	Foreground lipgloss.Color
	Subtle     lipgloss.Color
	Highlight  lipgloss.Color
	Border     lipgloss.Color

	// Semantic colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Info      lipgloss.Color

	// Timer colors
	TimerRunning lipgloss.Color
	TimerPaused  lipgloss.Color

	// PTO type colors
	PtoVacation lipgloss.Color
	PtoSick     lipgloss.Color
	PtoPersonal lipgloss.Color
}

// Styles holds pre-computed lipgloss styles based on theme
type Styles struct {
	// Base styles
	App    lipgloss.Style
	Header lipgloss.Style
	Footer lipgloss.Style

	// Entry styles
	EntryNormal    lipgloss.Style
	EntrySelected  lipgloss.Style
	EntryCompleted lipgloss.Style
	Duration       lipgloss.Style
	Period         lipgloss.Style
	DateHeader     lipgloss.Style

	// Timer styles
	TimerRunning lipgloss.Style
	TimerPaused  lipgloss.Style
	Stopwatch    lipgloss.Style

	// Component styles
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style

	// Input styles
	Input        lipgloss.Style
	InputFocused lipgloss.Style
	Placeholder  lipgloss.Style

	// Panel styles
	Panel      lipgloss.Style
	PanelTitle lipgloss.Style

	// Help styles
	HelpKey       lipgloss.Style
	HelpDesc      lipgloss.Style
	HelpSeparator lipgloss.Style
}

// NewStyles creates styles from a theme
func NewStyles(t Theme) Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Background(t.Background).
			Foreground(t.Foreground),

		Header: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Padding(0, 1),

		EntryNormal: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 1),

		EntrySelected: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Background(t.Highlight).
			Padding(0, 1),

		EntryCompleted: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Strikethrough(true).
			Padding(0, 1),

		Duration: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true),

		Period: lipgloss.NewStyle().
			Foreground(t.Subtle),

		DateHeader: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			MarginTop(1),

		TimerRunning: lipgloss.NewStyle().
			Foreground(t.TimerRunning).
			Bold(true),

		TimerPaused: lipgloss.NewStyle().
			Foreground(t.TimerPaused).
			Italic(true),

		Stopwatch: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.TimerRunning).
			Padding(0, 2),

		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Italic(true),

		Label: lipgloss.NewStyle().
			Foreground(t.Subtle),

		Input: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		InputFocused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),

		Placeholder: lipgloss.NewStyle().
			Foreground(t.Subtle),

		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		PanelTitle: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			Padding(0, 1),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(t.Subtle),

		HelpSeparator: lipgloss.NewStyle().
			Foreground(t.Border),
	}
}

// PtoColor returns the accent color for a PTO type
func (t Theme) PtoColor(kind model.PtoType) lipgloss.Color {
	switch kind {
	case model.PtoVacation:
		return t.PtoVacation
	case model.PtoSick:
		return t.PtoSick
	case model.PtoPersonal:
		return t.PtoPersonal
	default:
		return t.Foreground
	}
}

// Current holds the current active theme and styles
var Current = struct {
	Theme  Theme
	Styles Styles
}{
	Theme:  Snow,
	Styles: NewStyles(Snow),
}

// SetTheme changes the current theme
func SetTheme(t Theme) {
	Current.Theme = t
	Current.Styles = NewStyles(t)
}

// ForDarkMode returns the theme matching the persisted dark mode flag
func ForDarkMode(dark bool) Theme {
	if dark {
		return Nord
	}
	return Snow
}
