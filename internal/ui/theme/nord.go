package theme

import "github.com/charmbracelet/lipgloss"

// Nord is the dark palette
// https://www.nordtheme.com/
var Nord = Theme{
	Name: "nord",
	Dark: true,

	// Polar Night
	Background: lipgloss.Color("#2E3440"),
	Foreground: lipgloss.Color("#ECEFF4"),
	Subtle:     lipgloss.Color("#4C566A"),
	Highlight:  lipgloss.Color("#3B4252"),
	Border:     lipgloss.Color("#4C566A"),

	// Frost
	Primary:   lipgloss.Color("#88C0D0"),
	Secondary: lipgloss.Color("#81A1C1"),
	Info:      lipgloss.Color("#5E81AC"),

	// Aurora
	Success: lipgloss.Color("#A3BE8C"),
	Warning: lipgloss.Color("#EBCB8B"),
	Error:   lipgloss.Color("#BF616A"),

	TimerRunning: lipgloss.Color("#A3BE8C"),
	TimerPaused:  lipgloss.Color("#EBCB8B"),

	PtoVacation: lipgloss.Color("#88C0D0"),
	PtoSick:     lipgloss.Color("#BF616A"),
	PtoPersonal: lipgloss.Color("#B48EAD"),
}

// Snow is the light palette built from Nord's Snow Storm and Frost colors
var Snow = Theme{
	Name: "snow",

	Background: lipgloss.Color("#ECEFF4"),
	Foreground: lipgloss.Color("#2E3440"),
	Subtle:     lipgloss.Color("#7B88A1"),
	Highlight:  lipgloss.Color("#D8DEE9"),
	Border:     lipgloss.Color("#D8DEE9"),

	Primary:   lipgloss.Color("#5E81AC"),
	Secondary: lipgloss.Color("#4C6A92"),
	Info:      lipgloss.Color("#81A1C1"),

	Success: lipgloss.Color("#6A8C52"),
	Warning: lipgloss.Color("#C5942E"),
	Error:   lipgloss.Color("#BF616A"),

	TimerRunning: lipgloss.Color("#6A8C52"),
	TimerPaused:  lipgloss.Color("#C5942E"),

	PtoVacation: lipgloss.Color("#5E81AC"),
	PtoSick:     lipgloss.Color("#BF616A"),
	PtoPersonal: lipgloss.Color("#9A6E94"),
}
