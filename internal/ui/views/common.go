package views

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dori/timelog/internal/model"
	"github.com/dori/timelog/internal/tracker"
	"github.com/dori/timelog/internal/ui/theme"
)

// RefreshMsg asks the active view to re-read state so live timers redraw
type RefreshMsg struct{}

// entryActionMsg reports the outcome of a tracker mutation
type entryActionMsg struct {
	status string
	err    error
}

// describeError turns tracker errors into a short status line
func describeError(err error) string {
	var verr *tracker.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, tracker.ErrInvalidTransition):
		return "Timer cannot do that right now"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

// renderEntry renders one entry row. now drives the live timer display.
func renderEntry(e model.Entry, selected bool, now time.Time, width int) string {
	styles := theme.Current.Styles

	check := "[ ]"
	if e.Completed {
		check = "[x]"
	}

	start, end := e.TimeRange()
	span := styles.Period.Render(fmt.Sprintf("%s-%s", start, end))
	if len(e.TimePeriods) > 1 {
		span += styles.Period.Render(fmt.Sprintf(" (%d periods)", len(e.TimePeriods)))
	}

	line := fmt.Sprintf("%s %s  %s  %s", check, e.Description, styles.Duration.Render(e.Duration.String()), span)

	switch e.TimerState {
	case model.TimerRunning:
		line += "  " + styles.TimerRunning.Render("● "+formatElapsed(e.TimerDisplay(now)))
	case model.TimerPaused:
		line += "  " + styles.TimerPaused.Render("‖ "+formatElapsed(e.TimerDisplay(now)))
	}

	style := styles.EntryNormal
	switch {
	case selected:
		style = styles.EntrySelected
	case e.Completed:
		style = styles.EntryCompleted
	}
	if width > 0 {
		style = style.MaxWidth(width)
	}
	return style.Render(line)
}

func formatElapsed(d time.Duration) string {
	return model.FormatHMS(int(d / time.Second))
}

// renderStatus renders the view-local status line, or nothing
func renderStatus(msg string) string {
	if msg == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(theme.Current.Theme.Info).Render(msg)
}

// confirmPrompt renders a y/n question
func confirmPrompt(question string) string {
	t := theme.Current.Theme
	return lipgloss.NewStyle().Foreground(t.Warning).Bold(true).Render(question) +
		lipgloss.NewStyle().Foreground(t.Subtle).Render(" (y/n)")
}

// clampCursor keeps a cursor inside [0, n)
func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

func emptyState(text string) string {
	return lipgloss.NewStyle().
		Foreground(theme.Current.Theme.Subtle).
		Italic(true).
		Padding(1, 1).
		Render(strings.TrimSpace(text))
}
