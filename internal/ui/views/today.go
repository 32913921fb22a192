package views

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/timelog/internal/model"
	"github.com/dori/timelog/internal/notify"
	"github.com/dori/timelog/internal/tracker"
	"github.com/dori/timelog/internal/ui/theme"
)

// TodayMode is the input state of the today view
type TodayMode int

const (
	TodayModeNormal TodayMode = iota
	TodayModeAdd
	TodayModeEdit
	TodayModeConfirmDelete
	TodayModeStopStopwatch
)

// TodayView lists today's entries and hosts the stopwatch
type TodayView struct {
	tracker  *tracker.Tracker
	notifier *notify.Notifier
	width    int
	height   int

	entries      []model.Entry
	stopwatch    tracker.Stopwatch
	totalSeconds int
	now          time.Time
	cursor       int

	mode      TodayMode
	form      form
	editingID string
	deleteID  string
	statusMsg string
}

type todayLoadedMsg struct {
	entries      []model.Entry
	stopwatch    tracker.Stopwatch
	totalSeconds int
	now          time.Time
}

// NewTodayView creates the today view
func NewTodayView(t *tracker.Tracker, notifier *notify.Notifier) TodayView {
	return TodayView{tracker: t, notifier: notifier}
}

// Init loads today's entries
func (v TodayView) Init() tea.Cmd {
	return v.load
}

// IsInputMode returns true while a form or prompt owns the keyboard
func (v TodayView) IsInputMode() bool {
	return v.mode != TodayModeNormal
}

// SetSize updates the view dimensions
func (v TodayView) SetSize(width, height int) TodayView {
	v.width = width
	v.height = height
	v.form = v.form.SetWidth(width)
	return v
}

// Entries returns the rows currently shown
func (v TodayView) Entries() []model.Entry {
	return v.entries
}

// StopwatchRunning reports whether the last load saw a running stopwatch
func (v TodayView) StopwatchRunning() bool {
	return v.stopwatch.Running
}

func (v TodayView) load() tea.Msg {
	today := v.tracker.Today()
	total, _ := v.tracker.DaySummary(today)
	return todayLoadedMsg{
		entries:      v.tracker.TodayEntries(),
		stopwatch:    v.tracker.Stopwatch(),
		totalSeconds: total,
		now:          v.tracker.Now(),
	}
}

// Update handles messages for the today view
func (v TodayView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case todayLoadedMsg:
		v.entries = msg.entries
		v.stopwatch = msg.stopwatch
		v.totalSeconds = msg.totalSeconds
		v.now = msg.now
		v.cursor = clampCursor(v.cursor, len(v.entries))
		return v, nil

	case RefreshMsg:
		return v, v.load

	case entryActionMsg:
		if msg.err != nil {
			v.statusMsg = describeError(msg.err)
		} else {
			v.statusMsg = msg.status
		}
		return v, v.load

	case tea.KeyMsg:
		switch v.mode {
		case TodayModeAdd, TodayModeEdit, TodayModeStopStopwatch:
			return v.handleFormMode(msg)
		case TodayModeConfirmDelete:
			return v.handleDeleteConfirm(msg)
		default:
			return v.handleNormalMode(msg)
		}
	}

	if v.mode == TodayModeAdd || v.mode == TodayModeEdit || v.mode == TodayModeStopStopwatch {
		var cmd tea.Cmd
		v.form, cmd = v.form.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v TodayView) selected() (model.Entry, bool) {
	if v.cursor < 0 || v.cursor >= len(v.entries) {
		return model.Entry{}, false
	}
	return v.entries[v.cursor], true
}

// handleNormalMode handles keypresses in normal mode
func (v TodayView) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.statusMsg = ""

	switch msg.String() {
	case "j", "down":
		if v.cursor < len(v.entries)-1 {
			v.cursor++
		}
	case "k", "up":
		if v.cursor > 0 {
			v.cursor--
		}
	case "g":
		v.cursor = 0
	case "G":
		v.cursor = max(0, len(v.entries)-1)

	case "a":
		v.mode = TodayModeAdd
		v.form = newForm("New entry",
			formField{label: "Date", value: v.tracker.Today()},
			formField{label: "Description", placeholder: model.DefaultDescription},
			formField{label: "Periods", placeholder: "09:00-12:00, 13:00-17:30"},
		).SetWidth(v.width)
		v.form = v.form.move(1)
		return v, nil

	case "enter", "e":
		e, ok := v.selected()
		if !ok {
			return v, nil
		}
		v.mode = TodayModeEdit
		v.editingID = e.ID
		v.form = newForm("Edit entry",
			formField{label: "Date", value: e.Date},
			formField{label: "Description", value: e.Description},
			formField{label: "Periods", value: model.FormatPeriods(e.TimePeriods)},
		).SetWidth(v.width)
		return v, nil

	case "d":
		if e, ok := v.selected(); ok {
			v.mode = TodayModeConfirmDelete
			v.deleteID = e.ID
		}
		return v, nil

	case "tab", "x":
		if e, ok := v.selected(); ok {
			return v, v.run(func() (string, error) {
				return "", v.tracker.ToggleCompleted(e.ID)
			})
		}

	case "t":
		if e, ok := v.selected(); ok {
			return v, v.startOrResume(e)
		}
	case "p":
		if e, ok := v.selected(); ok {
			return v, v.run(func() (string, error) {
				return "Timer paused", v.tracker.PauseTimer(e.ID)
			})
		}
	case "T":
		if e, ok := v.selected(); ok {
			return v, v.stopTimer(e)
		}

	case "s", " ":
		return v, v.toggleStopwatch()
	case "S":
		if !v.stopwatch.Active {
			return v, nil
		}
		v.mode = TodayModeStopStopwatch
		v.form = newForm("Stop stopwatch",
			formField{label: "Description", value: v.stopwatch.Description},
		).SetWidth(v.width)
		return v, nil
	case "r":
		return v, v.run(func() (string, error) {
			return "Stopwatch reset", v.tracker.ResetStopwatch()
		})
	}
	return v, nil
}

func (v TodayView) handleFormMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.mode = TodayModeNormal
		v.editingID = ""
		return v, nil
	case "enter":
		return v.submit()
	}
	var cmd tea.Cmd
	v.form, cmd = v.form.Update(msg)
	return v, cmd
}

func (v TodayView) submit() (tea.Model, tea.Cmd) {
	mode := v.mode
	id := v.editingID

	if mode == TodayModeStopStopwatch {
		desc := v.form.Value(0)
		v.mode = TodayModeNormal
		return v, v.stopStopwatch(desc)
	}

	date, desc := v.form.Value(0), v.form.Value(1)
	periods, err := model.ParsePeriods(v.form.Value(2))
	if err != nil {
		// keep the form open so the input can be fixed
		v.statusMsg = err.Error()
		return v, nil
	}

	if mode == TodayModeAdd {
		if _, err := v.tracker.CreateEntry(date, desc, periods); err != nil {
			v.statusMsg = describeError(err)
			return v, nil
		}
		v.statusMsg = "Entry added"
	} else {
		if err := v.tracker.EditEntry(id, date, desc, periods); err != nil {
			v.statusMsg = describeError(err)
			return v, nil
		}
		v.statusMsg = "Entry updated"
	}
	v.mode = TodayModeNormal
	v.editingID = ""
	return v, v.load
}

func (v TodayView) handleDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := v.deleteID
	v.mode = TodayModeNormal
	v.deleteID = ""
	switch msg.String() {
	case "y", "Y":
		return v, v.run(func() (string, error) {
			return "Entry deleted", v.tracker.DeleteEntry(id)
		})
	}
	return v, nil
}

// run executes a tracker mutation and reports the result
func (v TodayView) run(fn func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		status, err := fn()
		return entryActionMsg{status: status, err: err}
	}
}

func (v TodayView) startOrResume(e model.Entry) tea.Cmd {
	t := v.tracker
	if e.TimerState == model.TimerPaused {
		return v.run(func() (string, error) {
			return "Timer resumed", t.ResumeTimer(e.ID)
		})
	}
	return v.run(func() (string, error) {
		return "Timer started", t.StartTimer(e.ID)
	})
}

func (v TodayView) stopTimer(e model.Entry) tea.Cmd {
	t, n := v.tracker, v.notifier
	return v.run(func() (string, error) {
		if err := t.StopTimer(e.ID); err != nil {
			return "", err
		}
		after, ok := t.Entry(e.ID)
		if !ok {
			return "Timer stopped", nil
		}
		total := time.Duration(after.Duration.TotalSeconds) * time.Second
		if n != nil {
			n.SendTimerStopped(after.Description, total)
		}
		return fmt.Sprintf("Timer stopped, %s logged", after.Duration), nil
	})
}

func (v TodayView) toggleStopwatch() tea.Cmd {
	t := v.tracker
	if v.stopwatch.Running {
		return v.run(func() (string, error) {
			return "Stopwatch paused", t.PauseStopwatch()
		})
	}
	return v.run(func() (string, error) {
		_, err := t.StartStopwatch()
		return "Stopwatch running", err
	})
}

func (v TodayView) stopStopwatch(desc string) tea.Cmd {
	t, n := v.tracker, v.notifier
	return v.run(func() (string, error) {
		e, ok, err := t.StopStopwatch(desc)
		if err != nil || !ok {
			return "", err
		}
		if n != nil {
			n.SendStopwatchStopped(e.Description, time.Duration(e.Duration.TotalSeconds)*time.Second)
		}
		return fmt.Sprintf("Saved %q (%s)", e.Description, e.Duration), nil
	})
}

// View renders the today view
func (v TodayView) View() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	var b strings.Builder

	title := fmt.Sprintf("%s  %s", model.WeekdayName(v.tracker.Today()), v.tracker.Today())
	summary := styles.Label.Render(fmt.Sprintf("%d entries, total ", len(v.entries))) +
		styles.Duration.Render(model.FormatHMS(v.totalSeconds))
	b.WriteString(styles.PanelTitle.Render(title) + "  " + summary)
	b.WriteString("\n")

	b.WriteString(v.renderStopwatch())
	b.WriteString("\n")

	switch v.mode {
	case TodayModeAdd, TodayModeEdit, TodayModeStopStopwatch:
		b.WriteString(v.form.View())
		b.WriteString("\n")
	case TodayModeConfirmDelete:
		b.WriteString(confirmPrompt("Delete this entry?"))
		b.WriteString("\n")
	}

	if len(v.entries) == 0 {
		b.WriteString(emptyState("No entries today. Press a to add one or s to start the stopwatch."))
	} else {
		for i, e := range v.entries {
			b.WriteString(renderEntry(e, i == v.cursor, v.now, v.width))
			b.WriteString("\n")
		}
	}

	if v.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(renderStatus(v.statusMsg))
	}

	return lipgloss.NewStyle().Foreground(t.Foreground).Render(b.String())
}

func (v TodayView) renderStopwatch() string {
	styles := theme.Current.Styles
	sw := v.stopwatch

	if !sw.Active {
		return styles.Panel.Render(styles.Label.Render("Stopwatch  ") + formatElapsed(0))
	}
	state := styles.TimerRunning.Render("● running")
	if !sw.Running {
		state = styles.TimerPaused.Render("‖ paused")
	}
	body := fmt.Sprintf("%s  %s  %s", styles.Label.Render("Stopwatch"), styles.Duration.Render(formatElapsed(sw.Elapsed)), state)
	if sw.Description != "" {
		body += "  " + styles.Subtitle.Render(sw.Description)
	}
	return styles.Stopwatch.Render(body)
}
