package views

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dori/timelog/internal/model"
	"github.com/dori/timelog/internal/store"
	"github.com/dori/timelog/internal/tracker"
	"github.com/dori/timelog/internal/ui/theme"
)

// HistoryView shows entries from days before today, grouped by date
type HistoryView struct {
	tracker *tracker.Tracker
	width   int
	height  int

	groups   []store.DateGroup
	rows     []model.Entry // groups flattened in display order
	now      time.Time
	cursor   int
	pastWeek bool

	editing   bool
	confirm   bool
	form      form
	targetID  string
	statusMsg string
}

type historyLoadedMsg struct {
	groups []store.DateGroup
	now    time.Time
}

// NewHistoryView creates the history view
func NewHistoryView(t *tracker.Tracker) HistoryView {
	return HistoryView{tracker: t}
}

// Init loads previous entries
func (v HistoryView) Init() tea.Cmd {
	return v.load
}

// IsInputMode returns true while a form or prompt owns the keyboard
func (v HistoryView) IsInputMode() bool {
	return v.editing || v.confirm
}

// PastWeek reports whether only the last seven days are shown
func (v HistoryView) PastWeek() bool {
	return v.pastWeek
}

// SetSize updates the view dimensions
func (v HistoryView) SetSize(width, height int) HistoryView {
	v.width = width
	v.height = height
	v.form = v.form.SetWidth(width)
	return v
}

func (v HistoryView) load() tea.Msg {
	groups := v.tracker.PreviousGroups()
	if v.pastWeek {
		groups = v.tracker.PastWeekGroups()
	}
	return historyLoadedMsg{groups: groups, now: v.tracker.Now()}
}

// Update handles messages for the history view
func (v HistoryView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		v.groups = msg.groups
		v.now = msg.now
		v.rows = nil
		for _, g := range v.groups {
			v.rows = append(v.rows, g.Entries...)
		}
		v.cursor = clampCursor(v.cursor, len(v.rows))
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
		switch {
		case v.editing:
			return v.handleEditMode(msg)
		case v.confirm:
			return v.handleDeleteConfirm(msg)
		default:
			return v.handleNormalMode(msg)
		}
	}

	if v.editing {
		var cmd tea.Cmd
		v.form, cmd = v.form.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v HistoryView) selected() (model.Entry, bool) {
	if v.cursor < 0 || v.cursor >= len(v.rows) {
		return model.Entry{}, false
	}
	return v.rows[v.cursor], true
}

func (v HistoryView) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.statusMsg = ""
	t := v.tracker

	switch msg.String() {
	case "j", "down":
		if v.cursor < len(v.rows)-1 {
			v.cursor++
		}
	case "k", "up":
		if v.cursor > 0 {
			v.cursor--
		}
	case "g":
		v.cursor = 0
	case "G":
		v.cursor = max(0, len(v.rows)-1)

	case "w":
		v.pastWeek = !v.pastWeek
		v.cursor = 0
		if v.pastWeek {
			v.statusMsg = "Showing the past week"
		} else {
			v.statusMsg = "Showing all previous entries"
		}
		return v, v.load

	case "enter", "e":
		e, ok := v.selected()
		if !ok {
			return v, nil
		}
		v.editing = true
		v.targetID = e.ID
		v.form = newForm("Edit entry",
			formField{label: "Date", value: e.Date},
			formField{label: "Description", value: e.Description},
			formField{label: "Periods", value: model.FormatPeriods(e.TimePeriods)},
		).SetWidth(v.width)
		return v, nil

	case "d":
		if e, ok := v.selected(); ok {
			v.confirm = true
			v.targetID = e.ID
		}

	case "tab", "x":
		if e, ok := v.selected(); ok {
			return v, func() tea.Msg {
				return entryActionMsg{err: t.ToggleCompleted(e.ID)}
			}
		}
	}
	return v, nil
}

func (v HistoryView) handleEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.editing = false
		return v, nil
	case "enter":
		periods, err := model.ParsePeriods(v.form.Value(2))
		if err != nil {
			v.statusMsg = err.Error()
			return v, nil
		}
		if err := v.tracker.EditEntry(v.targetID, v.form.Value(0), v.form.Value(1), periods); err != nil {
			v.statusMsg = describeError(err)
			return v, nil
		}
		v.editing = false
		v.statusMsg = "Entry updated"
		return v, v.load
	}
	var cmd tea.Cmd
	v.form, cmd = v.form.Update(msg)
	return v, cmd
}

func (v HistoryView) handleDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.confirm = false
	id, t := v.targetID, v.tracker
	if s := msg.String(); s == "y" || s == "Y" {
		return v, func() tea.Msg {
			return entryActionMsg{status: "Entry deleted", err: t.DeleteEntry(id)}
		}
	}
	return v, nil
}

// View renders the history view
func (v HistoryView) View() string {
	styles := theme.Current.Styles

	var b strings.Builder

	title := "Previous entries"
	if v.pastWeek {
		title = "Past week"
	}
	b.WriteString(styles.PanelTitle.Render(title))
	b.WriteString("\n")

	if v.editing {
		b.WriteString(v.form.View())
		b.WriteString("\n")
	} else if v.confirm {
		b.WriteString(confirmPrompt("Delete this entry?"))
		b.WriteString("\n")
	}

	if len(v.rows) == 0 {
		b.WriteString(emptyState("No previous entries."))
	}

	lines := v.renderLines()
	visible := max(1, v.height-6)
	start := v.scrollStart(lines, visible)
	end := min(len(lines), start+visible)
	for _, l := range lines[start:end] {
		b.WriteString(l.text)
		b.WriteString("\n")
	}

	if v.statusMsg != "" {
		b.WriteString(renderStatus(v.statusMsg))
	}
	return b.String()
}

type historyLine struct {
	text string
	row  int // index into rows, -1 for date headers
}

func (v HistoryView) renderLines() []historyLine {
	styles := theme.Current.Styles
	var lines []historyLine
	row := 0
	for _, g := range v.groups {
		header := fmt.Sprintf("%s %s", model.WeekdayName(g.Date), g.Date)
		total := styles.Duration.Render(model.FormatHMS(g.TotalSeconds))
		lines = append(lines, historyLine{
			text: styles.DateHeader.Render(header) + "  " + styles.Label.Render("total ") + total,
			row:  -1,
		})
		for _, e := range g.Entries {
			lines = append(lines, historyLine{text: renderEntry(e, row == v.cursor, v.now, v.width), row: row})
			row++
		}
	}
	return lines
}

// scrollStart keeps the cursor row inside the visible window
func (v HistoryView) scrollStart(lines []historyLine, visible int) int {
	total := len(lines)
	cursorLine := 0
	for i, l := range lines {
		if l.row == v.cursor {
			cursorLine = i
			break
		}
	}
	start := 0
	if cursorLine >= visible {
		start = cursorLine - visible + 1
	}
	if start > total-visible {
		start = max(0, total-visible)
	}
	return start
}
