package views

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/timelog/internal/model"
	"github.com/dori/timelog/internal/pto"
	"github.com/dori/timelog/internal/ui/theme"
)

// PtoMode is the input state of the PTO view
type PtoMode int

const (
	PtoModeNormal PtoMode = iota
	PtoModeForm
	PtoModeConfirmReplace
	PtoModeConfirmDelete
)

// PtoView lists PTO days for one year with the quota summary
type PtoView struct {
	ledger *pto.Ledger
	width  int
	height int

	years   []string
	year    string
	days    []model.PtoEntry
	summary []pto.Usage
	cursor  int

	mode      PtoMode
	form      form
	editingID string
	pending   pto.Input
	targetID  string
	statusMsg string
}

type ptoLoadedMsg struct {
	years   []string
	year    string
	days    []model.PtoEntry
	summary []pto.Usage
	err     error
}

type ptoActionMsg struct {
	status string
	err    error
}

// NewPtoView creates the PTO view
func NewPtoView(ledger *pto.Ledger) PtoView {
	return PtoView{ledger: ledger}
}

// Init loads the selected year
func (v PtoView) Init() tea.Cmd {
	return v.load
}

// IsInputMode returns true while a form or prompt owns the keyboard
func (v PtoView) IsInputMode() bool {
	return v.mode != PtoModeNormal
}

// SetSize updates the view dimensions
func (v PtoView) SetSize(width, height int) PtoView {
	v.width = width
	v.height = height
	v.form = v.form.SetWidth(width)
	return v
}

func (v PtoView) load() tea.Msg {
	years, err := v.ledger.Years()
	if err != nil {
		return ptoLoadedMsg{err: err}
	}
	year := v.year
	if year == "" || !slices.Contains(years, year) {
		year = years[0]
	}
	days, err := v.ledger.ForYear(year)
	if err != nil {
		return ptoLoadedMsg{err: err}
	}
	summary, err := v.ledger.Summary(year)
	if err != nil {
		return ptoLoadedMsg{err: err}
	}
	return ptoLoadedMsg{years: years, year: year, days: days, summary: summary}
}

// Update handles messages for the PTO view
func (v PtoView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ptoLoadedMsg:
		if msg.err != nil {
			v.statusMsg = fmt.Sprintf("Error loading PTO: %v", msg.err)
			return v, nil
		}
		v.years, v.year, v.days, v.summary = msg.years, msg.year, msg.days, msg.summary
		v.cursor = clampCursor(v.cursor, len(v.days))
		return v, nil

	case ptoActionMsg:
		if msg.err != nil {
			v.statusMsg = describePtoError(msg.err)
		} else {
			v.statusMsg = msg.status
		}
		return v, v.load

	case tea.KeyMsg:
		switch v.mode {
		case PtoModeForm:
			return v.handleFormMode(msg)
		case PtoModeConfirmReplace:
			return v.handleReplaceConfirm(msg)
		case PtoModeConfirmDelete:
			return v.handleDeleteConfirm(msg)
		default:
			return v.handleNormalMode(msg)
		}
	}

	if v.mode == PtoModeForm {
		var cmd tea.Cmd
		v.form, cmd = v.form.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v PtoView) selected() (model.PtoEntry, bool) {
	if v.cursor < 0 || v.cursor >= len(v.days) {
		return model.PtoEntry{}, false
	}
	return v.days[v.cursor], true
}

func (v PtoView) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.statusMsg = ""

	switch msg.String() {
	case "j", "down":
		if v.cursor < len(v.days)-1 {
			v.cursor++
		}
	case "k", "up":
		if v.cursor > 0 {
			v.cursor--
		}

	// years are sorted newest first
	case "h", "left":
		v.year = v.stepYear(1)
		v.cursor = 0
		return v, v.load
	case "l", "right":
		v.year = v.stepYear(-1)
		v.cursor = 0
		return v, v.load

	case "a":
		v.mode = PtoModeForm
		v.editingID = ""
		v.form = newForm("Add PTO day",
			formField{label: "Date", placeholder: model.DateLayout},
			formField{label: "Type", value: string(model.PtoVacation), placeholder: ptoTypeChoices()},
			formField{label: "Notes"},
		).SetWidth(v.width)
		return v, nil

	case "enter", "e":
		p, ok := v.selected()
		if !ok {
			return v, nil
		}
		v.mode = PtoModeForm
		v.editingID = p.ID
		v.form = newForm("Edit PTO day",
			formField{label: "Date", value: p.Date},
			formField{label: "Type", value: string(p.Type), placeholder: ptoTypeChoices()},
			formField{label: "Notes", value: p.Notes},
		).SetWidth(v.width)
		return v, nil

	case "d":
		if p, ok := v.selected(); ok {
			v.mode = PtoModeConfirmDelete
			v.targetID = p.ID
		}
	}
	return v, nil
}

func (v PtoView) stepYear(delta int) string {
	for i, y := range v.years {
		if y == v.year {
			j := i + delta
			if j >= 0 && j < len(v.years) {
				return v.years[j]
			}
			return y
		}
	}
	return v.year
}

func (v PtoView) handleFormMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.mode = PtoModeNormal
		return v, nil
	case "enter":
		in := pto.Input{
			Date:  v.form.Value(0),
			Type:  model.PtoType(strings.ToLower(v.form.Value(1))),
			Notes: v.form.Value(2),
		}
		err := v.save(in, false)
		if errors.Is(err, pto.ErrDateTaken) {
			v.mode = PtoModeConfirmReplace
			v.pending = in
			return v, nil
		}
		if err != nil {
			v.statusMsg = describePtoError(err)
			return v, nil
		}
		v.mode = PtoModeNormal
		v.year = in.Date[:4]
		v.statusMsg = "PTO saved"
		return v, v.load
	}
	var cmd tea.Cmd
	v.form, cmd = v.form.Update(msg)
	return v, cmd
}

func (v PtoView) save(in pto.Input, replace bool) error {
	var err error
	if v.editingID == "" {
		_, err = v.ledger.Save(in, replace)
	} else {
		_, err = v.ledger.Update(v.editingID, in, replace)
	}
	return err
}

func (v PtoView) handleReplaceConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		in := v.pending
		v.mode = PtoModeNormal
		v.year = in.Date[:4]
		err := v.save(in, true)
		return v, func() tea.Msg {
			return ptoActionMsg{status: "PTO day replaced", err: err}
		}
	case "n", "N", "esc":
		// back to the form with the input intact
		v.mode = PtoModeForm
	}
	return v, nil
}

func (v PtoView) handleDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.mode = PtoModeNormal
	id, ledger := v.targetID, v.ledger
	if s := msg.String(); s == "y" || s == "Y" {
		return v, func() tea.Msg {
			return ptoActionMsg{status: "PTO day deleted", err: ledger.Delete(id)}
		}
	}
	return v, nil
}

// View renders the PTO view
func (v PtoView) View() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	var b strings.Builder

	b.WriteString(styles.PanelTitle.Render("Paid time off"))
	b.WriteString("  ")
	b.WriteString(v.renderYears())
	b.WriteString("\n")
	b.WriteString(v.renderSummary())
	b.WriteString("\n")

	switch v.mode {
	case PtoModeForm:
		b.WriteString(v.form.View())
		b.WriteString("\n")
	case PtoModeConfirmReplace:
		b.WriteString(confirmPrompt(fmt.Sprintf("%s already has a PTO day. Replace it?", v.pending.Date)))
		b.WriteString("\n")
	case PtoModeConfirmDelete:
		b.WriteString(confirmPrompt("Delete this PTO day?"))
		b.WriteString("\n")
	}

	if len(v.days) == 0 {
		b.WriteString(emptyState(fmt.Sprintf("No PTO in %s.", v.year)))
	}
	for i, p := range v.days {
		kind := lipgloss.NewStyle().Foreground(t.PtoColor(p.Type)).Bold(true).Width(10).Render(p.Type.Label())
		line := fmt.Sprintf("%s  %-9s  %s", p.Date, model.WeekdayName(p.Date), kind)
		if p.Notes != "" {
			line += "  " + styles.Subtitle.Render(p.Notes)
		}
		style := styles.EntryNormal
		if i == v.cursor {
			style = styles.EntrySelected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if v.statusMsg != "" {
		b.WriteString(renderStatus(v.statusMsg))
	}
	return b.String()
}

func (v PtoView) renderYears() string {
	styles := theme.Current.Styles
	parts := make([]string, 0, len(v.years))
	// oldest on the left
	for i := len(v.years) - 1; i >= 0; i-- {
		y := v.years[i]
		if y == v.year {
			parts = append(parts, styles.HelpKey.Render("["+y+"]"))
		} else {
			parts = append(parts, styles.Label.Render(y))
		}
	}
	return strings.Join(parts, " ")
}

func (v PtoView) renderSummary() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme
	var parts []string
	for _, u := range v.summary {
		color := t.PtoColor(u.Type)
		if u.Used > u.Limit {
			color = t.Error
		}
		used := lipgloss.NewStyle().Foreground(color).Bold(true).Render(fmt.Sprintf("%d/%d", u.Used, u.Limit))
		parts = append(parts, styles.Label.Render(u.Type.Label()+" ")+used)
	}
	return styles.Panel.Render(strings.Join(parts, "   "))
}

func describePtoError(err error) string {
	var verr *pto.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, pto.ErrNotFound):
		return "PTO day no longer exists"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

func ptoTypeChoices() string {
	names := make([]string, len(model.PtoTypes))
	for i, t := range model.PtoTypes {
		names[i] = string(t)
	}
	return strings.Join(names, " | ")
}
