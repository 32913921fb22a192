package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/timelog/internal/ui/theme"
)

// formField describes one labelled input of a form
type formField struct {
	label       string
	placeholder string
	value       string
}

// form is a stack of text inputs navigated with tab/shift+tab
type form struct {
	title  string
	labels []string
	inputs []textinput.Model
	focus  int
}

func newForm(title string, fields ...formField) form {
	f := form{title: title}
	for i, field := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = field.placeholder
		ti.CharLimit = 256
		ti.SetValue(field.value)
		if i == 0 {
			ti.Focus()
		}
		f.labels = append(f.labels, field.label)
		f.inputs = append(f.inputs, ti)
	}
	return f
}

// Value returns the trimmed text of field i
func (f form) Value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f form) SetWidth(width int) form {
	for i := range f.inputs {
		f.inputs[i].Width = max(10, width-20)
	}
	return f
}

func (f form) Update(msg tea.Msg) (form, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "tab", "down":
			return f.move(1), nil
		case "shift+tab", "up":
			return f.move(-1), nil
		}
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f form) move(delta int) form {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
	return f
}

func (f form) View() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	labelStyle := lipgloss.NewStyle().Foreground(t.Subtle).Width(14)
	activeLabel := labelStyle.Foreground(t.Primary).Bold(true)

	var b strings.Builder
	b.WriteString(styles.PanelTitle.Render(f.title))
	b.WriteString("\n")
	for i, in := range f.inputs {
		ls := labelStyle
		if i == f.focus {
			ls = activeLabel
		}
		b.WriteString(ls.Render(f.labels[i]))
		b.WriteString(in.View())
		if i < len(f.inputs)-1 {
			b.WriteString("\n")
		}
	}
	return styles.InputFocused.Render(b.String())
}
