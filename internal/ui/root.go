package ui

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/timelog/internal/app"
	"github.com/dori/timelog/internal/backup"
	"github.com/dori/timelog/internal/tracker"
	"github.com/dori/timelog/internal/ui/theme"
	"github.com/dori/timelog/internal/ui/views"
)

type stopwatchTickMsg struct{}

type refreshTickMsg struct{}

func stopwatchTick() tea.Cmd {
	return tea.Tick(tracker.StopwatchInterval, func(time.Time) tea.Msg {
		return stopwatchTickMsg{}
	})
}

func refreshTick() tea.Cmd {
	return tea.Tick(tracker.RefreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

// RootModel is the main application model that manages views
type RootModel struct {
	app    *app.App
	log    *slog.Logger
	keys   KeyMap
	help   help.Model
	width  int
	height int

	currentView View
	todayView   views.TodayView
	historyView views.HistoryView
	ptoView     views.PtoView
	helpVisible bool
	darkMode    bool

	// Status message
	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model and applies the persisted theme
func NewRootModel(application *app.App) RootModel {
	h := help.New()
	h.ShowAll = true

	dark, err := application.Tracker.DarkMode()
	if err != nil {
		application.Log.Warn("failed to read dark mode", slog.Any("err", err))
	}
	theme.SetTheme(theme.ForDarkMode(dark))

	return RootModel{
		app:         application,
		log:         application.Log,
		keys:        DefaultKeyMap(),
		help:        h,
		currentView: ViewToday,
		todayView:   views.NewTodayView(application.Tracker, application.Notifier),
		historyView: views.NewHistoryView(application.Tracker),
		ptoView:     views.NewPtoView(application.Pto),
		darkMode:    dark,
	}
}

// Init starts the tickers and loads the first view
func (m RootModel) Init() tea.Cmd {
	return tea.Batch(m.todayView.Init(), stopwatchTick(), refreshTick())
}

func (m RootModel) isInputMode() bool {
	switch m.currentView {
	case ViewToday:
		return m.todayView.IsInputMode()
	case ViewHistory:
		return m.historyView.IsInputMode()
	case ViewPto:
		return m.ptoView.IsInputMode()
	}
	return false
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Reserve space for header (1 line) and footer (3 lines)
		contentHeight := m.height - 4
		m.todayView = m.todayView.SetSize(m.width, contentHeight)
		m.historyView = m.historyView.SetSize(m.width, contentHeight)
		m.ptoView = m.ptoView.SetSize(m.width, contentHeight)
		return m, nil

	case stopwatchTickMsg:
		if err := m.app.Tracker.TickStopwatch(); err != nil {
			m.log.Error("stopwatch tick failed", slog.Any("err", err))
			m.errorMsg = fmt.Sprintf("Failed to save stopwatch: %v", err)
		}
		return m, stopwatchTick()

	case refreshTickMsg:
		// Only the visible view redraws live timers
		model, cmd := m.delegate(views.RefreshMsg{})
		return model, tea.Batch(cmd, refreshTick())

	case tea.KeyMsg:
		m.statusMsg = ""
		m.errorMsg = ""
		inputMode := m.isInputMode()

		switch {
		case key.Matches(msg, m.keys.Quit):
			// ctrl+c always quits, but 'q' only quits when not in input mode
			if msg.String() == "ctrl+c" || !inputMode {
				return m, tea.Quit
			}
		case key.Matches(msg, m.keys.DarkMode):
			return m, m.toggleDarkMode()
		}

		if inputMode {
			break
		}

		if m.helpVisible {
			if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
				m.helpVisible = false
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Help):
			m.helpVisible = true
			return m, nil
		case key.Matches(msg, m.keys.Export):
			return m, m.export()
		case key.Matches(msg, m.keys.TodayView):
			m.currentView = ViewToday
			return m, m.todayView.Init()
		case key.Matches(msg, m.keys.HistoryView):
			m.currentView = ViewHistory
			return m, m.historyView.Init()
		case key.Matches(msg, m.keys.PtoView):
			m.currentView = ViewPto
			return m, m.ptoView.Init()
		}

	case DarkModeChangedMsg:
		if msg.Err != nil {
			m.errorMsg = fmt.Sprintf("Failed to save dark mode: %v", msg.Err)
			return m, nil
		}
		m.darkMode = msg.Dark
		theme.SetTheme(theme.ForDarkMode(msg.Dark))
		if msg.Dark {
			m.statusMsg = "Dark mode on"
		} else {
			m.statusMsg = "Dark mode off"
		}
		return m, nil

	case ExportedMsg:
		if msg.Err != nil {
			m.errorMsg = fmt.Sprintf("Export failed: %v", msg.Err)
		} else {
			m.statusMsg = fmt.Sprintf("Exported to %s", msg.Path)
		}
		return m, nil

	}

	return m.delegate(msg)
}

// delegate passes msg to the current view
func (m RootModel) delegate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewToday:
		var next tea.Model
		next, cmd = m.todayView.Update(msg)
		m.todayView = next.(views.TodayView)
	case ViewHistory:
		var next tea.Model
		next, cmd = m.historyView.Update(msg)
		m.historyView = next.(views.HistoryView)
	case ViewPto:
		var next tea.Model
		next, cmd = m.ptoView.Update(msg)
		m.ptoView = next.(views.PtoView)
	}
	return m, cmd
}

func (m RootModel) toggleDarkMode() tea.Cmd {
	next := !m.darkMode
	t := m.app.Tracker
	return func() tea.Msg {
		return DarkModeChangedMsg{Dark: next, Err: t.SetDarkMode(next)}
	}
}

func (m RootModel) export() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		path := filepath.Join(a.DataDir, backup.FileName(a.Tracker.Now(), false))
		return ExportedMsg{Path: path, Err: a.ExportFile(path, false)}
	}
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	contentHeight := m.height - 4
	if m.errorMsg != "" || m.statusMsg != "" {
		contentHeight--
	}

	var content string
	if m.helpVisible {
		content = m.renderHelp()
	} else {
		switch m.currentView {
		case ViewToday:
			content = m.todayView.View()
		case ViewHistory:
			content = m.historyView.View()
		case ViewPto:
			content = m.ptoView.View()
		}
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}

	return strings.Join([]string{m.renderHeader(), content, m.renderFooter()}, "\n")
}

// renderHeader renders the header bar
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("timelog")

	viewStyle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)

	var tabs []string
	for _, v := range []View{ViewToday, ViewHistory, ViewPto} {
		label := fmt.Sprintf("%d %s", int(v)+1, v)
		if v == m.currentView {
			tabs = append(tabs, styles.HelpKey.Padding(0, 1).Render(label))
		} else {
			tabs = append(tabs, viewStyle.Render(label))
		}
	}

	mode := "light"
	if m.darkMode {
		mode = "dark"
	}
	rightSide := viewStyle.Render(mode)

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, append([]string{title}, tabs...)...)
	gap := max(0, m.width-lipgloss.Width(leftSide)-lipgloss.Width(rightSide))
	return leftSide + strings.Repeat(" ", gap) + rightSide
}

// renderFooter renders the footer/status bar
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	key := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var statusLine string
	if m.errorMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Error).Render(m.errorMsg)
	} else if m.statusMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Info).Render(m.statusMsg)
	}

	var line1, line2 string
	switch {
	case m.helpVisible:
		line1 = key("?/esc", "close help")
	case m.isInputMode():
		line1 = key("enter", "confirm") + sep + key("tab", "next field") + sep + key("esc", "cancel")
	case m.currentView == ViewToday:
		line1 = key("a", "add") + sep +
			key("enter", "edit") + sep +
			key("tab", "done") + sep +
			key("d", "del") + sep +
			key("t/p/T", "timer start/pause/stop")
		line2 = key("s", "stopwatch") + sep +
			key("S", "stop+save") + sep +
			key("r", "reset") + sep +
			key("1-3", "views") + sep +
			key("?", "help")
	case m.currentView == ViewHistory:
		line1 = key("enter", "edit") + sep +
			key("tab", "done") + sep +
			key("d", "del") + sep +
			key("w", "past week")
		line2 = key("1-3", "views") + sep +
			key("ctrl+t", "dark mode") + sep +
			key("ctrl+e", "export") + sep +
			key("?", "help")
	case m.currentView == ViewPto:
		line1 = key("a", "add") + sep +
			key("enter", "edit") + sep +
			key("d", "del") + sep +
			key("h/l", "year")
		line2 = key("1-3", "views") + sep +
			key("ctrl+t", "dark mode") + sep +
			key("?", "help")
	}

	var lines []string
	for _, l := range []string{statusLine, line1, line2} {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

// renderHelp renders the help overlay from the key map
func (m RootModel) renderHelp() string {
	styles := theme.Current.Styles
	var b strings.Builder
	b.WriteString(styles.Title.Render("timelog help"))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n\n")
	b.WriteString(styles.HelpDesc.Render(fmt.Sprintf("Data directory: %s", m.app.DataDir)))
	return b.String()
}
