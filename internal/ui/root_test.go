package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dori/timelog/internal/app"
	"github.com/dori/timelog/internal/config"
	"github.com/dori/timelog/internal/ui/theme"
)

func newTestApp(t *testing.T, now func() time.Time) *app.App {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.DBPath = filepath.Join(cfg.DataDir, "timelog.db")
	cfg.Notify = false
	a, err := app.New(cfg, app.WithClock(now))
	if err != nil {
		t.Fatalf("app.New failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func update(t *testing.T, m RootModel, msg tea.Msg) RootModel {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(RootModel)
	if cmd != nil {
		if out := cmd(); out != nil {
			next, _ = m.Update(out)
			m = next.(RootModel)
		}
	}
	return m
}

func TestDarkModeTogglePersists(t *testing.T) {
	defer theme.SetTheme(theme.Snow)
	a := newTestApp(t, time.Now)

	m := NewRootModel(a)
	if theme.Current.Theme.Dark {
		t.Fatal("light theme expected by default")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if !theme.Current.Theme.Dark {
		t.Fatal("dark theme should be active")
	}
	if dark, err := a.Tracker.DarkMode(); err != nil || !dark {
		t.Fatalf("dark mode not persisted: %v, %v", dark, err)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if theme.Current.Theme.Dark || m.darkMode {
		t.Fatal("dark mode should be off again")
	}
}

func TestViewSwitching(t *testing.T) {
	a := newTestApp(t, time.Now)
	m := NewRootModel(a)
	m = update(t, m, tea.WindowSizeMsg{Width: 200, Height: 40})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")})
	if m.currentView != ViewPto {
		t.Fatalf("expected PTO view, got %s", m.currentView)
	}
	if !strings.Contains(m.View(), "Paid time off") {
		t.Fatal("PTO view not rendered")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	if m.currentView != ViewHistory {
		t.Fatalf("expected history view, got %s", m.currentView)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	if !m.helpVisible || !strings.Contains(m.View(), "stopwatch start/pause") {
		t.Fatal("help overlay should list the key bindings")
	}
}

func TestStopwatchTickExtendsPeriod(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.Local)
	a := newTestApp(t, func() time.Time { return now })
	if _, err := a.Tracker.StartStopwatch(); err != nil {
		t.Fatalf("StartStopwatch failed: %v", err)
	}

	m := NewRootModel(a)
	now = now.Add(5 * time.Second)
	// the returned command only schedules the next tick
	next, _ := m.Update(stopwatchTickMsg{})
	m = next.(RootModel)

	entries := a.Tracker.TodayEntries()
	if len(entries) != 1 || entries[0].TimePeriods[0].EndTime != "09:00:05" {
		t.Fatalf("unexpected entries after tick %+v", entries)
	}
	if m.errorMsg != "" {
		t.Fatalf("unexpected error %q", m.errorMsg)
	}
}

func TestExportWritesBackupToDataDir(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.Local)
	a := newTestApp(t, func() time.Time { return now })
	m := NewRootModel(a)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	path := filepath.Join(a.DataDir, "time-tracker-backup-2024-01-10.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("backup not written: %v", err)
	}
	if !strings.Contains(m.statusMsg, path) {
		t.Fatalf("unexpected status %q", m.statusMsg)
	}
}
