package tracker

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dori/timelog/internal/kv"
	"github.com/dori/timelog/internal/model"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func at(hh, mm, ss int) time.Time {
	return time.Date(2024, 1, 10, hh, mm, ss, 0, time.Local)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestTracker(t *testing.T, start time.Time) (*Tracker, *fakeClock, *kv.Memory) {
	t.Helper()
	clock := &fakeClock{t: start}
	mem := kv.NewMemory()
	tr := New(mem, WithClock(clock.now), WithIDGenerator(sequentialIDs()))
	if err := tr.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return tr, clock, mem
}

func periods(pairs ...string) []model.TimePeriod {
	var out []model.TimePeriod
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, model.TimePeriod{StartTime: pairs[i], EndTime: pairs[i+1]})
	}
	return out
}

func mustEntry(t *testing.T, tr *Tracker, id string) model.Entry {
	t.Helper()
	e, ok := tr.Entry(id)
	if !ok {
		t.Fatalf("entry %s not found", id)
	}
	return e
}

func assertDurationMatchesPeriods(t *testing.T, e model.Entry) {
	t.Helper()
	if want := model.CalculateDurationFromPeriods(e.TimePeriods); e.Duration != want {
		t.Fatalf("duration %+v does not match periods %+v", e.Duration, e.TimePeriods)
	}
}

func TestCreateEntry(t *testing.T) {
	tr, _, _ := newTestTracker(t, at(18, 0, 0))

	e, err := tr.CreateEntry("2024-01-10", "  ", periods("09:00", "12:00"))
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	if e.Duration.TotalSeconds != 10800 {
		t.Fatalf("expected 10800 seconds, got %d", e.Duration.TotalSeconds)
	}
	if e.Description != model.DefaultDescription {
		t.Fatalf("expected default description, got %q", e.Description)
	}
	if e.Day != "Wednesday" || e.TimerState != model.TimerStopped || e.Completed {
		t.Fatalf("unexpected new entry %+v", e)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	tr, _, _ := newTestTracker(t, at(18, 0, 0))

	cases := []struct {
		date    string
		periods []model.TimePeriod
		field   string
	}{
		{"", periods("09:00", "10:00"), "date"},
		{"2024-13-01", periods("09:00", "10:00"), "date"},
		{"2024-01-10", nil, "timePeriods"},
		{"2024-01-10", periods("10:00", "10:00"), "timePeriods"},
		{"2024-01-10", periods("23:00", "01:00"), "timePeriods"},
		{"2024-01-10", periods("09:00", ""), "timePeriods"},
		{"2024-01-10", periods("9am", "10:00"), "timePeriods"},
	}
	for _, tc := range cases {
		_, err := tr.CreateEntry(tc.date, "x", tc.periods)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError for %+v, got %v", tc, err)
		}
		if verr.Field != tc.field {
			t.Fatalf("expected field %s, got %s", tc.field, verr.Field)
		}
	}
	if n := len(tr.Entries()); n != 0 {
		t.Fatalf("expected nothing stored, got %d entries", n)
	}
}

func TestEntriesPersistAcrossTrackers(t *testing.T) {
	tr, clock, mem := newTestTracker(t, at(18, 0, 0))
	if _, err := tr.CreateEntry("2024-01-10", "design", periods("09:00", "12:00")); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	again := New(mem, WithClock(clock.now))
	if err := again.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := again.TodayEntries(); len(got) != 1 || got[0].Description != "design" {
		t.Fatalf("expected persisted entry, got %+v", got)
	}
}

func TestEditEntryKeepsCompletionAndTimer(t *testing.T) {
	tr, _, _ := newTestTracker(t, at(18, 0, 0))
	e, _ := tr.CreateEntry("2024-01-10", "design", periods("09:00", "12:00"))
	if err := tr.ToggleCompleted(e.ID); err != nil {
		t.Fatalf("ToggleCompleted failed: %v", err)
	}

	if err := tr.EditEntry(e.ID, "2024-01-09", "redesign", periods("08:00", "08:30", "13:00", "14:00")); err != nil {
		t.Fatalf("EditEntry failed: %v", err)
	}
	got := mustEntry(t, tr, e.ID)
	if !got.Completed || got.Date != "2024-01-09" || got.Day != "Tuesday" || got.Description != "redesign" {
		t.Fatalf("unexpected edited entry %+v", got)
	}
	if got.Duration.TotalSeconds != 5400 {
		t.Fatalf("expected 5400 seconds, got %d", got.Duration.TotalSeconds)
	}

	var verr *ValidationError
	if err := tr.EditEntry(e.ID, "2024-01-09", "x", nil); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestUnknownIDsAreIgnored(t *testing.T) {
	tr, _, _ := newTestTracker(t, at(18, 0, 0))

	ops := map[string]func() error{
		"start":  func() error { return tr.StartTimer("missing") },
		"pause":  func() error { return tr.PauseTimer("missing") },
		"resume": func() error { return tr.ResumeTimer("missing") },
		"stop":   func() error { return tr.StopTimer("missing") },
		"toggle": func() error { return tr.ToggleCompleted("missing") },
		"delete": func() error { return tr.DeleteEntry("missing") },
		"edit":   func() error { return tr.EditEntry("missing", "2024-01-10", "x", periods("09:00", "10:00")) },
	}
	for name, op := range ops {
		if err := op(); err != nil {
			t.Errorf("%s on unknown id returned %v", name, err)
		}
	}
}

func TestDeleteEntryStopsTimer(t *testing.T) {
	tr, clock, _ := newTestTracker(t, at(10, 0, 0))
	e, _ := tr.CreateEntry("2024-01-10", "design", periods("09:00", "09:30"))
	if err := tr.StartTimer(e.ID); err != nil {
		t.Fatalf("StartTimer failed: %v", err)
	}
	clock.advance(time.Minute)

	if err := tr.DeleteEntry(e.ID); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}
	if _, ok := tr.Entry(e.ID); ok {
		t.Fatal("expected entry to be deleted")
	}
}

func TestQueriesUseClockDate(t *testing.T) {
	tr, _, _ := newTestTracker(t, at(18, 0, 0))
	tr.CreateEntry("2024-01-10", "today", periods("09:00", "10:00"))
	tr.CreateEntry("2024-01-09", "yesterday", periods("09:00", "11:00"))
	tr.CreateEntry("2024-01-01", "old", periods("09:00", "10:00"))

	if got := tr.TodayEntries(); len(got) != 1 || got[0].Description != "today" {
		t.Fatalf("unexpected today entries %+v", got)
	}
	if got := tr.PreviousGroups(); len(got) != 2 {
		t.Fatalf("expected 2 previous dates, got %d", len(got))
	}
	week := tr.PastWeekGroups()
	if len(week) != 1 || week[0].Date != "2024-01-09" || week[0].TotalSeconds != 7200 {
		t.Fatalf("unexpected past week %+v", week)
	}
	if total, count := tr.DaySummary("2024-01-10"); total != 3600 || count != 1 {
		t.Fatalf("unexpected summary %d/%d", total, count)
	}
}

func TestDarkMode(t *testing.T) {
	tr, _, mem := newTestTracker(t, at(18, 0, 0))
	if on, _ := tr.DarkMode(); on {
		t.Fatal("expected dark mode off by default")
	}
	if err := tr.SetDarkMode(true); err != nil {
		t.Fatalf("SetDarkMode failed: %v", err)
	}
	if v, _, _ := mem.Get(kv.KeyDarkMode); v != "true" {
		t.Fatalf("expected stored flag true, got %q", v)
	}
}

func TestRestoreEntries(t *testing.T) {
	tr, _, mem := newTestTracker(t, at(10, 0, 0))
	kept, _ := tr.CreateEntry("2024-01-10", "kept", periods("08:00", "09:00"))
	doc, _, _ := mem.Get(kv.KeyEntries)

	tr.CreateEntry("2024-01-10", "later", periods("09:00", "09:30"))
	tr.StartStopwatch()

	if _, err := tr.RestoreEntries("not json"); err == nil {
		t.Fatal("expected unreadable revision to be rejected")
	}
	if n := len(tr.Entries()); n != 3 {
		t.Fatalf("expected entries untouched after a failed restore, got %d", n)
	}

	count, err := tr.RestoreEntries(doc)
	if err != nil {
		t.Fatalf("RestoreEntries failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 restored entry, got %d", count)
	}
	if _, ok := tr.Entry(kept.ID); !ok || len(tr.Entries()) != 1 {
		t.Fatalf("expected only the kept entry, got %+v", tr.Entries())
	}
	if tr.Stopwatch().Active {
		t.Fatal("expected stopwatch released when its entry is not restored")
	}
	if v, _, _ := mem.Get(kv.KeyStopwatch); v != "null" {
		t.Fatalf("expected released binding persisted, got %q", v)
	}
}
