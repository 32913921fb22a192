package model

import (
	"testing"
	"time"
)

func TestTimeToSeconds(t *testing.T) {
	cases := map[string]int{
		"09:00":    9 * 3600,
		"09:30:15": 9*3600 + 30*60 + 15,
		"00:00":    0,
		"23:59:59": 86399,
		"7":        7 * 3600,
		"":         0,
		"xx:10":    600,
	}
	for in, want := range cases {
		if got := TimeToSeconds(in); got != want {
			t.Errorf("TimeToSeconds(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestCalculateDuration(t *testing.T) {
	d := CalculateDuration("09:00", "12:00")
	if d.TotalSeconds != 10800 || d.Hours != 3 || d.Minutes != 0 || d.TotalMinutes != 180 {
		t.Fatalf("unexpected duration: %+v", d)
	}

	d = CalculateDuration("10:00:00", "10:01:45")
	if d.TotalSeconds != 105 || d.Minutes != 1 || d.Seconds != 45 || d.TotalMinutes != 1 {
		t.Fatalf("unexpected duration: %+v", d)
	}
}

func TestCalculateDurationNegativeIsNotClamped(t *testing.T) {
	d := CalculateDuration("23:00", "01:00")
	if d.TotalSeconds != -22*3600 {
		t.Fatalf("expected -79200 seconds, got %d", d.TotalSeconds)
	}
	if d.TotalMinutes != -1320 {
		t.Fatalf("expected -1320 minutes, got %d", d.TotalMinutes)
	}
}

func TestCalculateDurationFromPeriodsSumsPeriods(t *testing.T) {
	periods := []TimePeriod{
		{StartTime: "09:00", EndTime: "12:00"},
		{StartTime: "13:00:30", EndTime: "13:45:00"},
		{StartTime: "14:00", EndTime: ""},
		{StartTime: "16:59", EndTime: "17:00:05"},
	}

	sum := 0
	for _, p := range periods {
		if p.StartTime != "" && p.EndTime != "" {
			sum += CalculateDuration(p.StartTime, p.EndTime).TotalSeconds
		}
	}

	got := CalculateDurationFromPeriods(periods)
	if got.TotalSeconds != sum {
		t.Fatalf("expected total %d, got %d", sum, got.TotalSeconds)
	}
	if got != NewDuration(sum) {
		t.Fatalf("expected decomposition %+v, got %+v", NewDuration(sum), got)
	}
}

func TestCalculateDurationFromPeriodsEmpty(t *testing.T) {
	if got := CalculateDurationFromPeriods(nil); got != (Duration{}) {
		t.Fatalf("expected zero duration, got %+v", got)
	}
}

func TestParseClock(t *testing.T) {
	valid := map[string]int{
		"09:00":    32400,
		"23:59:59": 86399,
		"00:00:01": 1,
	}
	for in, want := range valid {
		got, err := ParseClock(in)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseClock(%q) = %d, want %d", in, got, want)
		}
	}

	for _, in := range []string{"", "9:00", "24:00", "12:60", "12", "12:00:00:00", "ab:cd"} {
		if _, err := ParseClock(in); err == nil {
			t.Errorf("ParseClock(%q) expected error", in)
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := FormatHMS(3725); got != "01:02:05" {
		t.Fatalf("FormatHMS = %q", got)
	}
	if got := FormatHMS(-30); got != "-00:00:30" {
		t.Fatalf("FormatHMS negative = %q", got)
	}
	ts := time.Date(2024, 1, 1, 7, 5, 9, 0, time.Local)
	if got := FormatClock(ts); got != "07:05:09" {
		t.Fatalf("FormatClock = %q", got)
	}
	if got := WeekdayName("2024-01-01"); got != "Monday" {
		t.Fatalf("WeekdayName = %q", got)
	}
	if got := WeekdayName("not-a-date"); got != "" {
		t.Fatalf("WeekdayName invalid = %q", got)
	}
}

func TestEntryTimeRangeAndEarliestStart(t *testing.T) {
	e := Entry{TimePeriods: []TimePeriod{
		{StartTime: "13:00", EndTime: "14:00"},
		{StartTime: "08:30", EndTime: "09:00"},
	}}
	if got := e.EarliestStart(); got != "08:30" {
		t.Fatalf("EarliestStart = %q", got)
	}
	start, end := e.TimeRange()
	if start != "08:30" || end != "14:00" {
		t.Fatalf("TimeRange = %q-%q", start, end)
	}
}

func TestEntryTimerDisplay(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 30, 0, time.Local)
	started := now.Add(-10 * time.Second).UnixMilli()
	e := Entry{TimerState: TimerRunning, TimerElapsed: 5000, TimerStartTime: &started}
	if got := e.TimerDisplay(now); got != 15*time.Second {
		t.Fatalf("running display = %v", got)
	}
	e.TimerState = TimerPaused
	if got := e.TimerDisplay(now); got != 5*time.Second {
		t.Fatalf("paused display = %v", got)
	}
}
