package model

import (
	"slices"
	"sort"
	"time"
)

// TimerState is the state of a per-entry timer
type TimerState string

const (
	TimerStopped TimerState = "stopped"
	TimerRunning TimerState = "running"
	TimerPaused  TimerState = "paused"
)

// SchemaVersion is the record version written by this build
const SchemaVersion = 2

// DateLayout is the calendar date format used for entries and PTO days
const DateLayout = "2006-01-02"

const (
	DefaultDescription   = "No description"
	StopwatchDescription = "Stopwatch Entry"
)

// TimePeriod is a start/end time-of-day pair
type TimePeriod struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Entry is a logged block of work for one date
type Entry struct {
	Schema      int          `json:"schema"`
	ID          string       `json:"id"`
	Date        string       `json:"date"`
	Day         string       `json:"day"`
	TimePeriods []TimePeriod `json:"timePeriods"`
	Duration    Duration     `json:"duration"`
	Description string       `json:"description"`
	Completed   bool         `json:"completed"`

	// Per-entry timer
	TimerState           TimerState `json:"timerState"`
	TimerElapsed         int64      `json:"timerElapsed"`         // Milliseconds not yet in a period
	TimerStartTime       *int64     `json:"timerStartTime"`       // Epoch ms of the running segment
	TimerActualStartTime *string    `json:"timerActualStartTime"` // HH:MM:SS of the unflushed segment
	TimerActualStartDate *string    `json:"timerActualStartDate,omitempty"`

	BaseDurationMinutes  int  `json:"baseDurationMinutes"`
	StopwatchPeriodIndex *int `json:"stopwatchPeriodIndex,omitempty"`
}

// RecomputeDuration refreshes the cached duration from the periods
func (e *Entry) RecomputeDuration() {
	e.Duration = CalculateDurationFromPeriods(e.TimePeriods)
}

// EarliestStart returns the smallest period start time, or "" without periods
func (e *Entry) EarliestStart() string {
	earliest := ""
	for _, p := range e.TimePeriods {
		if earliest == "" || p.StartTime < earliest {
			earliest = p.StartTime
		}
	}
	return earliest
}

// TimeRange returns the first start and the end of the latest-starting period
func (e *Entry) TimeRange() (start, end string) {
	if len(e.TimePeriods) == 0 {
		return "", ""
	}
	sorted := slices.Clone(e.TimePeriods)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime < sorted[j].StartTime
	})
	return sorted[0].StartTime, sorted[len(sorted)-1].EndTime
}

// IsTimerActive returns true if the per-entry timer is running or paused
func (e *Entry) IsTimerActive() bool {
	return e.TimerState == TimerRunning || e.TimerState == TimerPaused
}

// TimerDisplay returns the live timer value shown next to the entry
func (e *Entry) TimerDisplay(now time.Time) time.Duration {
	ms := e.TimerElapsed
	if e.TimerState == TimerRunning && e.TimerStartTime != nil {
		ms += now.UnixMilli() - *e.TimerStartTime
	}
	return time.Duration(ms) * time.Millisecond
}

// Clone returns a deep copy
func (e Entry) Clone() Entry {
	c := e
	c.TimePeriods = slices.Clone(e.TimePeriods)
	if e.TimerStartTime != nil {
		v := *e.TimerStartTime
		c.TimerStartTime = &v
	}
	if e.TimerActualStartTime != nil {
		v := *e.TimerActualStartTime
		c.TimerActualStartTime = &v
	}
	if e.TimerActualStartDate != nil {
		v := *e.TimerActualStartDate
		c.TimerActualStartDate = &v
	}
	if e.StopwatchPeriodIndex != nil {
		v := *e.StopwatchPeriodIndex
		c.StopwatchPeriodIndex = &v
	}
	return c
}

// ParseDate parses a YYYY-MM-DD date as a local calendar date
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// FormatDate formats t's local calendar date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekdayName returns the English weekday of a YYYY-MM-DD date, or "" if invalid
func WeekdayName(date string) string {
	d, err := ParseDate(date)
	if err != nil {
		return ""
	}
	return d.Weekday().String()
}
