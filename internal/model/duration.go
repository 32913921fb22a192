package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is the derived length of an entry's time periods
type Duration struct {
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	Seconds      int `json:"seconds"`
	TotalSeconds int `json:"totalSeconds"`
	TotalMinutes int `json:"totalMinutes"`
}

// NewDuration decomposes a second count. Negative totals are kept as-is.
func NewDuration(totalSeconds int) Duration {
	return Duration{
		Hours:        floorDiv(totalSeconds, 3600),
		Minutes:      floorDiv(floorMod(totalSeconds, 3600), 60),
		Seconds:      floorMod(totalSeconds, 60),
		TotalSeconds: totalSeconds,
		TotalMinutes: floorDiv(totalSeconds, 60),
	}
}

// String formats the duration as HH:MM:SS
func (d Duration) String() string {
	return FormatHMS(d.TotalSeconds)
}

// TimeToSeconds converts "HH:MM" or "HH:MM:SS" into seconds since midnight.
// Missing or unparseable components count as zero.
func TimeToSeconds(s string) int {
	parts := strings.Split(s, ":")
	component := func(i int) int {
		if i >= len(parts) {
			return 0
		}
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return 0
		}
		return v
	}
	return component(0)*3600 + component(1)*60 + component(2)
}

// CalculateDuration returns end minus start. End before start yields a
// negative duration; callers validate manual input before getting here.
func CalculateDuration(start, end string) Duration {
	return NewDuration(TimeToSeconds(end) - TimeToSeconds(start))
}

// CalculateDurationFromPeriods sums every period that has both ends set.
func CalculateDurationFromPeriods(periods []TimePeriod) Duration {
	total := 0
	for _, p := range periods {
		if p.StartTime == "" || p.EndTime == "" {
			continue
		}
		total += CalculateDuration(p.StartTime, p.EndTime).TotalSeconds
	}
	return NewDuration(total)
}

// ParseClock strictly parses "HH:MM" or "HH:MM:SS" and returns seconds since midnight
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM or HH:MM:SS", s)
	}

	limits := []int{23, 59, 59}
	total := 0
	for i, p := range parts {
		if len(p) != 2 {
			return 0, fmt.Errorf("invalid time %q: expected two digits per component", s)
		}
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > limits[i] {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		switch i {
		case 0:
			total += v * 3600
		case 1:
			total += v * 60
		default:
			total += v
		}
	}
	return total, nil
}

// FormatClock returns the wall-clock time of t as HH:MM:SS
func FormatClock(t time.Time) string {
	return t.Format("15:04:05")
}

// FormatHMS formats a second count as HH:MM:SS
func FormatHMS(totalSeconds int) string {
	sign := ""
	if totalSeconds < 0 {
		sign = "-"
		totalSeconds = -totalSeconds
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, totalSeconds/3600, (totalSeconds%3600)/60, totalSeconds%60)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
