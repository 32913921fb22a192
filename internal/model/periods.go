package model

import (
	"fmt"
	"strings"
)

// ParsePeriods reads a list like "09:00-12:00, 13:00-17:30". Only the shape is
// checked here; clock values are validated when the entry is saved.
func ParsePeriods(s string) ([]TimePeriod, error) {
	var periods []TimePeriod
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		start, end, ok := strings.Cut(part, "-")
		if !ok {
			return nil, fmt.Errorf("invalid period %q: expected START-END", part)
		}
		periods = append(periods, TimePeriod{
			StartTime: strings.TrimSpace(start),
			EndTime:   strings.TrimSpace(end),
		})
	}
	return periods, nil
}

// FormatPeriods is the inverse of ParsePeriods
func FormatPeriods(periods []TimePeriod) string {
	parts := make([]string, 0, len(periods))
	for _, p := range periods {
		parts = append(parts, p.StartTime+"-"+p.EndTime)
	}
	return strings.Join(parts, ", ")
}
