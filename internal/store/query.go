package store

import (
	"sort"

	"github.com/dori/timelog/internal/model"
)

// DateGroup is the entries of one date with their committed total
type DateGroup struct {
	Date         string
	Entries      []model.Entry
	TotalSeconds int
}

// ByDate returns the entries logged on date
func (s *Store) ByDate(date string) []model.Entry {
	return s.filter(func(e *model.Entry) bool { return e.Date == date })
}

// Today returns the entries logged on today
func (s *Store) Today(today string) []model.Entry {
	return s.ByDate(today)
}

// ByDateRange returns the entries with from <= date <= to
func (s *Store) ByDateRange(from, to string) []model.Entry {
	return s.filter(func(e *model.Entry) bool { return e.Date >= from && e.Date <= to })
}

// Previous returns every entry not logged on today
func (s *Store) Previous(today string) []model.Entry {
	return s.filter(func(e *model.Entry) bool { return e.Date != today })
}

// PastWeek returns the entries of the seven days before today, excluding today
func (s *Store) PastWeek(today string) []model.Entry {
	d, err := model.ParseDate(today)
	if err != nil {
		return nil
	}
	weekAgo := model.FormatDate(d.AddDate(0, 0, -7))
	return s.filter(func(e *model.Entry) bool { return e.Date != today && e.Date >= weekAgo })
}

// DaySummary returns the committed total and entry count for date
func (s *Store) DaySummary(date string) (totalSeconds, count int) {
	for _, e := range s.entries {
		if e.Date == date {
			totalSeconds += e.Duration.TotalSeconds
			count++
		}
	}
	return totalSeconds, count
}

// GroupByDate maps each date to its entries, latest-starting first
func GroupByDate(entries []model.Entry) map[string][]model.Entry {
	grouped := make(map[string][]model.Entry)
	for _, e := range entries {
		grouped[e.Date] = append(grouped[e.Date], e)
	}
	for date := range grouped {
		SortByStartDesc(grouped[date])
	}
	return grouped
}

// SortedGroups groups entries by date, newest date first, with daily totals
func SortedGroups(entries []model.Entry) []DateGroup {
	grouped := GroupByDate(entries)

	dates := make([]string, 0, len(grouped))
	for date := range grouped {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	groups := make([]DateGroup, 0, len(dates))
	for _, date := range dates {
		g := DateGroup{Date: date, Entries: grouped[date]}
		for _, e := range g.Entries {
			g.TotalSeconds += e.Duration.TotalSeconds
		}
		groups = append(groups, g)
	}
	return groups
}

// SortByStartDesc orders entries by earliest period start, latest first
func SortByStartDesc(entries []model.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].EarliestStart() > entries[j].EarliestStart()
	})
}
