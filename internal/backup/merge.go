package backup

import (
	"slices"

	"github.com/dori/timelog/internal/model"
)

// Result counts what an import did
type Result struct {
	Added   int
	Skipped int
}

// SameContent reports whether two entries record the same work: same date,
// description and ordered periods. Ids, timer state and completion are ignored.
func SameContent(a, b model.Entry) bool {
	return a.Date == b.Date &&
		a.Description == b.Description &&
		slices.Equal(a.TimePeriods, b.TimePeriods)
}

// Merge returns the imported entries that are not already present. It never
// touches existing entries. Imported ids that collide with an existing id, or
// are missing, are replaced with newID.
func Merge(existing, imported []model.Entry, newID func() string) ([]model.Entry, Result) {
	var res Result
	ids := make(map[string]bool, len(existing)+len(imported))
	for _, e := range existing {
		ids[e.ID] = true
	}

	seen := slices.Clone(existing)
	var add []model.Entry
	for _, in := range imported {
		if slices.ContainsFunc(seen, func(e model.Entry) bool { return SameContent(e, in) }) {
			res.Skipped++
			continue
		}
		e := in.Clone()
		if e.ID == "" || ids[e.ID] {
			e.ID = newID()
		}
		ids[e.ID] = true
		seen = append(seen, e)
		add = append(add, e)
		res.Added++
	}
	return add, res
}
