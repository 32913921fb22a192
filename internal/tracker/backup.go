package tracker

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dori/timelog/internal/backup"
	"github.com/dori/timelog/internal/kv"
)

// Export snapshots every entry and the display preference
func (t *Tracker) Export() (backup.Document, error) {
	dark, err := t.DarkMode()
	if err != nil {
		return backup.Document{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return backup.Export(t.store.All(), dark, t.now()), nil
}

// Import appends the backup's new entries and adopts its display preference.
// Both are written in one step; on failure nothing changes.
func (t *Tracker) Import(in backup.Imported) (backup.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	add, res := backup.Merge(t.store.All(), in.Entries, t.newID)
	t.store.Append(add...)

	entries, err := t.store.Encoded()
	if err == nil {
		values := map[string]string{kv.KeyEntries: entries}
		if in.DarkMode != nil {
			values[kv.KeyDarkMode] = strconv.FormatBool(*in.DarkMode)
		}
		err = t.kv.SetMany(values)
	}
	if err != nil {
		for _, e := range add {
			t.store.Delete(e.ID)
		}
		return backup.Result{}, fmt.Errorf("failed to import: %w", err)
	}

	t.log.Info("imported backup",
		slog.Int("added", res.Added), slog.Int("skipped", res.Skipped), slog.Int("rejected", in.Rejected))
	return res, nil
}
