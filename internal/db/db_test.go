package db

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, dbPath
}

func TestDocumentsRoundTrip(t *testing.T) {
	db, _ := openTestDB(t)

	if _, ok, err := db.Get("missing"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := db.Set("timeTrackerEntries", `[]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := db.Set("timeTrackerEntries", `[{"id":"1"}]`); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}

	v, ok, err := db.Get("timeTrackerEntries")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if v != `[{"id":"1"}]` {
		t.Fatalf("unexpected value %q", v)
	}

	if err := db.Delete("timeTrackerEntries"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := db.Get("timeTrackerEntries"); ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestSetManyWritesAllKeys(t *testing.T) {
	db, _ := openTestDB(t)

	err := db.SetMany(map[string]string{
		"timeTrackerEntries": `[]`,
		"darkMode":           "true",
	})
	if err != nil {
		t.Fatalf("SetMany failed: %v", err)
	}

	for key, want := range map[string]string{"timeTrackerEntries": `[]`, "darkMode": "true"} {
		got, ok, err := db.Get(key)
		if err != nil || !ok || got != want {
			t.Fatalf("key %s: got %q ok=%v err=%v", key, got, ok, err)
		}
	}
}

func TestHistoryKeepsReplacedValues(t *testing.T) {
	db, _ := openTestDB(t)

	for i := 0; i < historyDepth+5; i++ {
		if err := db.Set("k", string(rune('a'+i))); err != nil {
			t.Fatalf("Set %d failed: %v", i, err)
		}
	}
	// Writing the same value again is not a replacement
	if err := db.Set("k", string(rune('a'+historyDepth+4))); err != nil {
		t.Fatalf("Set same failed: %v", err)
	}

	history, err := db.History("k")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != historyDepth {
		t.Fatalf("expected %d history rows, got %d", historyDepth, len(history))
	}
	if history[0].Value != string(rune('a'+historyDepth+3)) {
		t.Fatalf("expected newest replaced value first, got %q", history[0].Value)
	}
	if history[0].ReplacedAt.IsZero() {
		t.Fatal("expected replacement time")
	}
}

func TestTransientWritesSkipHistory(t *testing.T) {
	db, _ := openTestDB(t)

	if err := db.Set("k", "before"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	for _, v := range []string{"tick-1", "tick-2", "tick-3"} {
		if err := db.SetManyTransient(map[string]string{"k": v}); err != nil {
			t.Fatalf("SetManyTransient failed: %v", err)
		}
	}
	if history, _ := db.History("k"); len(history) != 0 {
		t.Fatalf("expected no history from transient writes, got %d rows", len(history))
	}
	if v, _, _ := db.Get("k"); v != "tick-3" {
		t.Fatalf("expected latest transient value, got %q", v)
	}

	if err := db.Set("k", "after"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	history, _ := db.History("k")
	if len(history) != 1 || history[0].Value != "tick-3" {
		t.Fatalf("expected the last transient value kept on the next write, got %+v", history)
	}
}

// TestReopenRunsMigrationsOnce verifies that reopening an existing database keeps
// its documents and does not fail on already-applied migrations.
func TestReopenRunsMigrationsOnce(t *testing.T) {
	db, dbPath := openTestDB(t)
	if err := db.Set("darkMode", "true"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	db.Close()

	done := make(chan error, 1)
	var logs bytes.Buffer
	go func() {
		reopened, err := Open(dbPath, slog.New(slog.NewTextHandler(&logs, nil)))
		if err != nil {
			done <- err
			return
		}
		defer reopened.Close()
		if reopened.Schema() != 2 {
			t.Errorf("expected schema 2 after reopen, got %d", reopened.Schema())
		}
		v, ok, err := reopened.Get("darkMode")
		if err == nil && (!ok || v != "true") {
			t.Errorf("expected darkMode=true after reopen, got %q ok=%v", v, ok)
		}
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("reopen failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Test timed out - possible lock on reopen")
	}
	if strings.Contains(logs.String(), "applied migration") {
		t.Fatalf("expected no migrations on reopen, got logs:\n%s", logs.String())
	}
}

func TestOpenLogsAppliedMigrations(t *testing.T) {
	var logs bytes.Buffer
	db, err := Open(filepath.Join(t.TempDir(), "nested", "fresh.db"), slog.New(slog.NewTextHandler(&logs, nil)))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if db.Schema() != 2 {
		t.Fatalf("expected schema 2, got %d", db.Schema())
	}
	if got := strings.Count(logs.String(), "applied migration"); got != 2 {
		t.Fatalf("expected 2 applied migrations logged, got %d:\n%s", got, logs.String())
	}
}
