package backup

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dori/timelog/internal/model"
)

func entry(id, date, desc string, periods ...string) model.Entry {
	e := model.Entry{
		Schema:      model.SchemaVersion,
		ID:          id,
		Date:        date,
		Day:         model.WeekdayName(date),
		Description: desc,
		TimerState:  model.TimerStopped,
		TimePeriods: []model.TimePeriod{},
	}
	for i := 0; i+1 < len(periods); i += 2 {
		e.TimePeriods = append(e.TimePeriods, model.TimePeriod{StartTime: periods[i], EndTime: periods[i+1]})
	}
	e.RecomputeDuration()
	return e
}

func counter() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		entries := []model.Entry{
			entry("a", "2024-01-01", "design", "09:00", "12:00"),
			entry("b", "2024-01-02", "review", "13:00", "14:00", "15:00", "15:30"),
		}
		doc := Export(entries, true, time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC))
		if doc.Version != "1.0" || doc.ExportDate != "2024-01-03T10:00:00Z" {
			t.Fatalf("unexpected document header: %+v", doc)
		}

		var buf bytes.Buffer
		if err := Encode(&buf, doc, Options{Compress: compress}); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if compress == bytes.HasPrefix(buf.Bytes(), []byte("{")) {
			t.Fatalf("compress=%v produced unexpected prefix %q", compress, buf.Bytes()[:1])
		}

		got, err := Decode(&buf)
		if err != nil {
			t.Fatalf("Decode failed (compress=%v): %v", compress, err)
		}
		if got.DarkMode == nil || !*got.DarkMode {
			t.Fatal("expected dark mode flag to survive")
		}
		if len(got.Entries) != 2 || got.Entries[1].Duration.TotalSeconds != 5400 {
			t.Fatalf("unexpected entries: %+v", got.Entries)
		}
	}
}

func TestDecodeRejectsBadShapes(t *testing.T) {
	cases := []string{
		`not json`,
		`{"darkMode": true}`,
		`{"entries": {"a": 1}}`,
		`{"entries": null}`,
		`[1, 2]`,
		`{"entries": [{"schema": 3, "id": "x"}]}`,
	}
	for _, in := range cases {
		_, err := Decode(strings.NewReader(in))
		var formatErr *ImportFormatError
		if !errors.As(err, &formatErr) {
			t.Errorf("Decode(%s) expected ImportFormatError, got %v", in, err)
		}
	}
}

func TestDecodeLegacyBackup(t *testing.T) {
	in := `{"entries": [{"id": 1700000000000, "date": "2024-01-01", "startTime": "09:00", "endTime": "09:30", "description": "old"}], "exportDate": "2023-11-14T00:00:00.000Z", "version": "1.0"}`
	got, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.DarkMode != nil {
		t.Fatal("expected missing dark mode flag to stay nil")
	}
	if len(got.Entries) != 1 || got.Entries[0].Duration.TotalSeconds != 1800 {
		t.Fatalf("expected legacy entry upgraded, got %+v", got.Entries)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	existing := []model.Entry{entry("a", "2024-01-01", "design", "09:00", "12:00")}
	imported := []model.Entry{
		entry("x", "2024-01-01", "design", "09:00", "12:00"),
		entry("y", "2024-01-02", "review", "13:00", "14:00"),
		entry("z", "2024-01-02", "review", "13:00", "14:00"),
		entry("w", "2024-01-03", "planning", "10:00", "11:00"),
	}

	add, res := Merge(existing, imported, counter())
	if res.Added != 2 || res.Skipped != 2 || len(add) != 2 {
		t.Fatalf("expected 2 added 2 skipped, got %+v", res)
	}

	merged := append(existing, add...)
	again, res := Merge(merged, imported, counter())
	if res.Added != 0 || res.Skipped != len(imported) || len(again) != 0 {
		t.Fatalf("expected second merge to add nothing, got %+v", res)
	}
}

func TestMergeReplacesCollidingIDs(t *testing.T) {
	existing := []model.Entry{entry("a", "2024-01-01", "design", "09:00", "12:00")}
	imported := []model.Entry{
		entry("a", "2024-01-05", "other work", "09:00", "10:00"),
		entry("", "2024-01-06", "no id", "09:00", "10:00"),
	}

	add, _ := Merge(existing, imported, counter())
	if len(add) != 2 || add[0].ID != "new-1" || add[1].ID != "new-2" {
		t.Fatalf("expected fresh ids, got %+v", add)
	}
}

func TestSameContentIsOrderSensitive(t *testing.T) {
	a := entry("a", "2024-01-01", "x", "09:00", "10:00", "11:00", "12:00")
	b := entry("b", "2024-01-01", "x", "11:00", "12:00", "09:00", "10:00")
	if SameContent(a, b) {
		t.Fatal("expected reordered periods to differ")
	}
	b = entry("b", "2024-01-01", "x", "09:00", "10:00", "11:00", "12:00")
	b.Completed = true
	b.TimerState = model.TimerPaused
	if !SameContent(a, b) {
		t.Fatal("expected ids and timer fields to be ignored")
	}
}

func TestWriteTimesheet(t *testing.T) {
	entries := []model.Entry{
		entry("a", "2024-01-02", "design", "09:00", "12:00"),
		entry("b", "2024-01-02", "review", "13:00", "13:30"),
		entry("c", "2024-01-01", "planning", "10:00", "11:00"),
	}
	pto := []model.PtoEntry{{ID: "p", Date: "2024-01-05", Type: model.PtoVacation, Notes: "trip"}}

	var buf bytes.Buffer
	if err := WriteTimesheet(&buf, entries, pto); err != nil {
		t.Fatalf("WriteTimesheet failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if strings.Join(sheets, ",") != "Entries,Daily Totals,PTO" {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	rows, err := f.GetRows(SheetEntries)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 4 || rows[1][2] != "design" {
		t.Fatalf("unexpected entry rows %v", rows)
	}

	daily, err := f.GetRows(SheetDaily)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(daily) != 3 || daily[1][0] != "2024-01-02" || daily[1][4] != "03:30:00" {
		t.Fatalf("unexpected daily rows %v", daily)
	}

	ptoRows, err := f.GetRows(SheetPto)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(ptoRows) != 2 || ptoRows[1][1] != "Vacation" {
		t.Fatalf("unexpected pto rows %v", ptoRows)
	}
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 3, 9, 23, 30, 0, 0, time.Local)
	if got := FileName(now, false); got != "time-tracker-backup-2024-03-09.json" {
		t.Fatalf("FileName = %q", got)
	}
	if got := FileName(now, true); got != "time-tracker-backup-2024-03-09.json.xz" {
		t.Fatalf("FileName compressed = %q", got)
	}
}
