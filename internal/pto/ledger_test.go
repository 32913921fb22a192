package pto

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dori/timelog/internal/kv"
	"github.com/dori/timelog/internal/model"
)

func newTestLedger(t *testing.T) (*Ledger, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	n := 0
	newID := func() string {
		n++
		return fmt.Sprintf("pto-%d", n)
	}
	now := func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return New(mem, newID, now, nil), mem
}

func TestSaveAndReplace(t *testing.T) {
	l, _ := newTestLedger(t)

	first, err := l.Save(Input{Date: "2024-03-01", Type: model.PtoVacation, Notes: " trip "}, false)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if first.ID != "pto-1" || first.Notes != "trip" {
		t.Fatalf("unexpected saved day %+v", first)
	}

	if _, err := l.Save(Input{Date: "2024-03-01", Type: model.PtoSick}, false); !errors.Is(err, ErrDateTaken) {
		t.Fatalf("expected ErrDateTaken, got %v", err)
	}

	replaced, err := l.Save(Input{Date: "2024-03-01", Type: model.PtoSick}, true)
	if err != nil {
		t.Fatalf("Save with replace failed: %v", err)
	}
	if replaced.ID != first.ID || !replaced.CreatedAt.Equal(first.CreatedAt) || replaced.Type != model.PtoSick {
		t.Fatalf("expected replace to keep id and createdAt, got %+v", replaced)
	}

	all, _ := l.All()
	if len(all) != 1 {
		t.Fatalf("expected one day per date, got %d", len(all))
	}
}

func TestSaveValidation(t *testing.T) {
	l, _ := newTestLedger(t)
	cases := []Input{
		{Date: "", Type: model.PtoVacation},
		{Date: "2024-02-30", Type: model.PtoVacation},
		{Date: "2024-02-01", Type: "holiday"},
	}
	for _, in := range cases {
		var verr *ValidationError
		if _, err := l.Save(in, false); !errors.As(err, &verr) {
			t.Errorf("expected ValidationError for %+v, got %v", in, err)
		}
	}
}

func TestUpdate(t *testing.T) {
	l, _ := newTestLedger(t)
	a, _ := l.Save(Input{Date: "2024-03-01", Type: model.PtoVacation}, false)
	b, _ := l.Save(Input{Date: "2024-03-02", Type: model.PtoPersonal}, false)

	if _, err := l.Update(a.ID, Input{Date: "2024-03-02", Type: model.PtoVacation}, false); !errors.Is(err, ErrDateTaken) {
		t.Fatalf("expected ErrDateTaken, got %v", err)
	}

	moved, err := l.Update(a.ID, Input{Date: "2024-03-02", Type: model.PtoSick, Notes: "flu"}, true)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if moved.ID != a.ID || moved.Date != "2024-03-02" || moved.Type != model.PtoSick {
		t.Fatalf("unexpected updated day %+v", moved)
	}
	if _, err := l.Get(b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected replaced day removed, got %v", err)
	}

	same, err := l.Update(a.ID, Input{Date: "2024-03-02", Type: model.PtoSick, Notes: "still flu"}, false)
	if err != nil || same.Notes != "still flu" {
		t.Fatalf("expected editing in place to succeed, got %+v (%v)", same, err)
	}

	if _, err := l.Update("missing", Input{Date: "2024-03-05", Type: model.PtoSick}, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	l, _ := newTestLedger(t)
	a, _ := l.Save(Input{Date: "2024-03-01", Type: model.PtoVacation}, false)

	if err := l.Delete(a.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := l.Delete(a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestYearsAndSummary(t *testing.T) {
	l, _ := newTestLedger(t)
	l.Save(Input{Date: "2023-12-29", Type: model.PtoVacation}, false)
	l.Save(Input{Date: "2024-01-02", Type: model.PtoVacation}, false)
	l.Save(Input{Date: "2024-02-02", Type: model.PtoVacation}, false)
	l.Save(Input{Date: "2024-02-05", Type: model.PtoSick}, false)

	years, err := l.Years()
	if err != nil {
		t.Fatalf("Years failed: %v", err)
	}
	if strings.Join(years, ",") != "2024,2023" {
		t.Fatalf("unexpected years %v", years)
	}

	days, _ := l.ForYear("2024")
	if len(days) != 3 || days[0].Date != "2024-02-05" {
		t.Fatalf("expected 2024 days newest first, got %+v", days)
	}

	usage, err := l.Summary("2024")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	want := []Usage{
		{Type: model.PtoVacation, Used: 2, Limit: 15},
		{Type: model.PtoSick, Used: 1, Limit: 5},
		{Type: model.PtoPersonal, Used: 0, Limit: 5},
	}
	for i := range want {
		if usage[i] != want[i] {
			t.Fatalf("usage[%d] = %+v, want %+v", i, usage[i], want[i])
		}
	}
}

func TestLoadLegacyAndCorruptDocuments(t *testing.T) {
	l, mem := newTestLedger(t)

	mem.Set(kv.KeyPto, `{"entries": [{"id": 1700000000000, "date": "2023-11-14", "type": "vacation", "notes": "", "createdAt": "2023-11-14T09:00:00.000Z"}]}`)
	all, err := l.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 1 || all[0].ID != "1700000000000" || all[0].CreatedAt.Year() != 2023 {
		t.Fatalf("unexpected legacy day %+v", all)
	}

	for _, doc := range []string{"not json", `{"entries": 5}`, `[]`} {
		mem.Set(kv.KeyPto, doc)
		all, err := l.All()
		if err != nil || len(all) != 0 {
			t.Fatalf("expected %q to load as empty, got %+v (%v)", doc, all, err)
		}
	}
}

func TestDaysWithoutIDKeepTheirAssignedID(t *testing.T) {
	l, mem := newTestLedger(t)
	mem.Set(kv.KeyPto, `{"entries": [
		{"date": "2024-03-01", "type": "vacation", "notes": ""},
		{"date": 42},
		{"id": 7, "date": "2024-03-04", "type": "sick", "notes": ""}
	]}`)

	all, err := l.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	var assigned string
	for _, d := range all {
		if d.Date == "2024-03-01" {
			assigned = d.ID
		}
	}
	if assigned != "pto-1" {
		t.Fatalf("expected an assigned id, got %+v", all)
	}

	if _, err := l.Update(assigned, Input{Date: "2024-03-01", Type: model.PtoPersonal}, false); err != nil {
		t.Fatalf("expected the listed id to be usable, got %v", err)
	}
	if err := l.Delete(assigned); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if v, _, _ := mem.Get(kv.KeyPto + kv.CorruptKeySuffix); !strings.Contains(v, `"date": 42`) && !strings.Contains(v, `"date":42`) {
		t.Fatalf("expected unreadable day kept aside, got %q", v)
	}
	if all, _ := l.All(); len(all) != 1 || all[0].ID != "7" {
		t.Fatalf("expected only the numbered day left, got %+v", all)
	}
}
