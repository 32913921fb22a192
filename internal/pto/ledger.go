// Package pto records paid-time-off days against yearly allowances
package pto

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dori/timelog/internal/kv"
	"github.com/dori/timelog/internal/model"
)

var (
	// ErrDateTaken is returned when another PTO day exists on the date and
	// replacing it was not requested
	ErrDateTaken = errors.New("a PTO day already exists on that date")
	// ErrNotFound is returned for an unknown PTO id
	ErrNotFound = errors.New("PTO day not found")
)

// ValidationError reports bad input; nothing is saved
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Input is the user-editable part of a PTO day
type Input struct {
	Date  string
	Type  model.PtoType
	Notes string
}

// Usage is the number of days of one type taken in a year
type Usage struct {
	Type  model.PtoType
	Used  int
	Limit int
}

// Ledger reads and writes the PTO document. Every call reads the document
// fresh, so several ledgers over the same store agree.
type Ledger struct {
	mu    sync.Mutex
	kv    kv.Store
	newID func() string
	now   func() time.Time
	log   *slog.Logger
}

// New creates a ledger
func New(s kv.Store, newID func() string, now func() time.Time, log *slog.Logger) *Ledger {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Ledger{kv: s, newID: newID, now: now, log: log}
}

type document struct {
	Entries []model.PtoEntry `json:"entries"`
}

type rawEntry struct {
	ID        json.RawMessage `json:"id"`
	Date      string          `json:"date"`
	Type      string          `json:"type"`
	Notes     string          `json:"notes"`
	CreatedAt string          `json:"createdAt"`
}

// load returns the stored days; an unreadable document counts as empty
func (l *Ledger) load() ([]model.PtoEntry, error) {
	raw, ok, err := l.kv.Get(kv.KeyPto)
	if err != nil {
		return nil, fmt.Errorf("failed to read PTO: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var doc struct {
		Entries []json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		l.log.Warn("PTO document unreadable, starting empty", slog.String("error", err.Error()))
		return nil, nil
	}

	entries := make([]model.PtoEntry, 0, len(doc.Entries))
	var rejected []json.RawMessage
	filled := false
	for _, data := range doc.Entries {
		var r rawEntry
		if err := json.Unmarshal(data, &r); err != nil || r.Date == "" {
			l.log.Warn("skipping unreadable PTO day", slog.String("value", string(data)))
			rejected = append(rejected, data)
			continue
		}
		p := model.PtoEntry{
			ID:    decodeID(r.ID),
			Date:  r.Date,
			Type:  model.PtoType(r.Type),
			Notes: r.Notes,
		}
		if p.ID == "" {
			p.ID = l.newID()
			filled = true
		}
		if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
			p.CreatedAt = t
		}
		entries = append(entries, p)
	}

	// Days that never had an id keep the one given here
	if filled {
		if len(rejected) > 0 {
			data, err := json.Marshal(rejected)
			if err != nil {
				return nil, err
			}
			if err := l.kv.Set(kv.KeyPto+kv.CorruptKeySuffix, string(data)); err != nil {
				return nil, fmt.Errorf("failed to keep unreadable PTO days: %w", err)
			}
		}
		l.log.Info("assigned ids to stored PTO days")
		if err := l.save(entries); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (l *Ledger) save(entries []model.PtoEntry) error {
	if entries == nil {
		entries = []model.PtoEntry{}
	}
	data, err := json.Marshal(document{Entries: entries})
	if err != nil {
		return fmt.Errorf("failed to encode PTO: %w", err)
	}
	if err := l.kv.Set(kv.KeyPto, string(data)); err != nil {
		return fmt.Errorf("failed to save PTO: %w", err)
	}
	return nil
}

// All returns every PTO day, newest first
func (l *Ledger) All() ([]model.PtoEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		return nil, err
	}
	sortDesc(entries)
	return entries, nil
}

// Get returns one PTO day
func (l *Ledger) Get(id string) (model.PtoEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		return model.PtoEntry{}, err
	}
	if i := indexByID(entries, id); i >= 0 {
		return entries[i], nil
	}
	return model.PtoEntry{}, ErrNotFound
}

// Save records a PTO day. If the date is already taken it fails with
// ErrDateTaken unless replace is set, in which case the existing day keeps its
// id and creation time.
func (l *Ledger) Save(in Input, replace bool) (model.PtoEntry, error) {
	in, err := validate(in)
	if err != nil {
		return model.PtoEntry{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		return model.PtoEntry{}, err
	}

	p := model.PtoEntry{Date: in.Date, Type: in.Type, Notes: in.Notes}
	if i := indexByDate(entries, in.Date); i >= 0 {
		if !replace {
			return model.PtoEntry{}, fmt.Errorf("%w: %s", ErrDateTaken, in.Date)
		}
		p.ID, p.CreatedAt = entries[i].ID, entries[i].CreatedAt
		entries[i] = p
	} else {
		p.ID, p.CreatedAt = l.newID(), l.now().UTC()
		entries = append(entries, p)
	}

	if err := l.save(entries); err != nil {
		return model.PtoEntry{}, err
	}
	l.log.Info("PTO saved", slog.String("date", p.Date), slog.String("type", string(p.Type)))
	return p, nil
}

// Update edits the PTO day with id. Moving it onto a date held by another day
// fails with ErrDateTaken unless replace is set, which removes the other day.
func (l *Ledger) Update(id string, in Input, replace bool) (model.PtoEntry, error) {
	in, err := validate(in)
	if err != nil {
		return model.PtoEntry{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		return model.PtoEntry{}, err
	}
	i := indexByID(entries, id)
	if i < 0 {
		return model.PtoEntry{}, ErrNotFound
	}

	if j := indexByDate(entries, in.Date); j >= 0 && j != i {
		if !replace {
			return model.PtoEntry{}, fmt.Errorf("%w: %s", ErrDateTaken, in.Date)
		}
		entries = append(entries[:j], entries[j+1:]...)
		i = indexByID(entries, id)
	}

	entries[i].Date, entries[i].Type, entries[i].Notes = in.Date, in.Type, in.Notes
	p := entries[i]
	if err := l.save(entries); err != nil {
		return model.PtoEntry{}, err
	}
	return p, nil
}

// Delete removes a PTO day
func (l *Ledger) Delete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		return err
	}
	i := indexByID(entries, id)
	if i < 0 {
		return ErrNotFound
	}
	return l.save(append(entries[:i], entries[i+1:]...))
}

// ForYear returns the days of one year, newest first
func (l *Ledger) ForYear(year string) ([]model.PtoEntry, error) {
	all, err := l.All()
	if err != nil {
		return nil, err
	}
	out := make([]model.PtoEntry, 0, len(all))
	for _, p := range all {
		if strings.HasPrefix(p.Date, year+"-") {
			out = append(out, p)
		}
	}
	return out, nil
}

// Years returns every year with PTO plus the current year, newest first
func (l *Ledger) Years() ([]string, error) {
	all, err := l.All()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{strconv.Itoa(l.now().Year()): true}
	for _, p := range all {
		if y := p.Year(); y != "" {
			seen[y] = true
		}
	}
	years := make([]string, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years, nil
}

// Summary counts the days of each type taken in year
func (l *Ledger) Summary(year string) ([]Usage, error) {
	days, err := l.ForYear(year)
	if err != nil {
		return nil, err
	}
	usage := make([]Usage, len(model.PtoTypes))
	for i, t := range model.PtoTypes {
		usage[i] = Usage{Type: t, Limit: t.AnnualLimit()}
		for _, p := range days {
			if p.Type == t {
				usage[i].Used++
			}
		}
	}
	return usage, nil
}

func validate(in Input) (Input, error) {
	in.Date = strings.TrimSpace(in.Date)
	in.Notes = strings.TrimSpace(in.Notes)
	if in.Date == "" {
		return in, &ValidationError{Field: "date", Message: "date is required"}
	}
	if _, err := model.ParseDate(in.Date); err != nil {
		return in, &ValidationError{Field: "date", Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", in.Date)}
	}
	if !in.Type.Valid() {
		return in, &ValidationError{Field: "type", Message: fmt.Sprintf("unknown type %q", in.Type)}
	}
	return in, nil
}

func indexByID(entries []model.PtoEntry, id string) int {
	for i, p := range entries {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func indexByDate(entries []model.PtoEntry, date string) int {
	for i, p := range entries {
		if p.Date == date {
			return i
		}
	}
	return -1
}

func sortDesc(entries []model.PtoEntry) {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date > entries[j].Date })
}

func decodeID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}
