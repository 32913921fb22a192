// Package tracker owns the application state: the entry store, the stopwatch
// binding and the per-entry timers. Every mutation is persisted before the
// method returns.
package tracker

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dori/timelog/internal/kv"
	"github.com/dori/timelog/internal/model"
	"github.com/dori/timelog/internal/store"
)

const (
	// StopwatchInterval is how often a running stopwatch extends its period
	StopwatchInterval = time.Second
	// RefreshInterval is how often live timer displays are redrawn
	RefreshInterval = 500 * time.Millisecond
)

// ErrInvalidTransition is returned when a timer operation does not apply to
// the entry's current timer state
var ErrInvalidTransition = errors.New("timer cannot do that from its current state")

// ValidationError reports bad user input. Nothing is mutated when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Tracker is the explicit application state shared by the TUI and the CLI
type Tracker struct {
	mu    sync.Mutex
	kv    kv.Store
	store *store.Store
	sw    *binding
	now   func() time.Time
	newID func() string
	log   *slog.Logger
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock replaces the wall clock
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithIDGenerator replaces the id generator
func WithIDGenerator(newID func() string) Option {
	return func(t *Tracker) { t.newID = newID }
}

// WithLogger sets the logger
func WithLogger(log *slog.Logger) Option {
	return func(t *Tracker) { t.log = log }
}

// NewID returns a time-ordered unique id
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// New creates a tracker persisting into s. Call Load before use.
func New(s kv.Store, opts ...Option) *Tracker {
	t := &Tracker{
		kv:    s,
		now:   time.Now,
		newID: NewID,
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.store = store.New(s, t.newID, t.log)
	return t
}

// Load reads entries and the stopwatch binding from storage
func (t *Tracker) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.Load(); err != nil {
		return err
	}
	sw, err := loadBinding(t.kv, t.log)
	if err != nil {
		return err
	}
	t.sw = sw
	return nil
}

// persist writes entries and the stopwatch binding in one atomic write
func (t *Tracker) persist() error {
	return t.write(t.kv.SetMany)
}

// persistTick is persist for stopwatch ticks, which stay out of the
// document history
func (t *Tracker) persistTick() error {
	return t.write(func(values map[string]string) error {
		return kv.SetManyTransient(t.kv, values)
	})
}

func (t *Tracker) write(setMany func(map[string]string) error) error {
	entries, err := t.store.Encoded()
	if err != nil {
		return err
	}
	sw, err := encodeBinding(t.sw)
	if err != nil {
		return err
	}
	if err := setMany(map[string]string{
		kv.KeyEntries:   entries,
		kv.KeyStopwatch: sw,
	}); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// RestoreEntries replaces every entry with an earlier entries document. The
// document must decode; a stopwatch whose entry is not in it is released.
func (t *Tracker) RestoreEntries(doc string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, _, _, err := store.DecodeRecords([]byte(doc)); err != nil {
		return 0, fmt.Errorf("failed to read revision: %w", err)
	}
	if err := t.kv.Set(kv.KeyEntries, doc); err != nil {
		return 0, fmt.Errorf("failed to restore entries: %w", err)
	}
	if err := t.store.Load(); err != nil {
		return 0, err
	}
	if t.sw != nil && !t.store.Contains(t.sw.EntryID) {
		t.log.Warn("stopwatch entry not in restored revision, releasing stopwatch", slog.String("id", t.sw.EntryID))
		t.sw = nil
		if err := t.kv.Set(kv.KeyStopwatch, "null"); err != nil {
			return 0, fmt.Errorf("failed to release stopwatch: %w", err)
		}
	}
	t.log.Info("restored entries", slog.Int("count", t.store.Len()))
	return t.store.Len(), nil
}

// Today returns the local calendar date of the tracker's clock
func (t *Tracker) Today() string {
	return model.FormatDate(t.now())
}

// Now returns the tracker's clock reading
func (t *Tracker) Now() time.Time {
	return t.now()
}

// CreateEntry validates input and stores a new completed-by-hand entry
func (t *Tracker) CreateEntry(date, description string, periods []model.TimePeriod) (model.Entry, error) {
	if err := validateInput(date, periods); err != nil {
		return model.Entry{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	e := model.Entry{
		Schema:      model.SchemaVersion,
		ID:          t.newID(),
		Date:        date,
		Day:         model.WeekdayName(date),
		TimePeriods: clonePeriods(periods),
		Description: normalizeDescription(description),
		TimerState:  model.TimerStopped,
	}
	e.RecomputeDuration()
	e.BaseDurationMinutes = e.Duration.TotalMinutes

	t.store.Insert(e)
	if err := t.persist(); err != nil {
		return model.Entry{}, err
	}
	t.log.Info("entry created", slog.String("id", e.ID), slog.String("date", date))
	return e, nil
}

// EditEntry replaces an entry's date, description and periods. Completion and
// timer fields are kept. A running stopwatch on the entry is paused first.
func (t *Tracker) EditEntry(id, date, description string, periods []model.TimePeriod) error {
	if err := validateInput(date, periods); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.store.Contains(id) {
		t.log.Debug("edit of unknown entry", slog.String("id", id))
		return nil
	}
	if t.sw != nil && t.sw.EntryID == id && t.sw.Running {
		t.pauseStopwatch()
	}

	t.store.Update(id, func(e *model.Entry) {
		e.Date = date
		e.Day = model.WeekdayName(date)
		e.Description = normalizeDescription(description)
		e.TimePeriods = clonePeriods(periods)
		// periods were replaced wholesale, a resumed stopwatch opens a new one
		e.StopwatchPeriodIndex = nil
		e.RecomputeDuration()
	})
	return t.persist()
}

// ToggleCompleted flips the completed flag
func (t *Tracker) ToggleCompleted(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.store.Update(id, func(e *model.Entry) { e.Completed = !e.Completed }) {
		t.log.Debug("toggle of unknown entry", slog.String("id", id))
		return nil
	}
	return t.persist()
}

// DeleteEntry removes an entry, stopping its timer and releasing the stopwatch
// if either is attached to it
func (t *Tracker) DeleteEntry(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.store.Find(id)
	if !ok {
		t.log.Debug("delete of unknown entry", slog.String("id", id))
		return nil
	}
	if e.TimerState == model.TimerRunning {
		t.stopTimer(id)
	}
	if t.sw != nil && t.sw.EntryID == id {
		t.resetStopwatch()
	}
	t.store.Delete(id)
	if err := t.persist(); err != nil {
		return err
	}
	t.log.Info("entry deleted", slog.String("id", id))
	return nil
}

// Entry returns a copy of one entry
func (t *Tracker) Entry(id string) (model.Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Find(id)
}

// Entries returns every entry in display order
func (t *Tracker) Entries() []model.Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.All()
}

// TodayEntries returns the entries of the current date
func (t *Tracker) TodayEntries() []model.Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Today(t.Today())
}

// PreviousGroups returns every entry except today's, grouped by date
func (t *Tracker) PreviousGroups() []store.DateGroup {
	t.mu.Lock()
	defer t.mu.Unlock()
	return store.SortedGroups(t.store.Previous(t.Today()))
}

// PastWeekGroups returns the seven days before today, grouped by date
func (t *Tracker) PastWeekGroups() []store.DateGroup {
	t.mu.Lock()
	defer t.mu.Unlock()
	return store.SortedGroups(t.store.PastWeek(t.Today()))
}

// Range returns entries with from <= date <= to
func (t *Tracker) Range(from, to string) []model.Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.ByDateRange(from, to)
}

// ByDate returns the entries of one date
func (t *Tracker) ByDate(date string) []model.Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.ByDate(date)
}

// DaySummary returns the committed total and entry count for date
func (t *Tracker) DaySummary(date string) (totalSeconds, count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.DaySummary(date)
}

// DarkMode returns the persisted display preference
func (t *Tracker) DarkMode() (bool, error) {
	return kv.GetBool(t.kv, kv.KeyDarkMode)
}

// SetDarkMode persists the display preference
func (t *Tracker) SetDarkMode(on bool) error {
	return kv.SetBool(t.kv, kv.KeyDarkMode, on)
}

func validateInput(date string, periods []model.TimePeriod) error {
	if strings.TrimSpace(date) == "" {
		return &ValidationError{Field: "date", Message: "date is required"}
	}
	if _, err := model.ParseDate(date); err != nil {
		return &ValidationError{Field: "date", Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date)}
	}
	if len(periods) == 0 {
		return &ValidationError{Field: "timePeriods", Message: "add at least one time period"}
	}
	for i, p := range periods {
		if p.StartTime == "" || p.EndTime == "" {
			return &ValidationError{Field: "timePeriods", Message: fmt.Sprintf("period %d: start and end time are required", i+1)}
		}
		start, err := model.ParseClock(p.StartTime)
		if err != nil {
			return &ValidationError{Field: "timePeriods", Message: fmt.Sprintf("period %d: %v", i+1, err)}
		}
		end, err := model.ParseClock(p.EndTime)
		if err != nil {
			return &ValidationError{Field: "timePeriods", Message: fmt.Sprintf("period %d: %v", i+1, err)}
		}
		if start >= end {
			return &ValidationError{Field: "timePeriods", Message: fmt.Sprintf("period %d: end time must be after start time", i+1)}
		}
	}
	return nil
}

func normalizeDescription(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.DefaultDescription
	}
	return s
}

func clonePeriods(periods []model.TimePeriod) []model.TimePeriod {
	out := make([]model.TimePeriod, len(periods))
	copy(out, periods)
	return out
}
