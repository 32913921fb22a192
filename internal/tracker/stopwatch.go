package tracker

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dori/timelog/internal/kv"
	"github.com/dori/timelog/internal/model"
)

// binding ties the singleton stopwatch to the entry it extends. It is
// persisted so a new process picks up a stopwatch started by an older one.
type binding struct {
	EntryID   string `json:"entryId"`
	Running   bool   `json:"running"`
	StartedAt *int64 `json:"startedAt"`
	Elapsed   int64  `json:"elapsed"`
}

// Stopwatch is a read-only view of the singleton stopwatch
type Stopwatch struct {
	Active      bool
	Running     bool
	EntryID     string
	Description string
	Elapsed     time.Duration
}

func loadBinding(s kv.Store, log *slog.Logger) (*binding, error) {
	raw, ok, err := s.Get(kv.KeyStopwatch)
	if err != nil {
		return nil, fmt.Errorf("failed to read stopwatch: %w", err)
	}
	if !ok || raw == "" || raw == "null" {
		return nil, nil
	}
	var b binding
	if err := json.Unmarshal([]byte(raw), &b); err != nil || b.EntryID == "" {
		log.Warn("discarding unreadable stopwatch state", slog.String("value", raw))
		return nil, nil
	}
	return &b, nil
}

func encodeBinding(b *binding) (string, error) {
	if b == nil {
		return "null", nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("failed to encode stopwatch: %w", err)
	}
	return string(data), nil
}

// Stopwatch returns the current stopwatch state
func (t *Tracker) Stopwatch() Stopwatch {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sw == nil {
		return Stopwatch{}
	}
	sw := Stopwatch{
		Active:  true,
		Running: t.sw.Running,
		EntryID: t.sw.EntryID,
		Elapsed: t.sw.elapsed(t.now()),
	}
	if e, ok := t.store.Find(t.sw.EntryID); ok {
		sw.Description = e.Description
	}
	return sw
}

func (b *binding) elapsed(now time.Time) time.Duration {
	ms := b.Elapsed
	if b.Running && b.StartedAt != nil {
		ms += now.UnixMilli() - *b.StartedAt
	}
	return time.Duration(ms) * time.Millisecond
}

// StartStopwatch starts the stopwatch, creating its entry on first start. A
// paused stopwatch opens a new period so the paused time is not counted. One
// paused on an earlier day is released and a new entry is created for today.
// It returns the tracked entry id.
func (t *Tracker) StartStopwatch() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sw != nil && t.sw.Running {
		return t.sw.EntryID, nil
	}

	now := t.now()
	startedAt := now.UnixMilli()
	clock := model.FormatClock(now)

	if t.sw != nil {
		if e, ok := t.store.Find(t.sw.EntryID); ok && e.Date != model.FormatDate(now) {
			t.log.Info("stopwatch was paused on an earlier day, starting a new entry",
				slog.String("id", e.ID), slog.String("date", e.Date))
			t.sw = nil
		}
	}

	if t.sw != nil && t.store.Contains(t.sw.EntryID) {
		t.store.Update(t.sw.EntryID, func(e *model.Entry) {
			e.TimePeriods = append(e.TimePeriods, model.TimePeriod{StartTime: clock, EndTime: clock})
			idx := len(e.TimePeriods) - 1
			e.StopwatchPeriodIndex = &idx
			e.RecomputeDuration()
		})
		t.sw.Running = true
		t.sw.StartedAt = &startedAt
		t.log.Info("stopwatch resumed", slog.String("id", t.sw.EntryID))
		return t.sw.EntryID, t.persist()
	}

	idx := 0
	e := model.Entry{
		Schema:               model.SchemaVersion,
		ID:                   t.newID(),
		Date:                 model.FormatDate(now),
		Day:                  now.Weekday().String(),
		TimePeriods:          []model.TimePeriod{{StartTime: clock, EndTime: clock}},
		Description:          model.StopwatchDescription,
		TimerState:           model.TimerStopped,
		StopwatchPeriodIndex: &idx,
	}
	e.RecomputeDuration()
	t.store.Insert(e)
	t.sw = &binding{EntryID: e.ID, Running: true, StartedAt: &startedAt}

	t.log.Info("stopwatch started", slog.String("id", e.ID))
	return e.ID, t.persist()
}

// TickStopwatch extends the running stopwatch's period to now
func (t *Tracker) TickStopwatch() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sw == nil || !t.sw.Running {
		return nil
	}
	t.tick()
	return t.persistTick()
}

// tick rewrites the designated period's end to now. Once the entry's day is
// over the period is closed at the end of that day and the stopwatch pauses.
func (t *Tracker) tick() {
	if !t.store.Contains(t.sw.EntryID) {
		t.log.Warn("stopwatch entry is gone, releasing stopwatch", slog.String("id", t.sw.EntryID))
		t.sw = nil
		return
	}

	now := t.now()
	clamped := false
	var stoppedAt time.Time
	t.store.Update(t.sw.EntryID, func(e *model.Entry) {
		idx := -1
		if e.StopwatchPeriodIndex != nil {
			idx = *e.StopwatchPeriodIndex
		}
		if idx < 0 || idx >= len(e.TimePeriods) {
			origin := now
			if t.sw.StartedAt != nil {
				origin = time.UnixMilli(*t.sw.StartedAt)
			}
			e.TimePeriods = append(e.TimePeriods, model.TimePeriod{StartTime: model.FormatClock(origin)})
			idx = len(e.TimePeriods) - 1
			e.StopwatchPeriodIndex = &idx
		}
		p := &e.TimePeriods[idx]
		p.EndTime, clamped = t.periodEnd(e.ID, p.StartTime, e.Date, now)
		if clamped {
			stoppedAt = dayEnd(e.Date, now)
		}
		e.RecomputeDuration()
	})

	if clamped {
		t.fold(stoppedAt)
	}
}

// fold moves the live stopwatch segment up to at into the binding's elapsed time
func (t *Tracker) fold(at time.Time) {
	if t.sw.StartedAt != nil {
		t.sw.Elapsed += max(0, at.UnixMilli()-*t.sw.StartedAt)
	}
	t.sw.StartedAt = nil
	t.sw.Running = false
}

// PauseStopwatch records a final tick and stops the stopwatch advancing. The
// period stays open.
func (t *Tracker) PauseStopwatch() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sw == nil || !t.sw.Running {
		return nil
	}
	t.pauseStopwatch()
	return t.persist()
}

func (t *Tracker) pauseStopwatch() {
	t.tick()
	if t.sw != nil && t.sw.Running {
		t.fold(t.now())
	}
	if t.sw != nil {
		t.log.Info("stopwatch paused", slog.String("id", t.sw.EntryID))
	}
}

// StopStopwatch closes the stopwatch and keeps its entry. A non-blank
// description other than the placeholder renames the entry. It returns the
// final entry, or false if no stopwatch was active.
func (t *Tracker) StopStopwatch(description string) (model.Entry, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sw == nil {
		return model.Entry{}, false, nil
	}
	id := t.sw.EntryID

	desc := strings.TrimSpace(description)
	if desc != "" && desc != model.StopwatchDescription {
		t.store.Update(id, func(e *model.Entry) { e.Description = desc })
	}
	if t.sw.Running {
		t.tick()
	}
	t.sw = nil

	if err := t.persist(); err != nil {
		return model.Entry{}, false, err
	}
	e, ok := t.store.Find(id)
	if ok {
		t.log.Info("stopwatch stopped", slog.String("id", id), slog.Int("seconds", e.Duration.TotalSeconds))
	}
	return e, ok, nil
}

// ResetStopwatch abandons the stopwatch. Its entry is deleted if it never
// accumulated any time.
func (t *Tracker) ResetStopwatch() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sw == nil {
		return nil
	}
	t.resetStopwatch()
	return t.persist()
}

func (t *Tracker) resetStopwatch() {
	id := t.sw.EntryID
	if e, ok := t.store.Find(id); ok && e.Duration.TotalSeconds == 0 {
		t.store.Delete(id)
		t.log.Info("deleted empty stopwatch entry", slog.String("id", id))
	}
	t.sw = nil
}

// Recover brings a stopwatch left running by an earlier process up to date.
// It is called once at startup after Load.
func (t *Tracker) Recover() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sw == nil {
		return nil
	}
	if !t.store.Contains(t.sw.EntryID) {
		t.log.Warn("stopwatch entry is gone, releasing stopwatch", slog.String("id", t.sw.EntryID))
		t.sw = nil
		return t.persist()
	}
	if !t.sw.Running {
		return nil
	}
	t.tick()
	return t.persistTick()
}
