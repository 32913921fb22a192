package tracker

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dori/timelog/internal/model"
)

// endOfDay closes periods that ran past midnight
const endOfDay = "23:59:59"

// StartTimer starts a stopped entry timer
func (t *Tracker) StartTimer(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.transition(id, "start", func(e *model.Entry, now time.Time) error {
		if e.TimerState != model.TimerStopped {
			return fmt.Errorf("%w: timer is %s", ErrInvalidTransition, e.TimerState)
		}
		markActualStart(e, now)
		started := now.UnixMilli()
		e.TimerStartTime = &started
		e.TimerState = model.TimerRunning
		return nil
	})
}

// PauseTimer folds the running segment into the pending elapsed time. The
// segment is not written to the periods until the timer stops.
func (t *Tracker) PauseTimer(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.transition(id, "pause", func(e *model.Entry, now time.Time) error {
		if e.TimerState != model.TimerRunning {
			return fmt.Errorf("%w: timer is %s", ErrInvalidTransition, e.TimerState)
		}
		foldSegment(e, now)
		e.TimerStartTime = nil
		e.RecomputeDuration()
		e.TimerState = model.TimerPaused
		return nil
	})
}

// ResumeTimer continues a paused timer
func (t *Tracker) ResumeTimer(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.transition(id, "resume", func(e *model.Entry, now time.Time) error {
		if e.TimerState != model.TimerPaused {
			return fmt.Errorf("%w: timer is %s", ErrInvalidTransition, e.TimerState)
		}
		if e.TimerActualStartTime == nil {
			markActualStart(e, now)
		}
		started := now.UnixMilli()
		e.TimerStartTime = &started
		e.TimerState = model.TimerRunning
		return nil
	})
}

// StopTimer materializes the pending segment as a time period
func (t *Tracker) StopTimer(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.store.Find(id)
	if !ok {
		t.log.Debug("stop of unknown entry timer", slog.String("id", id))
		return nil
	}
	if e.TimerState == model.TimerStopped {
		return fmt.Errorf("%w: timer is %s", ErrInvalidTransition, e.TimerState)
	}
	t.stopTimer(id)
	return t.persist()
}

// stopTimer mutates without persisting; callers hold the lock
func (t *Tracker) stopTimer(id string) {
	now := t.now()
	t.store.Update(id, func(e *model.Entry) {
		if e.TimerState == model.TimerRunning {
			foldSegment(e, now)
		}
		if e.TimerActualStartTime != nil {
			start := withSeconds(*e.TimerActualStartTime, e.TimerElapsed, now)
			end, _ := t.periodEnd(e.ID, start, actualStartDate(e, now), now)
			e.TimePeriods = append(e.TimePeriods, model.TimePeriod{StartTime: start, EndTime: end})
			e.TimerActualStartTime = nil
		}
		e.TimerActualStartDate = nil
		e.TimerElapsed = 0
		e.TimerStartTime = nil
		e.RecomputeDuration()
		e.TimerState = model.TimerStopped
	})
	t.log.Info("timer stopped", slog.String("id", id))
}

func (t *Tracker) transition(id, op string, fn func(*model.Entry, time.Time) error) error {
	if !t.store.Contains(id) {
		t.log.Debug("timer "+op+" on unknown entry", slog.String("id", id))
		return nil
	}
	now := t.now()
	var err error
	t.store.Update(id, func(e *model.Entry) { err = fn(e, now) })
	if err != nil {
		return err
	}
	t.log.Debug("timer "+op, slog.String("id", id))
	return t.persist()
}

// periodEnd returns now as the end of a period that began at start on
// startDate. A period that has run into a later day is closed at the end of
// its own day instead, and the second result is true.
func (t *Tracker) periodEnd(id, start, startDate string, now time.Time) (string, bool) {
	end := model.FormatClock(now)
	crossed := startDate != "" && startDate < model.FormatDate(now)
	if crossed || model.TimeToSeconds(end) < model.TimeToSeconds(start) {
		t.log.Warn("period crossed midnight, closing it at end of day",
			slog.String("id", id), slog.String("start", start),
			slog.String("startDate", startDate), slog.String("now", now.Format(time.DateTime)))
		return endOfDay, true
	}
	return end, false
}

// dayEnd returns the last second of date, or now if that is earlier or date
// does not parse
func dayEnd(date string, now time.Time) time.Time {
	d, err := model.ParseDate(date)
	if err != nil {
		return now
	}
	end := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, time.Local)
	if end.After(now) {
		return now
	}
	return end
}

func markActualStart(e *model.Entry, now time.Time) {
	clock := model.FormatClock(now)
	date := model.FormatDate(now)
	e.TimerActualStartTime = &clock
	e.TimerActualStartDate = &date
}

// actualStartDate returns the day the unflushed segment began. Records from
// older builds only carry the clock, so the date is taken from when the
// pending time began.
func actualStartDate(e *model.Entry, now time.Time) string {
	if e.TimerActualStartDate != nil {
		return *e.TimerActualStartDate
	}
	return model.FormatDate(time.UnixMilli(now.UnixMilli() - e.TimerElapsed))
}

func foldSegment(e *model.Entry, now time.Time) {
	if e.TimerStartTime != nil {
		e.TimerElapsed += now.UnixMilli() - *e.TimerStartTime
	}
}

// withSeconds upgrades an HH:MM actual start from older builds. The seconds
// come from when the pending time began, now minus the folded elapsed time.
func withSeconds(start string, elapsedMs int64, now time.Time) string {
	if strings.Count(start, ":") != 1 {
		return start
	}
	began := time.UnixMilli(now.UnixMilli() - elapsedMs)
	return fmt.Sprintf("%s:%02d", start, began.Second())
}
