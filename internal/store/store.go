// Package store keeps the ordered in-memory set of time entries and persists it
// as a single document.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dori/timelog/internal/kv"
	"github.com/dori/timelog/internal/model"
)

// Store is the in-memory entry collection. It is not safe for concurrent use;
// the tracker serializes access.
type Store struct {
	kv      kv.Store
	log     *slog.Logger
	newID   func() string
	entries []*model.Entry
}

// New creates an empty store backed by s. newID fills in ids for legacy
// records that never had one.
func New(s kv.Store, newID func() string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Store{kv: s, log: log, newID: newID}
}

// Load replaces the in-memory set with the persisted document, upgrading
// older records. An unreadable document is kept aside and treated as empty.
func (s *Store) Load() error {
	s.entries = nil

	raw, ok, err := s.kv.Get(kv.KeyEntries)
	if err != nil {
		return fmt.Errorf("failed to read entries: %w", err)
	}
	if !ok || raw == "" {
		return nil
	}

	entries, rejected, upgraded, err := DecodeRecords([]byte(raw))
	if errors.Is(err, ErrUnsupportedSchema) {
		return err
	}
	if err != nil {
		s.log.Warn("entries document unreadable, starting empty", slog.String("error", err.Error()))
		return s.kv.Set(kv.KeyEntries+kv.CorruptKeySuffix, raw)
	}

	if len(rejected) > 0 {
		s.log.Warn("skipping malformed entries", slog.Int("count", len(rejected)))
		data, err := json.Marshal(rejected)
		if err != nil {
			return err
		}
		if err := s.kv.Set(kv.KeyEntries+kv.CorruptKeySuffix, string(data)); err != nil {
			return fmt.Errorf("failed to keep malformed entries: %w", err)
		}
	}

	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = s.newID()
			upgraded = true
		}
		e := entries[i]
		s.entries = append(s.entries, &e)
	}
	s.sort()

	if upgraded || len(rejected) > 0 {
		s.log.Info("upgraded stored entries", slog.Int("count", len(s.entries)))
		return s.Save()
	}
	return nil
}

// Save overwrites the persisted document with the whole collection
func (s *Store) Save() error {
	data, err := EncodeRecords(s.All())
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}
	if err := s.kv.Set(kv.KeyEntries, string(data)); err != nil {
		return fmt.Errorf("failed to save entries: %w", err)
	}
	return nil
}

// Encoded returns the document Save would write, for atomic multi-key writes
func (s *Store) Encoded() (string, error) {
	data, err := EncodeRecords(s.All())
	if err != nil {
		return "", fmt.Errorf("failed to encode entries: %w", err)
	}
	return string(data), nil
}

// Insert appends an entry and restores display order
func (s *Store) Insert(e model.Entry) {
	c := e.Clone()
	s.entries = append(s.entries, &c)
	s.sort()
}

// Append adds entries without checking for duplicates
func (s *Store) Append(entries ...model.Entry) {
	for _, e := range entries {
		c := e.Clone()
		s.entries = append(s.entries, &c)
	}
	s.sort()
}

// Find returns a copy of the entry with id
func (s *Store) Find(id string) (model.Entry, bool) {
	if e := s.lookup(id); e != nil {
		return e.Clone(), true
	}
	return model.Entry{}, false
}

// Contains returns true if an entry with id exists
func (s *Store) Contains(id string) bool {
	return s.lookup(id) != nil
}

// Update applies fn to the live entry with id. It returns false if the entry
// does not exist.
func (s *Store) Update(id string, fn func(*model.Entry)) bool {
	e := s.lookup(id)
	if e == nil {
		return false
	}
	fn(e)
	s.sort()
	return true
}

// Delete removes the entry with id
func (s *Store) Delete(id string) bool {
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of entries
func (s *Store) Len() int {
	return len(s.entries)
}

// All returns copies of every entry in display order
func (s *Store) All() []model.Entry {
	return s.filter(func(*model.Entry) bool { return true })
}

func (s *Store) lookup(id string) *model.Entry {
	for _, e := range s.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (s *Store) filter(keep func(*model.Entry) bool) []model.Entry {
	out := make([]model.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// sort orders by date (newest first), then earliest start (latest first).
// The sort is stable so ties keep insertion order.
func (s *Store) sort() {
	sort.SliceStable(s.entries, func(i, j int) bool {
		a, b := s.entries[i], s.entries[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		return a.EarliestStart() > b.EarliestStart()
	})
}
