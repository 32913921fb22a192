// Package kv defines the key/value document storage the tracker persists into.
// Every value is a whole document; writers always overwrite the full value.
package kv

import (
	"sync"
)

// Keys of the persisted documents
const (
	KeyEntries       = "timeTrackerEntries"
	KeyPto           = "timeTrackerPto"
	KeyDarkMode      = "darkMode"
	KeyStopwatch     = "timeTrackerStopwatch"
	CorruptKeySuffix = ".corrupt"
)

// Store reads and writes whole documents by key
type Store interface {
	// Get returns the value and whether the key exists
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// SetMany writes several documents atomically
	SetMany(values map[string]string) error
	Delete(key string) error
}

// TransientWriter is implemented by stores that keep the history of replaced
// documents. SetManyTransient writes like SetMany but records no history, for
// frequent writes that would flush out useful revisions.
type TransientWriter interface {
	SetManyTransient(values map[string]string) error
}

// SetManyTransient writes through s's transient path when it has one
func SetManyTransient(s Store, values map[string]string) error {
	if w, ok := s.(TransientWriter); ok {
		return w.SetManyTransient(values)
	}
	return s.SetMany(values)
}

// Memory is an in-process Store, used by tests and as a scratch store
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get implements Store
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Store
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// SetMany implements Store
func (m *Memory) SetMany(values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

// Delete implements Store
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// GetBool reads a "true"/"false" flag; anything else is false
func GetBool(s Store, key string) (bool, error) {
	v, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	return v == "true", nil
}

// SetBool writes a flag as "true"/"false"
func SetBool(s Store, key string, value bool) error {
	if value {
		return s.Set(key, "true")
	}
	return s.Set(key, "false")
}
