package db

import (
	"database/sql"
	"time"

	"github.com/dori/timelog/internal/kv"
)

var (
	_ kv.Store           = (*DB)(nil)
	_ kv.TransientWriter = (*DB)(nil)
)

// historyDepth is how many replaced values are kept per key
const historyDepth = 10

// Snapshot is a value a document held before it was overwritten
type Snapshot struct {
	Value      string
	ReplacedAt time.Time
}

// Get returns the document stored under key
func (db *DB) Get(key string) (string, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM documents WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set overwrites the document stored under key
func (db *DB) Set(key, value string) error {
	return db.Transaction(func(tx *sql.Tx) error {
		return setDocument(tx, key, value, time.Now(), true)
	})
}

// SetMany overwrites several documents in one transaction
func (db *DB) SetMany(values map[string]string) error {
	return db.setMany(values, true)
}

// SetManyTransient overwrites documents like SetMany without adding the old
// values to the history. Used for periodic stopwatch ticks.
func (db *DB) SetManyTransient(values map[string]string) error {
	return db.setMany(values, false)
}

func (db *DB) setMany(values map[string]string, keepHistory bool) error {
	now := time.Now()
	return db.Transaction(func(tx *sql.Tx) error {
		for key, value := range values {
			if err := setDocument(tx, key, value, now, keepHistory); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the document stored under key
func (db *DB) Delete(key string) error {
	_, err := db.Exec(`DELETE FROM documents WHERE key = ?`, key)
	return err
}

// History returns up to the last few replaced values of key, newest first
func (db *DB) History(key string) ([]Snapshot, error) {
	rows, err := db.Query(`
		SELECT value, replaced_at FROM document_history
		WHERE key = ?
		ORDER BY id DESC
	`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.Value, &s.ReplacedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

func setDocument(tx *sql.Tx, key, value string, now time.Time, keepHistory bool) error {
	var previous string
	err := tx.QueryRow(`SELECT value FROM documents WHERE key = ?`, key).Scan(&previous)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return err
	case previous == value:
		return nil
	case !keepHistory:
	default:
		if _, err := tx.Exec(`
			INSERT INTO document_history (key, value, replaced_at) VALUES (?, ?, ?)
		`, key, previous, now); err != nil {
			return err
		}
		if _, err := tx.Exec(`
			DELETE FROM document_history
			WHERE key = ? AND id NOT IN (
				SELECT id FROM document_history WHERE key = ?
				ORDER BY id DESC LIMIT ?
			)
		`, key, key, historyDepth); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`
		INSERT INTO documents (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, now)
	return err
}
