// Package mysql mirrors the local time log into a MySQL database for reporting.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/dori/timelog/internal/model"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS timelog_entries (
  id           VARCHAR(64)  NOT NULL PRIMARY KEY,
  date         DATE         NOT NULL,
  day          VARCHAR(16)  NOT NULL,
  description  TEXT         NOT NULL,
  periods      TEXT         NOT NULL,
  duration_sec INT          NOT NULL,
  completed    BOOLEAN      NOT NULL,
  mirrored_at  DATETIME     NOT NULL,
  INDEX idx_timelog_entries_date (date)
)`, `
CREATE TABLE IF NOT EXISTS timelog_pto (
  id         VARCHAR(64) NOT NULL PRIMARY KEY,
  date       DATE        NOT NULL UNIQUE,
  type       VARCHAR(16) NOT NULL,
  notes      TEXT        NOT NULL,
  created_at DATETIME    NULL
)`}

// Client writes snapshots of the local data to MySQL
type Client struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

// NewClient opens a MySQL connection using the provided DSN and creates the
// mirror tables if needed.
// Example DSN: user:pass@tcp(host:3306)/timelog?parseTime=true
func NewClient(ctx context.Context, dsn string, log *slog.Logger) (*Client, error) {
	if dsn == "" {
		return nil, errors.New("mysql: DSN is required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("mysql: failed to create mirror tables: %w", err)
		}
	}
	return &Client{db: db, log: log, now: time.Now}, nil
}

// MirrorEntries replaces the mirrored entries with entries in one transaction
func (c *Client) MirrorEntries(ctx context.Context, entries []model.Entry) error {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM timelog_entries`); err != nil {
		tx.Rollback()
		return err
	}

	const q = `
INSERT INTO timelog_entries
  (id, date, day, description, periods, duration_sec, completed, mirrored_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	at := c.now().UTC()
	for _, e := range entries {
		// Periods are stored as JSON for readability
		periods, _ := json.Marshal(e.TimePeriods)
		if _, err := stmt.ExecContext(ctx,
			e.ID,
			e.Date,
			e.Day,
			e.Description,
			string(periods),
			e.Duration.TotalSeconds,
			e.Completed,
			at,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("mysql: failed to mirror entry %s: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	c.log.Info("mysql mirror replaced entries", slog.Int("count", len(entries)))
	return nil
}

// MirrorPto replaces the mirrored PTO days in one transaction
func (c *Client) MirrorPto(ctx context.Context, days []model.PtoEntry) error {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM timelog_pto`); err != nil {
		tx.Rollback()
		return err
	}

	const q = `INSERT INTO timelog_pto (id, date, type, notes, created_at) VALUES (?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, p := range days {
		var created interface{}
		if !p.CreatedAt.IsZero() {
			created = p.CreatedAt.UTC()
		}
		if _, err := stmt.ExecContext(ctx, p.ID, p.Date, string(p.Type), p.Notes, created); err != nil {
			tx.Rollback()
			return fmt.Errorf("mysql: failed to mirror PTO %s: %w", p.Date, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	c.log.Info("mysql mirror replaced PTO", slog.Int("count", len(days)))
	return nil
}

// Close closes the underlying DB.
func (c *Client) Close() error { return c.db.Close() }
