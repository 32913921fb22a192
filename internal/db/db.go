// Package db stores the tracker's documents in SQLite.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DefaultDBName is the database file name inside the data directory
const DefaultDBName = "timelog.db"

// DB is the document database. It implements kv.Store.
type DB struct {
	*sql.DB
	schema int64
}

// DefaultDataDir returns ~/.local/share/timelog, or .timelog when there is no home
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".timelog"
	}
	return filepath.Join(home, ".local", "share", "timelog")
}

// DefaultDBPath returns the database path inside the default data directory
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), DefaultDBName)
}

// Open opens the database at dbPath, creating its directory, and applies any
// pending migrations. Applied migrations are logged to log, which may be nil.
func Open(dbPath string, log *slog.Logger) (*DB, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// WAL keeps readers working while the TUI writes stopwatch ticks
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", dbPath)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: sqlDB}
	if err := db.migrate(context.Background(), log); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// migrate brings the schema up to date. The provider keeps goose's global
// logger out of the terminal.
func (db *DB) migrate(ctx context.Context, log *slog.Logger) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db.DB, fsys)
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, r := range results {
		log.Info("applied migration",
			slog.Int64("version", r.Source.Version),
			slog.String("file", filepath.Base(r.Source.Path)),
			slog.Duration("took", r.Duration))
	}

	db.schema, err = provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	return nil
}

// Schema returns the migration version the database is at
func (db *DB) Schema() int64 {
	return db.schema
}

// Transaction runs fn in a transaction and commits if it returns nil
func (db *DB) Transaction(fn func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
