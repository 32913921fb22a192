package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/dori/timelog/internal/adapter/mysql"
	"github.com/dori/timelog/internal/backup"
	"github.com/dori/timelog/internal/config"
	"github.com/dori/timelog/internal/db"
	"github.com/dori/timelog/internal/kv"
	"github.com/dori/timelog/internal/notify"
	"github.com/dori/timelog/internal/pto"
	"github.com/dori/timelog/internal/store"
	"github.com/dori/timelog/internal/tracker"
)

// App holds the application state and dependencies
type App struct {
	DB       *db.DB
	Tracker  *tracker.Tracker
	Pto      *pto.Ledger
	Notifier *notify.Notifier
	Log      *slog.Logger
	Config   config.Config
	DataDir  string
	lockFile *flock.Flock
	logFile  *os.File
}

// Option adjusts how the app is built
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces the wall clock, for tests
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a new application instance
func New(cfg config.Config, opts ...Option) (*App, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	app := &App{
		Config:   cfg,
		DataDir:  cfg.DataDir,
		Notifier: notify.NewNotifier(cfg.Notify),
	}

	// Acquire lock to ensure single instance
	if err := app.acquireLock(); err != nil {
		return nil, err
	}

	if err := app.openLog(cfg.LogLevel); err != nil {
		app.releaseLock()
		return nil, err
	}

	// Open database
	database, err := db.Open(cfg.DBPath, app.Log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.DB = database

	app.Tracker = tracker.New(database, tracker.WithClock(o.now), tracker.WithLogger(app.Log))
	if err := app.Tracker.Load(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	if err := app.Tracker.Recover(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to recover stopwatch: %w", err)
	}
	app.Pto = pto.New(database, tracker.NewID, o.now, app.Log)

	app.Log.Debug("app started", slog.String("db", cfg.DBPath), slog.Int64("schema", database.Schema()))
	return app, nil
}

// openLog sends structured logs to a file in the data directory so they never
// mix with terminal output
func (a *App) openLog(level slog.Level) error {
	f, err := os.OpenFile(filepath.Join(a.DataDir, "timelog.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	a.logFile = f
	a.Log = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return nil
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	lockPath := filepath.Join(a.DataDir, "timelog.lock")
	a.lockFile = flock.New(lockPath)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of timelog is already running")
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// ExportFile writes a backup to path
func (a *App) ExportFile(path string, compress bool) error {
	doc, err := a.Tracker.Export()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	if err := backup.Encode(f, doc, backup.Options{Compress: compress}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	a.Log.Info("exported backup", slog.String("path", path), slog.Int("entries", len(doc.Entries)))
	return nil
}

// ImportFile merges a backup file into the entries
func (a *App) ImportFile(path string) (backup.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return backup.Result{}, fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	in, err := backup.Decode(f)
	if err != nil {
		a.Notifier.SendImportFailed(err)
		return backup.Result{}, err
	}
	res, err := a.Tracker.Import(in)
	if err != nil {
		a.Notifier.SendImportFailed(err)
		return backup.Result{}, err
	}
	a.Notifier.SendImportResult(res.Added, res.Skipped)
	return res, nil
}

// WriteTimesheet exports entries and PTO days to an xlsx workbook
func (a *App) WriteTimesheet(path string) error {
	days, err := a.Pto.All()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create timesheet: %w", err)
	}
	if err := backup.WriteTimesheet(f, a.Tracker.Entries(), days); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Revision is an earlier state of the entries document
type Revision struct {
	ReplacedAt time.Time
	Entries    int
	doc        string
}

// EntryRevisions lists the kept earlier states of the entries, newest first.
// Unreadable revisions are listed with -1 entries.
func (a *App) EntryRevisions() ([]Revision, error) {
	snapshots, err := a.DB.History(kv.KeyEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry history: %w", err)
	}
	revisions := make([]Revision, 0, len(snapshots))
	for _, s := range snapshots {
		count := -1
		if entries, _, _, err := store.DecodeRecords([]byte(s.Value)); err == nil {
			count = len(entries)
		}
		revisions = append(revisions, Revision{ReplacedAt: s.ReplacedAt, Entries: count, doc: s.Value})
	}
	return revisions, nil
}

// RestoreRevision replaces the entries with revision n, counted from 1 as
// listed by EntryRevisions. The current entries become the newest revision.
func (a *App) RestoreRevision(n int) (int, error) {
	revisions, err := a.EntryRevisions()
	if err != nil {
		return 0, err
	}
	if n < 1 || n > len(revisions) {
		return 0, fmt.Errorf("no revision %d (have %d)", n, len(revisions))
	}
	count, err := a.Tracker.RestoreEntries(revisions[n-1].doc)
	if err != nil {
		return 0, err
	}
	a.Log.Info("restored entry revision", slog.Int("revision", n), slog.Int("entries", count))
	return count, nil
}

// Mirror copies entries and PTO days into the configured MySQL database
func (a *App) Mirror(ctx context.Context) error {
	if a.Config.MySQL.DSN == "" {
		return fmt.Errorf("TIMELOG_MYSQL_DSN is not set")
	}
	client, err := mysql.NewClient(ctx, a.Config.MySQL.DSN, a.Log)
	if err != nil {
		return fmt.Errorf("failed to connect to mysql: %w", err)
	}
	defer client.Close()

	if err := client.MirrorEntries(ctx, a.Tracker.Entries()); err != nil {
		return fmt.Errorf("failed to mirror entries: %w", err)
	}
	days, err := a.Pto.All()
	if err != nil {
		return err
	}
	if err := client.MirrorPto(ctx, days); err != nil {
		return fmt.Errorf("failed to mirror PTO: %w", err)
	}
	return nil
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	a.releaseLock()

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
