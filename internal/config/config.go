// Package config reads the environment-driven settings.
package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dori/timelog/internal/db"
)

// Config holds environment-driven configuration.
type Config struct {
	DataDir  string
	DBPath   string
	LogLevel slog.Level
	// Notify enables desktop notifications
	Notify bool
	MySQL  struct {
		DSN string // e.g. user:pass@tcp(host:3306)/timelog?parseTime=true
	}
}

// Default returns the configuration used when nothing is set
func Default() Config {
	var cfg Config
	cfg.DataDir = db.DefaultDataDir()
	cfg.DBPath = db.DefaultDBPath()
	cfg.LogLevel = slog.LevelInfo
	cfg.Notify = true
	return cfg
}

// Load reads configuration from environment variables over the defaults
func Load() (Config, error) {
	cfg := Default()

	if dir := os.Getenv("TIMELOG_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
		cfg.DBPath = filepath.Join(dir, db.DefaultDBName)
	}
	if path := os.Getenv("TIMELOG_DB_PATH"); path != "" {
		cfg.DBPath = path
	}

	if lvl := os.Getenv("TIMELOG_LOG_LEVEL"); lvl != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(lvl))); err != nil {
			return cfg, errors.New("TIMELOG_LOG_LEVEL must be one of debug, info, warn, error")
		}
	}

	if n := os.Getenv("TIMELOG_NOTIFY"); n != "" {
		v, err := strconv.ParseBool(n)
		if err != nil {
			return cfg, errors.New("TIMELOG_NOTIFY must be a boolean")
		}
		cfg.Notify = v
	}

	cfg.MySQL.DSN = os.Getenv("TIMELOG_MYSQL_DSN")
	return cfg, nil
}
