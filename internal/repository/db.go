package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

type Config struct {
	Path        string
	BusyTimeout time.Duration
}

// Open opens (creating if needed) the sqlite database at cfg.Path and applies the schema.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	logger.Info("opening page cache database", "path", cfg.Path)

	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", cfg.Path, cfg.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, err
	}
	// one connection; fill workers share it
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		logger.Error("failed to migrate database", "error", err)
		return nil, err
	}

	logger.Info("page cache database ready")
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS page_cache (
			url        TEXT PRIMARY KEY,
			body       BLOB NOT NULL,
			raw_len    INTEGER NOT NULL,
			fetched_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating page_cache table: %w", err)
	}
	return nil
}

// Close closes the database gracefully
func Close(db *sql.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("closing page cache database")
	if err := db.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}

// HealthCheck pings the database to catch path or permission issues early.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	logger.Debug("database ping successful")
	return nil
}
