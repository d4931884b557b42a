package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Config selects the record store backend.
type Config struct {
	Driver     string // "postgres" or "sqlite"
	URL        string // postgres connection string
	SQLitePath string
}

// DB wraps sql.DB over either Postgres (pgx) or SQLite.
type DB struct {
	Client *sql.DB
	Driver string
}

// Open connects to the configured backend and applies the schema.
func Open(cfg Config) (*DB, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "postgres":
		db, err = sql.Open("pgx", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." && cfg.SQLitePath != ":memory:" {
			os.MkdirAll(dir, 0o755)
		}
		db, err = sql.Open("sqlite3", cfg.SQLitePath+"?_journal_mode=WAL&_busy_timeout=5000")
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// single writer keeps :memory: databases coherent too
		db.SetMaxOpenConns(1)
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
	}

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := migrate(db, cfg.Driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &DB{Client: db, Driver: cfg.Driver}, nil
}

func migrate(db *sql.DB, driver string) error {
	// STRFTIME keeps millisecond precision; CURRENT_TIMESTAMP would
	// round to whole seconds and records logged in the same second
	// would tie on ordering
	timestamp := "DATETIME NOT NULL DEFAULT (STRFTIME('%Y-%m-%d %H:%M:%f','now'))"
	if driver == "postgres" {
		timestamp = "TIMESTAMPTZ NOT NULL DEFAULT now()"
	}

	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS attendance_records (
		id          TEXT PRIMARY KEY,
		person_name TEXT NOT NULL,
		image       TEXT NOT NULL,
		logged_by   TEXT NOT NULL DEFAULT '',
		created_at  %s
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_records_created ON attendance_records(created_at);
	CREATE INDEX IF NOT EXISTS idx_attendance_records_person  ON attendance_records(person_name);

	CREATE TABLE IF NOT EXISTS image_archives (
		id         TEXT PRIMARY KEY,
		record_id  TEXT NOT NULL REFERENCES attendance_records(id),
		url        TEXT NOT NULL,
		created_at %s
	);

	CREATE INDEX IF NOT EXISTS idx_image_archives_record ON image_archives(record_id);
	`, timestamp, timestamp)

	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

// Healthy verifies database connectivity.
func (d *DB) Healthy(ctx context.Context) bool {
	if d == nil || d.Client == nil {
		return false
	}
	return d.Client.PingContext(ctx) == nil
}
