// Package db manages the database connection
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps the SQL database connection with application-specific methods.
type DB struct {
	*sql.DB
	path string
}

// New creates a new database connection and initializes the schema.
func New(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:   sqlDB,
		path: path,
	}

	if err := db.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := db.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if err := db.FixLegacyTimeFormats(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to fix legacy time formats: %w", err)
	}

	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// configure sets up database pragmas for optimal performance.
func (db *DB) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000", // 64MB cache
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *DB) createSchema() error {
	for _, create := range []func() error{
		db.createOrganizationsTable,
		db.createEventsTable,
		db.createAttendeesTable,
		db.createSyncRunsTable,
		db.createCacheEntriesTable,
	} {
		if err := create(); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) createOrganizationsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS organizations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		updated_at TEXT
	);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

// Event start/end are the event's own wall clock, so the generated calendar
// columns match what the organizer sees.
func (db *DB) createEventsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		start_local TEXT,
		end_local TEXT,
		capacity INTEGER DEFAULT 0,
		is_free INTEGER DEFAULT 0,
		updated_at TEXT,
		attendees_synced_at TEXT,
		year INTEGER GENERATED ALWAYS AS (CAST(strftime('%Y', start_local) AS INTEGER)) STORED,
		month INTEGER GENERATED ALWAYS AS (CAST(strftime('%m', start_local) AS INTEGER)) STORED,
		day_of_week INTEGER GENERATED ALWAYS AS (CAST(strftime('%w', start_local) AS INTEGER)) STORED
	);
	CREATE INDEX IF NOT EXISTS idx_events_org_start ON events(org_id, start_local);
	CREATE INDEX IF NOT EXISTS idx_events_year_month ON events(org_id, year, month);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createAttendeesTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS attendees (
		id TEXT NOT NULL,
		event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		ticket_type TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		quantity INTEGER DEFAULT 1,
		gross_cents INTEGER DEFAULT 0,
		checked_in INTEGER DEFAULT 0,
		created TEXT,
		PRIMARY KEY (event_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_attendees_email ON attendees(email);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createSyncRunsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS sync_runs (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		events INTEGER DEFAULT 0,
		attendees INTEGER DEFAULT 0,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_sync_runs_org ON sync_runs(org_id, started_at);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createCacheEntriesTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cache_entries_expiry ON cache_entries(expires_at);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

// Close closes the database connection gracefully.
func (db *DB) Close() error {
	// Checkpoint WAL before closing
	_, _ = db.ExecContext(context.Background(), "PRAGMA wal_checkpoint(TRUNCATE)")
	return db.DB.Close()
}

// Vacuum performs database maintenance to reclaim space.
func (db *DB) Vacuum() error {
	_, err := db.ExecContext(context.Background(), "VACUUM")
	return err
}
