// Package store persists pipeline runs and LLM request events in a local
// SQLite database.
package store

import (
	"database/sql"
	"fmt"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store wraps the database handle and exposes repositories.
type Store struct {
	db *sql.DB
}

// Open creates a Store connected to the SQLite database at dsn, applying
// recommended pragmas and running migration.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// EventRepo returns the LLM event repository.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db}
}

// RunRepo returns the pipeline run repository.
func (s *Store) RunRepo() RunRepo {
	return &runRepo{db: s.db}
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func migrate(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS llm_request_events (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp     TEXT    NOT NULL,
	provider      TEXT    NOT NULL,
	model         TEXT    NOT NULL,
	purpose       TEXT    NOT NULL,
	input_tokens  INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	latency_ms    INTEGER NOT NULL DEFAULT 0,
	success       INTEGER NOT NULL,
	error_message TEXT    NOT NULL DEFAULT '',
	request_body  TEXT    NOT NULL DEFAULT '',
	response_body TEXT    NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS runs (
	id                  TEXT PRIMARY KEY,
	timestamp           TEXT    NOT NULL,
	note_sha256         TEXT    NOT NULL,
	source_label        TEXT    NOT NULL,
	difficulty          TEXT    NOT NULL DEFAULT '',
	derived_codes       TEXT    NOT NULL DEFAULT '[]',
	needs_manual_review INTEGER NOT NULL DEFAULT 0,
	corrections         INTEGER NOT NULL DEFAULT 0,
	warnings            TEXT    NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_llm_events_purpose ON llm_request_events (purpose);
CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs (timestamp);
`
	_, err := db.Exec(schema)
	return err
}
