// Package store provides SQLite-backed persistence for events and the two
// remote read-through caches (holidays, day info).
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS events (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL DEFAULT '',
	details       TEXT NOT NULL DEFAULT '',
	start         DATETIME NOT NULL,
	end_time      DATETIME,
	color         TEXT NOT NULL DEFAULT 'blue',
	recurrence    TEXT NOT NULL DEFAULT 'none',
	repeat_end    DATETIME,
	exceptions    TEXT NOT NULL DEFAULT '[]',
	notifications INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_events_start ON events(start);

CREATE TABLE IF NOT EXISTS holidays (
	id      TEXT PRIMARY KEY,
	day_key TEXT NOT NULL UNIQUE,
	date    DATETIME NOT NULL,
	title   TEXT NOT NULL DEFAULT '',
	year    INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_holidays_year ON holidays(year);

CREATE TABLE IF NOT EXISTS day_info (
	day_key  TEXT PRIMARY KEY,
	date     DATETIME NOT NULL,
	sunrise  TEXT NOT NULL DEFAULT '',
	sunset   TEXT NOT NULL DEFAULT '',
	temp_min REAL NOT NULL DEFAULT 0,
	temp_max REAL NOT NULL DEFAULT 0
);
`

// DB wraps a sql.DB with calendar-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
