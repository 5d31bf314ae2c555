// Package index provides SQLite-backed search over tasks and journal
// entries, with optional FTS5 full-text search.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS files (
	path       TEXT PRIMARY KEY,
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
	id       TEXT PRIMARY KEY,
	slug     TEXT NOT NULL DEFAULT '',
	ticket   TEXT NOT NULL DEFAULT '',
	status   TEXT NOT NULL DEFAULT '',
	section  TEXT NOT NULL DEFAULT '',
	headline TEXT NOT NULL DEFAULT '',
	body     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_tasks_slug ON tasks(slug);
CREATE INDEX IF NOT EXISTS idx_tasks_ticket ON tasks(ticket);

CREATE TABLE IF NOT EXISTS journal_entries (
	day      TEXT NOT NULL,
	time     TEXT NOT NULL,
	pos      INTEGER NOT NULL,
	ticket   TEXT NOT NULL DEFAULT '',
	headline TEXT NOT NULL DEFAULT '',
	tags     TEXT NOT NULL DEFAULT '',
	body     TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (day, pos)
);

CREATE INDEX IF NOT EXISTS idx_journal_day ON journal_entries(day);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
