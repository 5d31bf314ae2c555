package index

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// TaskRow represents one task heading from the outline file.
type TaskRow struct {
	ID       string
	Slug     string
	Ticket   string
	Status   string
	Section  string
	Headline string
	Body     string
}

// JournalRow represents one timed entry from a day file.
type JournalRow struct {
	Day      string // YYYY-MM-DD
	Time     string // HH:MM
	Pos      int    // position within the day file
	Ticket   string
	Headline string
	Tags     []string
	Body     string
}

// SearchResult represents one search hit.
type SearchResult struct {
	Kind     string // "task" or "journal"
	Ref      string // task slug, or "day HH:MM" for journal entries
	Headline string
	Snippet  string
}

// ReplaceTasks swaps the indexed task rows for the outline file in one
// transaction and records the file checksum.
func (db *DB) ReplaceTasks(path, checksum string, rows []TaskRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, _ = tx.Exec(`DELETE FROM tasks`)
	ftsDeleteKind(tx, "task")

	for _, r := range rows {
		_, err := tx.Exec(`
			INSERT INTO tasks (id, slug, ticket, status, section, headline, body)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, r.ID, r.Slug, r.Ticket, r.Status, r.Section, r.Headline, r.Body)
		if err != nil {
			return fmt.Errorf("index: insert task: %w", err)
		}
		if err := ftsInsert(tx, "task", r.Slug, r.Headline, r.Body, nil); err != nil {
			return err
		}
	}

	if err := upsertFile(tx, path, checksum); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceDay swaps the indexed journal rows for one day file in one
// transaction and records the file checksum.
func (db *DB) ReplaceDay(path, checksum, day string, rows []JournalRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM journal_entries WHERE day = ?`, day)
	ftsDeleteRefPrefix(tx, "journal", day+" ")

	for _, r := range rows {
		_, err := tx.Exec(`
			INSERT INTO journal_entries (day, time, pos, ticket, headline, tags, body)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, r.Day, r.Time, r.Pos, r.Ticket, r.Headline, strings.Join(r.Tags, " "), r.Body)
		if err != nil {
			return fmt.Errorf("index: insert journal entry: %w", err)
		}
		ref := fmt.Sprintf("%s %s/%d", r.Day, r.Time, r.Pos)
		if err := ftsInsert(tx, "journal", ref, r.Headline, r.Body, r.Tags); err != nil {
			return err
		}
	}

	if err := upsertFile(tx, path, checksum); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteFile removes a file's checksum row and, for journal day files, its
// indexed entries.
func (db *DB) DeleteFile(path, day string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if day != "" {
		_, _ = tx.Exec(`DELETE FROM journal_entries WHERE day = ?`, day)
		ftsDeleteRefPrefix(tx, "journal", day+" ")
	}
	_, _ = tx.Exec(`DELETE FROM files WHERE path = ?`, path)
	return tx.Commit()
}

// AllChecksums returns path→checksum for every indexed file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListTasks returns indexed tasks, optionally filtered by status.
func (db *DB) ListTasks(status string) ([]TaskRow, error) {
	q := `SELECT id, slug, ticket, status, section, headline, body FROM tasks`
	var args []any
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("index: list tasks: %w", err)
	}
	defer rows.Close()

	var out []TaskRow
	for rows.Next() {
		var r TaskRow
		if err := rows.Scan(&r.ID, &r.Slug, &r.Ticket, &r.Status, &r.Section, &r.Headline, &r.Body); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func upsertFile(tx *sql.Tx, path, checksum string) error {
	_, err := tx.Exec(`
		INSERT INTO files (path, checksum, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, path, checksum, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}
	return nil
}
