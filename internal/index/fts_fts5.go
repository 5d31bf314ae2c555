//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
			kind UNINDEXED,
			ref UNINDEXED,
			headline,
			body,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(tx *sql.Tx, kind, ref, headline, body string, tags []string) error {
	_, err := tx.Exec(`INSERT INTO entries_fts (kind, ref, headline, body, tags) VALUES (?, ?, ?, ?, ?)`,
		kind, ref, headline, body, strings.Join(tags, " "))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDeleteKind(tx *sql.Tx, kind string) {
	_, _ = tx.Exec(`DELETE FROM entries_fts WHERE kind = ?`, kind)
}

func ftsDeleteRefPrefix(tx *sql.Tx, kind, prefix string) {
	_, _ = tx.Exec(`DELETE FROM entries_fts WHERE kind = ? AND ref LIKE ?`, kind, prefix+"%")
}

// Search performs an FTS5 full-text search across the given kind ("task",
// "journal", or empty for both) and returns matches with snippets.
func (db *DB) Search(kind, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `
		SELECT kind,
		       ref,
		       headline,
		       snippet(entries_fts, 3, '<b>', '</b>', '...', 64)
		FROM entries_fts
		WHERE entries_fts MATCH ?`
	args := []any{query}
	if kind != "" {
		q += ` AND kind = ?`
		args = append(args, kind)
	}
	q += ` ORDER BY rank LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Kind, &r.Ref, &r.Headline, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
