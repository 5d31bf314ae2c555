//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE fallback over the core tables.
	return nil
}

func ftsInsert(_ *sql.Tx, _, _, _, _ string, _ []string) error {
	// Rows are already in the core tables; nothing extra to do.
	return nil
}

func ftsDeleteKind(_ *sql.Tx, _ string)         {}
func ftsDeleteRefPrefix(_ *sql.Tx, _, _ string) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled
// in) across the given kind: "task", "journal", or empty for both.
func (db *DB) Search(kind, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	var out []SearchResult

	if kind == "" || kind == "task" {
		rows, err := db.conn.Query(`
			SELECT slug, headline, substr(body, 1, 200)
			FROM tasks
			WHERE headline LIKE ? OR body LIKE ? OR ticket LIKE ?
			LIMIT ?
		`, like, like, like, limit)
		if err != nil {
			return nil, fmt.Errorf("index: search tasks: %w", err)
		}
		if err := scanHits(rows, "task", &out); err != nil {
			return nil, err
		}
	}

	if kind == "" || kind == "journal" {
		rows, err := db.conn.Query(`
			SELECT day || ' ' || time, headline, substr(body, 1, 200)
			FROM journal_entries
			WHERE headline LIKE ? OR body LIKE ? OR tags LIKE ? OR ticket LIKE ?
			ORDER BY day DESC, pos
			LIMIT ?
		`, like, like, like, like, limit)
		if err != nil {
			return nil, fmt.Errorf("index: search journal: %w", err)
		}
		if err := scanHits(rows, "journal", &out); err != nil {
			return nil, err
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func scanHits(rows *sql.Rows, kind string, out *[]SearchResult) error {
	defer rows.Close()
	for rows.Next() {
		r := SearchResult{Kind: kind}
		if err := rows.Scan(&r.Ref, &r.Headline, &r.Snippet); err != nil {
			return err
		}
		*out = append(*out, r)
	}
	return rows.Err()
}
