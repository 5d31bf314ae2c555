package index

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/dagaz/internal/checksum"
	"github.com/starford/dagaz/internal/journal"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/outline"
	"github.com/starford/dagaz/internal/storage"
)

// Source names the indexed files: the task outline and the journal
// directory, both relative to the org root.
type Source struct {
	TasksFile  string
	JournalDir string
}

// Sync brings the index up to date with the org directory:
//   - a changed outline file is re-parsed and its task rows replaced
//   - changed day files are re-parsed and their entries replaced
//   - day files removed from disk are dropped from the index
func Sync(db *DB, store storage.Provider, src Source, logger *slog.Logger) error {
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	if store.Exists(src.TasksFile) {
		if err := syncFile(db, store, checksums, src.TasksFile, IndexTasksFile, logger); err != nil {
			return err
		}
	}

	metas, err := store.List(src.JournalDir)
	if err != nil {
		return err
	}
	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		if dayFromPath(m.Path) == "" {
			continue
		}
		disk[m.Path] = struct{}{}
		if err := syncFile(db, store, checksums, m.Path, IndexDayFile, logger); err != nil {
			logger.Warn("sync: day file failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		}
	}

	// Remove stale day files.
	for p := range checksums {
		day := dayFromPath(p)
		if day == "" {
			continue
		}
		if _, ok := disk[p]; !ok {
			if err := db.DeleteFile(p, day); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

type fileIndexer func(db *DB, path string, data []byte) error

func syncFile(db *DB, store storage.Provider, checksums map[string]string, path string, idx fileIndexer, logger *slog.Logger) error {
	data, err := store.Read(path)
	if err != nil {
		return err
	}
	if checksum.Matches(checksums[path], data) {
		return nil
	}
	if err := idx(db, path, data); err != nil {
		return err
	}
	logger.Debug("sync: indexed", slog.String("path", path))
	return nil
}

// IndexTasksFile parses the outline and replaces the task rows.
func IndexTasksFile(db *DB, path string, data []byte) error {
	doc, err := outline.Parse(string(data))
	if err != nil {
		return err
	}
	var rows []TaskRow
	for _, sec := range doc.Sections {
		for _, e := range sec.Entries {
			if !e.Status.Valid() {
				continue
			}
			rows = append(rows, TaskRow{
				ID:       e.Prop(models.PropID),
				Slug:     e.Slug(),
				Ticket:   e.Ticket(),
				Status:   string(e.Status),
				Section:  sec.Name,
				Headline: e.Headline,
				Body:     outline.RenderEntry(e),
			})
		}
	}
	return db.ReplaceTasks(path, checksum.Sum(data), rows)
}

// IndexDayFile parses a journal day file and replaces its entry rows.
func IndexDayFile(db *DB, path string, data []byte) error {
	f, err := journal.ParseDay(string(data))
	if err != nil {
		return err
	}
	day := f.Date.Format("2006-01-02")
	rows := make([]JournalRow, 0, len(f.Entries))
	for i, e := range f.Entries {
		rows = append(rows, JournalRow{
			Day:      day,
			Time:     e.Time,
			Pos:      i,
			Ticket:   e.Ticket,
			Headline: e.Headline,
			Tags:     e.Tags,
			Body:     strings.Join(e.Details, "\n"),
		})
	}
	return db.ReplaceDay(path, checksum.Sum(data), day, rows)
}

// dayFromPath extracts the YYYY-MM-DD day from a journal file path, or ""
// when the name is not a day file.
func dayFromPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), ".org")
	d, err := time.Parse("20060102", stem)
	if err != nil {
		return ""
	}
	return d.Format("2006-01-02")
}
