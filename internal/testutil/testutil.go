// Package testutil provides shared test helpers for setting up org
// directories, sample file content, and databases.
package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/starford/dagaz/internal/index"
	"github.com/starford/dagaz/internal/storage"
	"github.com/starford/dagaz/internal/tasks"
)

// Sections is the section layout used across tests.
var Sections = tasks.SectionMap{
	Open:      "Tasks",
	Closed:    "Completed Tasks",
	Checklist: "High Level Tasks",
}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "dagaz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestOrg creates a temporary org directory with a journal subdirectory and
// returns its path with a storage.Provider rooted there.
func TestOrg(t *testing.T) (string, storage.Provider) {
	t.Helper()
	orgDir := t.TempDir()
	if err := os.MkdirAll(orgDir+"/journal", 0o755); err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewFS(orgDir)
	if err != nil {
		t.Fatal(err)
	}
	return orgDir, store
}

// Task builds one org task entry for test fixtures.
func Task(status, headline, slug string, description string, items ...ChecklistItem) string {
	lines := []string{
		fmt.Sprintf("** %s %s", status, headline),
		":PROPERTIES:",
		fmt.Sprintf(":CUSTOM_ID: %s", slug),
		":END:",
	}
	if description != "" {
		lines = append(lines, "*** Description", description)
	}
	if len(items) > 0 {
		done := 0
		for _, it := range items {
			if it.Done {
				done++
			}
		}
		lines = append(lines, fmt.Sprintf("*** Task items [%d/%d]", done, len(items)))
		for _, it := range items {
			marker := "- [ ] "
			if it.Done {
				marker = "- [X] "
			}
			lines = append(lines, marker+it.Text)
		}
	}
	return strings.Join(lines, "\n")
}

// ChecklistItem is one checkbox line for the Task builder.
type ChecklistItem struct {
	Done bool
	Text string
}

// TasksFile assembles a complete outline file from task entries.
func TasksFile(open, closed []string, summary []ChecklistItem) string {
	done := 0
	for _, it := range summary {
		if it.Done {
			done++
		}
	}
	lines := []string{fmt.Sprintf("* %s [%d/%d]", Sections.Checklist, done, len(summary))}
	for _, it := range summary {
		marker := "- [ ] "
		if it.Done {
			marker = "- [X] "
		}
		lines = append(lines, marker+it.Text)
	}
	lines = append(lines, "", "* "+Sections.Open, "")
	for _, task := range open {
		lines = append(lines, task, "")
	}
	lines = append(lines, "* "+Sections.Closed, "")
	for _, task := range closed {
		lines = append(lines, task, "")
	}
	return strings.Join(lines, "\n")
}

// JournalEntry builds one journal entry for test fixtures.
func JournalEntry(hhmm, headline string, tags []string, details ...string) string {
	line := "** " + hhmm + " " + headline
	if len(tags) > 0 {
		line += " :" + strings.Join(tags, ":") + ":"
	}
	lines := append([]string{line}, details...)
	return strings.Join(lines, "\n")
}

// JournalFile assembles a complete day file from entries.
func JournalFile(date string, entries ...string) string {
	lines := []string{"* " + date, ""}
	for _, e := range entries {
		lines = append(lines, e, "")
	}
	return strings.Join(lines, "\n")
}
