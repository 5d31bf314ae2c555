package index_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/dagaz/internal/index"
	"github.com/starford/dagaz/internal/testutil"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func removeOrgFile(orgDir, rel string) error {
	return os.Remove(filepath.Join(orgDir, rel))
}

func TestWatchMissingRoot(t *testing.T) {
	db := testutil.TestDB(t)
	_, store := testutil.TestOrg(t)

	root := filepath.Join(t.TempDir(), "missing")
	src := index.Source{TasksFile: "tasks.org", JournalDir: "journal"}
	if err := index.Watch(context.Background(), db, store, root, src, discard(), nil); err == nil {
		t.Fatal("Watch() accepted a missing root")
	}
}

func TestReplaceAndListTasks(t *testing.T) {
	db := testutil.TestDB(t)

	rows := []index.TaskRow{
		{ID: "A", Slug: "task-gh-28", Ticket: "GH-28", Status: "TODO", Section: "Tasks", Headline: "GH-28 Add rate limiting", Body: "** TODO GH-28 Add rate limiting"},
		{ID: "B", Slug: "task-gh-12", Ticket: "GH-12", Status: "DONE", Section: "Completed Tasks", Headline: "GH-12 Fix the login flow", Body: "** DONE GH-12 Fix the login flow"},
	}
	if err := db.ReplaceTasks("tasks.org", "cs1", rows); err != nil {
		t.Fatalf("ReplaceTasks() error = %v", err)
	}

	all, err := db.ListTasks("")
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListTasks() = %d rows, want 2", len(all))
	}

	open, err := db.ListTasks("TODO")
	if err != nil {
		t.Fatalf("ListTasks(TODO) error = %v", err)
	}
	if len(open) != 1 || open[0].Slug != "task-gh-28" {
		t.Errorf("ListTasks(TODO) = %+v", open)
	}

	// Replacement fully swaps the rows.
	if err := db.ReplaceTasks("tasks.org", "cs2", rows[:1]); err != nil {
		t.Fatalf("ReplaceTasks() error = %v", err)
	}
	all, _ = db.ListTasks("")
	if len(all) != 1 {
		t.Errorf("after replace: %d rows, want 1", len(all))
	}
}

func TestReplaceDayIsScoped(t *testing.T) {
	db := testutil.TestDB(t)

	day1 := []index.JournalRow{
		{Day: "2025-08-27", Time: "09:00", Pos: 0, Headline: "Planning"},
	}
	day2 := []index.JournalRow{
		{Day: "2025-08-28", Time: "10:00", Pos: 0, Headline: "Standup", Tags: []string{"meeting"}},
		{Day: "2025-08-28", Time: "14:30", Pos: 1, Headline: "Debugging", Body: "- cache key"},
	}
	if err := db.ReplaceDay("journal/20250827.org", "c1", "2025-08-27", day1); err != nil {
		t.Fatalf("ReplaceDay() error = %v", err)
	}
	if err := db.ReplaceDay("journal/20250828.org", "c2", "2025-08-28", day2); err != nil {
		t.Fatalf("ReplaceDay() error = %v", err)
	}

	// Re-indexing one day must not disturb the other.
	if err := db.ReplaceDay("journal/20250828.org", "c3", "2025-08-28", day2[:1]); err != nil {
		t.Fatalf("ReplaceDay() error = %v", err)
	}
	hits, err := db.Search("journal", "Planning", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("Planning hits = %d, want 1", len(hits))
	}
	hits, err = db.Search("journal", "Debugging", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Debugging hits = %d, want 0 after re-index", len(hits))
	}
}

func TestChecksumsAndDelete(t *testing.T) {
	db := testutil.TestDB(t)

	if err := db.ReplaceTasks("tasks.org", "cs-tasks", nil); err != nil {
		t.Fatal(err)
	}
	if err := db.ReplaceDay("journal/20250828.org", "cs-day", "2025-08-28", []index.JournalRow{
		{Day: "2025-08-28", Time: "10:00", Pos: 0, Headline: "Standup"},
	}); err != nil {
		t.Fatal(err)
	}

	cs, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums() error = %v", err)
	}
	if cs["tasks.org"] != "cs-tasks" || cs["journal/20250828.org"] != "cs-day" {
		t.Errorf("AllChecksums() = %v", cs)
	}

	if err := db.DeleteFile("journal/20250828.org", "2025-08-28"); err != nil {
		t.Fatalf("DeleteFile() error = %v", err)
	}
	cs, _ = db.AllChecksums()
	if _, ok := cs["journal/20250828.org"]; ok {
		t.Error("checksum row survived DeleteFile")
	}
	hits, err := db.Search("journal", "Standup", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("entries survived DeleteFile: %+v", hits)
	}
}

func TestSearchTasks(t *testing.T) {
	db := testutil.TestDB(t)
	rows := []index.TaskRow{
		{ID: "A", Slug: "task-gh-28", Ticket: "GH-28", Status: "TODO", Section: "Tasks", Headline: "GH-28 Add rate limiting", Body: "Limit requests per client."},
		{ID: "B", Slug: "task-logging", Status: "TODO", Section: "Tasks", Headline: "Improve logging", Body: ""},
	}
	if err := db.ReplaceTasks("tasks.org", "cs", rows); err != nil {
		t.Fatal(err)
	}

	hits, err := db.Search("task", "rate", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("Search() = %d hits, want 1", len(hits))
	}
	if hits[0].Kind != "task" || hits[0].Ref != "task-gh-28" {
		t.Errorf("hit = %+v", hits[0])
	}

	hits, err = db.Search("task", "zzz-nothing", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Search() = %+v, want none", hits)
	}
}

func TestSearchLimit(t *testing.T) {
	db := testutil.TestDB(t)
	rows := make([]index.JournalRow, 5)
	for i := range rows {
		rows[i] = index.JournalRow{Day: "2025-08-28", Time: "10:00", Pos: i, Headline: "repeated headline"}
	}
	if err := db.ReplaceDay("journal/20250828.org", "cs", "2025-08-28", rows); err != nil {
		t.Fatal(err)
	}
	hits, err := db.Search("journal", "repeated", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("Search() = %d hits, want 3", len(hits))
	}
}

func TestSyncIndexesAndPrunes(t *testing.T) {
	db := testutil.TestDB(t)
	orgDir, store := testutil.TestOrg(t)
	src := index.Source{TasksFile: "tasks.org", JournalDir: "journal"}

	tasksText := testutil.TasksFile(
		[]string{testutil.Task("TODO", "GH-28 Add rate limiting", "task-gh-28", "Limit requests.")},
		nil, nil,
	)
	if err := store.Write("tasks.org", []byte(tasksText)); err != nil {
		t.Fatal(err)
	}
	dayText := testutil.JournalFile("2025-08-28",
		testutil.JournalEntry("10:00", "Standup", []string{"meeting"}))
	if err := store.Write("journal/20250828.org", []byte(dayText)); err != nil {
		t.Fatal(err)
	}
	// Non-day files in the journal directory are ignored.
	if err := store.Write("journal/notes.org", []byte("scratch\n")); err != nil {
		t.Fatal(err)
	}

	if err := index.Sync(db, store, src, discard()); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	tasksRows, err := db.ListTasks("")
	if err != nil {
		t.Fatal(err)
	}
	if len(tasksRows) != 1 || tasksRows[0].Slug != "task-gh-28" {
		t.Errorf("ListTasks() = %+v", tasksRows)
	}
	hits, err := db.Search("journal", "Standup", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("journal hits = %d, want 1", len(hits))
	}
	cs, _ := db.AllChecksums()
	if _, ok := cs["journal/notes.org"]; ok {
		t.Error("non-day file was indexed")
	}

	// A second sync with no changes is a no-op; a removed day file is pruned.
	if err := index.Sync(db, store, src, discard()); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if err := removeOrgFile(orgDir, "journal/20250828.org"); err != nil {
		t.Fatal(err)
	}
	if err := index.Sync(db, store, src, discard()); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	hits, err = db.Search("journal", "Standup", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("stale journal entries survived prune: %+v", hits)
	}
}
