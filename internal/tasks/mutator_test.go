package tasks_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/outline"
	"github.com/starford/dagaz/internal/tasks"
	"github.com/starford/dagaz/internal/testutil"
)

var testNow = time.Date(2025, 8, 28, 14, 30, 0, 0, time.UTC)

func testMutator() *tasks.Mutator {
	m := tasks.NewMutator(testutil.Sections)
	m.Now = func() time.Time { return testNow }
	m.NewID = func() string { return "FIXED-ID" }
	return m
}

func parseFixture(t *testing.T) *models.Document {
	t.Helper()
	text := testutil.TasksFile(
		[]string{
			testutil.Task("TODO", "GH-28 Add rate limiting", "task-gh-28", "Limit requests.",
				testutil.ChecklistItem{Done: true, Text: "Pick an algorithm"},
				testutil.ChecklistItem{Text: "Wire the middleware"}),
		},
		[]string{
			testutil.Task("DONE", "GH-12 Fix the login flow", "task-gh-12", ""),
		},
		[]testutil.ChecklistItem{
			{Text: "Add rate limiting"},
			{Done: true, Text: "Fix the login flow"},
		},
	)
	doc, err := outline.Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func TestCreateStampsIdentityAndTimestamps(t *testing.T) {
	m := testMutator()
	doc := parseFixture(t)

	entry, err := m.Create(doc, "Tasks", "** TODO GH-99 Ship the feature")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if entry.Prop(models.PropID) != "FIXED-ID" {
		t.Errorf("ID = %q", entry.Prop(models.PropID))
	}
	if entry.Slug() != "task-gh-99" {
		t.Errorf("Slug() = %q, want task-gh-99", entry.Slug())
	}
	if got := entry.Prop(models.PropCreated); got != "<2025-08-28 Thu 14:30>" {
		t.Errorf("CREATED = %q", got)
	}
	if got := entry.Prop(models.PropModified); got != "[2025-08-28 Thu 14:30]" {
		t.Errorf("MODIFIED = %q", got)
	}
	if entry.HasProp(models.PropClosed) {
		t.Error("open task should not carry CLOSED")
	}

	sec := doc.Section("Tasks")
	if sec.Entries[len(sec.Entries)-1] != entry {
		t.Error("new entry not appended to section")
	}
}

func TestCreateWithoutStatusDefaultsToOpen(t *testing.T) {
	m := testMutator()
	doc := parseFixture(t)

	frag := strings.Join([]string{
		"** Investigate flaky build",
		":PROPERTIES:",
		":CUSTOM_ID: task-flaky",
		":END:",
	}, "\n")
	entry, err := m.Create(doc, "Tasks", frag)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if entry.Status != models.StatusOpen {
		t.Errorf("Status = %q, want TODO", entry.Status)
	}
	// The drawer must be recognized even though the fragment had no keyword.
	if entry.Slug() != "task-flaky" {
		t.Errorf("Slug() = %q, want task-flaky", entry.Slug())
	}
}

func TestCreateSlugFromHeadline(t *testing.T) {
	m := testMutator()
	doc := parseFixture(t)

	entry, err := m.Create(doc, "Tasks", "** TODO Refactor the config loader!")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if entry.Slug() != "task-refactor-the-config-loader" {
		t.Errorf("Slug() = %q", entry.Slug())
	}
}

func TestCreateUniquifiesDerivedSlug(t *testing.T) {
	m := testMutator()
	doc := parseFixture(t)

	first, err := m.Create(doc, "Tasks", "** TODO Tidy docs")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := m.Create(doc, "Tasks", "** TODO Tidy docs")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if first.Slug() != "task-tidy-docs" || second.Slug() != "task-tidy-docs-2" {
		t.Errorf("slugs = %q, %q", first.Slug(), second.Slug())
	}
}

func TestCreateDuplicateExplicitSlug(t *testing.T) {
	m := testMutator()
	doc := parseFixture(t)

	frag := testutil.Task("TODO", "Another task", "task-gh-28", "")
	_, err := m.Create(doc, "Tasks", frag)
	if !errors.Is(err, apperr.ErrDuplicateSlug) {
		t.Errorf("Create() error = %v, want ErrDuplicateSlug", err)
	}
}

func TestCreateClosedStampsClosed(t *testing.T) {
	m := testMutator()
	doc := parseFixture(t)

	entry, err := m.Create(doc, "Completed Tasks", "** DONE Imported finished item")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got := entry.Prop(models.PropClosed); got != "<2025-08-28 Thu 14:30>" {
		t.Errorf("CLOSED = %q", got)
	}
}

func TestCreateUnknownSection(t *testing.T) {
	m := testMutator()
	doc := parseFixture(t)
	if _, err := m.Create(doc, "Backlog", "** TODO X"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Create() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateSameStatusKeepsPosition(t *testing.T) {
	m := testMutator()
	doc := parseFixture(t)

	res, err := m.Update(doc, "task-gh-28", "** TODO GH-28 Add rate limiting everywhere")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if res.Moved {
		t.Error("same-status update reported Moved")
	}
	if res.FromSection != "Tasks" || res.ToSection != "Tasks" {
		t.Errorf("sections = %q → %q", res.FromSection, res.ToSection)
	}
	if res.New.Slug() != "task-gh-28" {
		t.Errorf("slug not carried over: %q", res.New.Slug())
	}
	sec := doc.Section("Tasks")
	if sec.Entries[0] != res.New {
		t.Error("updated entry lost its position")
	}
}

func TestUpdateCompletionRelocatesAndStampsClosed(t *testing.T) {
	m := testMutator()
	doc := parseFixture(t)

	res, err := m.Update(doc, "task-gh-28", "** DONE GH-28 Add rate limiting")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !res.Moved || res.ToSection != "Completed Tasks" {
		t.Errorf("Moved=%v ToSection=%q", res.Moved, res.ToSection)
	}
	if got := res.New.Prop(models.PropClosed); got != "<2025-08-28 Thu 14:30>" {
		t.Errorf("CLOSED = %q", got)
	}

	open := doc.Section("Tasks")
	if len(open.Entries) != 0 {
		t.Errorf("open section still has %d entries", len(open.Entries))
	}
	closed := doc.Section("Completed Tasks")
	if closed.Entries[len(closed.Entries)-1] != res.New {
		t.Error("closed entry not appended to target section")
	}

	// Summary checklist follows the status change.
	items := doc.Section("High Level Tasks").Checklist.Items
	for _, it := range items {
		if !it.Done {
			t.Errorf("summary item %q still open after completion", it.Text)
		}
	}
}

func TestUpdateReopenClearsClosed(t *testing.T) {
	m := testMutator()
	doc := parseFixture(t)

	res, err := m.Update(doc, "task-gh-12", "** TODO GH-12 Fix the login flow")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if res.New.HasProp(models.PropClosed) {
		t.Error("reopened entry still carries CLOSED")
	}
	if res.ToSection != "Tasks" {
		t.Errorf("ToSection = %q, want Tasks", res.ToSection)
	}
}

func TestUpdateAdvancesModified(t *testing.T) {
	m := testMutator()
	doc := parseFixture(t)

	// Fragment identical in every visible field, carrying a stale stamp.
	frag := strings.Join([]string{
		"** DONE GH-12 Fix the login flow",
		":PROPERTIES:",
		":CUSTOM_ID: task-gh-12",
		":MODIFIED: [2024-01-01 Mon 09:00]",
		":END:",
	}, "\n")
	res, err := m.Update(doc, "task-gh-12", frag)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if res.Moved {
		t.Error("no-change update reported Moved")
	}
	if got := res.New.Prop(models.PropModified); got != "[2025-08-28 Thu 14:30]" {
		t.Errorf("MODIFIED = %q, want [2025-08-28 Thu 14:30]", got)
	}
}

func TestCreateRecomputesChecklistCookie(t *testing.T) {
	m := testMutator()
	doc := parseFixture(t)

	// The supplied cookie is wrong on purpose; the counter is derived.
	frag := strings.Join([]string{
		"** TODO GH-77 Harden the importer",
		"*** Task items [0/9]",
		"- [X] Validate input",
		"- [X] Reject bad rows",
		"- [ ] Add metrics",
	}, "\n")
	entry, err := m.Create(doc, "Tasks", frag)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if done, total := entry.Checklist().Progress(); done != 2 || total != 3 {
		t.Errorf("Progress() = %d/%d, want 2/3", done, total)
	}

	rendered := outline.Render(doc)
	if !strings.Contains(rendered, "*** Task items [2/3]") {
		t.Errorf("cookie not recomputed:\n%s", rendered)
	}
	if strings.Contains(rendered, "[0/9]") {
		t.Error("caller-supplied cookie survived serialization")
	}
}

func TestUpdateWithoutStatusRejected(t *testing.T) {
	m := testMutator()
	doc := parseFixture(t)
	_, err := m.Update(doc, "task-gh-28", "** Just a headline")
	if !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Errorf("Update() error = %v, want ErrInvalidTransition", err)
	}
}

func TestMoveKeepsStatusAndTimestamps(t *testing.T) {
	m := testMutator()
	doc := parseFixture(t)

	entry, err := m.Move(doc, "task-gh-28", "Tasks", "Completed Tasks")
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if entry.Status != models.StatusOpen {
		t.Errorf("Move changed status to %q", entry.Status)
	}
	if entry.HasProp(models.PropClosed) {
		t.Error("Move stamped CLOSED")
	}
	closed := doc.Section("Completed Tasks")
	if closed.Entries[len(closed.Entries)-1] != entry {
		t.Error("entry not appended to target section")
	}
}

func TestMoveRequiresSourceSection(t *testing.T) {
	m := testMutator()
	doc := parseFixture(t)
	_, err := m.Move(doc, "task-gh-28", "Completed Tasks", "Tasks")
	if !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Errorf("Move() error = %v, want ErrInvalidTransition", err)
	}
}

func TestSynchronizeProjection(t *testing.T) {
	doc := parseFixture(t)
	tasks.Synchronize(doc, testutil.Sections)

	summary := doc.Section("High Level Tasks")
	items := summary.Checklist.Items
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	// Open entries first, then closed; ticket tokens stripped.
	if items[0].Done || items[0].Text != "Add rate limiting" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if !items[1].Done || items[1].Text != "Fix the login flow" {
		t.Errorf("items[1] = %+v", items[1])
	}

	before := outline.Render(doc)
	tasks.Synchronize(doc, testutil.Sections)
	if after := outline.Render(doc); after != before {
		t.Error("Synchronize is not idempotent")
	}
	if !strings.Contains(before, "* High Level Tasks [1/2]") {
		t.Errorf("cookie not recomputed:\n%s", before)
	}
}

func TestSynchronizeWithoutChecklistSection(t *testing.T) {
	text := "* Tasks\n\n" + testutil.Task("TODO", "Solo task", "task-solo", "")
	doc, err := outline.Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	tasks.Synchronize(doc, testutil.Sections)
	if doc.Section("High Level Tasks") != nil {
		t.Error("Synchronize invented a checklist section")
	}
}
