package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/dagaz/internal/orgservice"
	"github.com/starford/dagaz/internal/storage"
	"github.com/starford/dagaz/internal/testutil"
)

func testServer(t *testing.T) (*Server, storage.Provider) {
	t.Helper()

	_, store := testutil.TestOrg(t)
	db := testutil.TestDB(t)

	svc := orgservice.NewService(orgservice.Options{
		Store:     store,
		DB:        db,
		Sections:  testutil.Sections,
		TasksFile: "tasks.org",
		Naming:    storage.JournalNaming{Dir: "journal"},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	svc.Mutator().Now = func() time.Time {
		return time.Date(2025, 8, 28, 14, 30, 0, 0, time.UTC)
	}
	svc.Mutator().NewID = func() string { return "FIXED-ID" }

	srv := New(svc, testutil.Sections)
	srv.now = func() time.Time {
		return time.Date(2025, 8, 28, 14, 30, 0, 0, time.UTC)
	}
	return srv, store
}

func seedTasks(t *testing.T, store storage.Provider) {
	t.Helper()
	text := testutil.TasksFile(
		[]string{testutil.Task("TODO", "GH-28 Add rate limiting", "task-gh-28", "Limit requests.")},
		[]string{testutil.Task("DONE", "GH-12 Fix the login flow", "task-gh-12", "")},
		nil,
	)
	if err := store.Write("tasks.org", []byte(text)); err != nil {
		t.Fatal(err)
	}
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_tasks":
		result, err = srv.listTasks(ctx, req)
	case "get_task":
		result, err = srv.getTask(ctx, req)
	case "create_task":
		result, err = srv.createTask(ctx, req)
	case "update_task":
		result, err = srv.updateTask(ctx, req)
	case "preview_task_update":
		result, err = srv.previewTaskUpdate(ctx, req)
	case "move_task":
		result, err = srv.moveTask(ctx, req)
	case "get_org_contract":
		result, err = srv.getOrgContract(ctx, req)
	case "list_journal_entries":
		result, err = srv.listJournalEntries(ctx, req)
	case "get_journal_entry":
		result, err = srv.getJournalEntry(ctx, req)
	case "create_journal_entry":
		result, err = srv.createJournalEntry(ctx, req)
	case "update_journal_entry":
		result, err = srv.updateJournalEntry(ctx, req)
	case "preview_journal_update":
		result, err = srv.previewJournalUpdate(ctx, req)
	case "search_journal":
		result, err = srv.searchJournal(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListTasksTool(t *testing.T) {
	srv, store := testServer(t)
	seedTasks(t, store)

	r := callTool(t, srv, "list_tasks", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "TODO  [GH-28] GH-28 Add rate limiting (#task-gh-28)") {
		t.Errorf("list output:\n%s", text)
	}
	if !strings.Contains(text, "All Tasks") {
		t.Errorf("missing header:\n%s", text)
	}

	r = callTool(t, srv, "list_tasks", map[string]interface{}{"status": "DONE"})
	text = resultText(r)
	if !strings.HasPrefix(text, "Completed Tasks\n") {
		t.Errorf("filtered header:\n%s", text)
	}
	if strings.Contains(text, "GH-28") {
		t.Errorf("filter leaked open task:\n%s", text)
	}
}

func TestGetTaskTool(t *testing.T) {
	srv, store := testServer(t)
	seedTasks(t, store)

	r := callTool(t, srv, "get_task", map[string]interface{}{"identifier": "GH-28"})
	if !strings.HasPrefix(resultText(r), "** TODO GH-28 Add rate limiting") {
		t.Errorf("get_task = %q", resultText(r))
	}

	r = callTool(t, srv, "get_task", map[string]interface{}{"identifier": "nope"})
	if !r.IsError {
		t.Error("expected error for missing task")
	}
}

func TestCreateTaskTool(t *testing.T) {
	srv, store := testServer(t)
	seedTasks(t, store)

	r := callTool(t, srv, "create_task", map[string]interface{}{
		"content": "** TODO GH-99 Ship the feature",
	})
	text := resultText(r)
	if !strings.HasPrefix(text, "✓ Task Created in Tasks") {
		t.Errorf("create result:\n%s", text)
	}
	if !strings.Contains(text, "** TODO GH-99 Ship the feature") {
		t.Errorf("create result missing task text:\n%s", text)
	}
}

func TestUpdateTaskToolMove(t *testing.T) {
	srv, store := testServer(t)
	seedTasks(t, store)

	r := callTool(t, srv, "update_task", map[string]interface{}{
		"identifier": "task-gh-28",
		"content":    "** DONE GH-28 Add rate limiting",
	})
	text := resultText(r)
	if !strings.HasPrefix(text, "✓ Task Updated and Moved: Tasks → Completed Tasks") {
		t.Errorf("update result:\n%s", text)
	}
	if !strings.Contains(text, "Changes:") || !strings.Contains(text, "Final:") {
		t.Errorf("update result missing sections:\n%s", text)
	}
}

func TestPreviewTaskUpdateToolDoesNotWrite(t *testing.T) {
	srv, store := testServer(t)
	seedTasks(t, store)

	before, _ := store.Read("tasks.org")
	r := callTool(t, srv, "preview_task_update", map[string]interface{}{
		"identifier": "task-gh-28",
		"content":    "** DONE GH-28 Add rate limiting",
	})
	text := resultText(r)
	if !strings.HasPrefix(text, "Preview: proposed task changes") {
		t.Errorf("preview result:\n%s", text)
	}
	after, _ := store.Read("tasks.org")
	if string(before) != string(after) {
		t.Error("preview wrote to disk")
	}
}

func TestMoveTaskTool(t *testing.T) {
	srv, store := testServer(t)
	seedTasks(t, store)

	r := callTool(t, srv, "move_task", map[string]interface{}{
		"identifier":   "task-gh-28",
		"from_section": "Tasks",
		"to_section":   "Completed Tasks",
	})
	text := resultText(r)
	if !strings.HasPrefix(text, "✓ Task Moved: Tasks → Completed Tasks") {
		t.Errorf("move result:\n%s", text)
	}
}

func TestJournalTools(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_journal_entry", map[string]interface{}{
		"headline": "Reviewed the fix",
		"time":     "09:15",
		"ticket":   "GH-28",
		"tags":     "review, pr",
		"details":  "- left comments",
	})
	text := resultText(r)
	if !strings.HasPrefix(text, "✓ Journal Entry Created for 2025-08-28") {
		t.Errorf("create result:\n%s", text)
	}
	if !strings.Contains(text, "** 09:15 GH-28 Reviewed the fix :review:pr:") {
		t.Errorf("entry text:\n%s", text)
	}

	r = callTool(t, srv, "list_journal_entries", map[string]interface{}{})
	if !strings.Contains(resultText(r), "Reviewed the fix") {
		t.Errorf("list result:\n%s", resultText(r))
	}

	r = callTool(t, srv, "get_journal_entry", map[string]interface{}{"identifier": "09:15"})
	if !strings.HasPrefix(resultText(r), "** 09:15") {
		t.Errorf("get result:\n%s", resultText(r))
	}

	r = callTool(t, srv, "update_journal_entry", map[string]interface{}{
		"identifier": "09:15",
		"headline":   "Reviewed the fix thoroughly",
	})
	text = resultText(r)
	if !strings.HasPrefix(text, "✓ Journal Entry Updated for 2025-08-28") {
		t.Errorf("update result:\n%s", text)
	}

	r = callTool(t, srv, "update_journal_entry", map[string]interface{}{
		"identifier": "09:15",
		"link":       "https://github.com/pr/28",
		"link_text":  "the PR",
	})
	if !strings.Contains(resultText(r), "[[https://github.com/pr/28][the PR]]") {
		t.Errorf("link not applied:\n%s", resultText(r))
	}

	r = callTool(t, srv, "search_journal", map[string]interface{}{"query": "thoroughly"})
	text = resultText(r)
	if !strings.Contains(text, "2025-08-28 (headline)") {
		t.Errorf("search result:\n%s", text)
	}
}

func TestListJournalEntriesEmptyDay(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "list_journal_entries", map[string]interface{}{"date": "2025-01-01"})
	if resultText(r) != "No entries for 2025-01-01" && !r.IsError {
		t.Errorf("empty day result: %q (IsError=%v)", resultText(r), r.IsError)
	}
}

func TestGetOrgContractTool(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_org_contract", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, ":PROPERTIES:") || !strings.Contains(text, "## Journal entry format") {
		t.Errorf("contract missing expected sections:\n%s", text)
	}
}
