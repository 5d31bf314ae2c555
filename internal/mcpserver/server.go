// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the task and journal tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/orgservice"
	"github.com/starford/dagaz/internal/tasks"
)

// Server wraps the MCP server with the org-mode tools.
type Server struct {
	mcp      *server.MCPServer
	svc      *orgservice.Service
	sections tasks.SectionMap
	now      func() time.Time
}

// New creates a new MCP server with all tools and resources registered.
func New(svc *orgservice.Service, sections tasks.SectionMap) *Server {
	s := &Server{svc: svc, sections: sections, now: time.Now}

	s.mcp = server.NewMCPServer(
		"Dagaz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks from the outline, optionally filtered by status."),
		mcp.WithString("status", mcp.Description("Optional status filter: TODO or DONE")),
	), s.listTasks)

	s.mcp.AddTool(mcp.NewTool("get_task",
		mcp.WithDescription("Get one task by slug, ticket token, or headline substring."),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("Task slug (e.g. task-gh-28), ticket (e.g. GH-28), or headline text")),
	), s.getTask)

	s.mcp.AddTool(mcp.NewTool("create_task",
		mcp.WithDescription("Create a new task from an org-mode fragment. "+
			"The fragment MUST follow the canonical task format; read it first via "+
			"the get_org_contract tool or the org://task-format resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Org-mode task fragment starting with '** TODO ...'")),
		mcp.WithString("section", mcp.Description("Target section (defaults to the open-task section)")),
	), s.createTask)

	s.mcp.AddTool(mcp.NewTool("update_task",
		mcp.WithDescription("Replace a task with new org-mode content. A changed status keyword "+
			"relocates the task to its section and sets or clears the CLOSED timestamp."),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("Task slug, ticket, or headline text")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Replacement org-mode fragment")),
	), s.updateTask)

	s.mcp.AddTool(mcp.NewTool("preview_task_update",
		mcp.WithDescription("Show the diff an update_task call would apply, without writing."),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("Task slug, ticket, or headline text")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Proposed org-mode fragment")),
	), s.previewTaskUpdate)

	s.mcp.AddTool(mcp.NewTool("move_task",
		mcp.WithDescription("Move a task between sections without changing its content or status."),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("Task slug, ticket, or headline text")),
		mcp.WithString("from_section", mcp.Required(), mcp.Description("Section the task is currently in")),
		mcp.WithString("to_section", mcp.Required(), mcp.Description("Destination section")),
	), s.moveTask)

	s.mcp.AddTool(mcp.NewTool("search_tasks",
		mcp.WithDescription("Full-text search through task headlines and bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchTasks)

	s.registerJournalTools()

	s.mcp.AddTool(mcp.NewTool("get_org_contract",
		mcp.WithDescription("Returns the canonical org-mode task and journal format contract. "+
			"Call this before creating or updating tasks or journal entries."),
	), s.getOrgContract)

	s.registerResources()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := ""
	if v, err := req.RequireString("status"); err == nil {
		status = v
	}
	items, err := s.svc.ListTasks(ctx, status)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	header := "All Tasks"
	if status != "" {
		header = s.sections.SectionFor(models.Status(status))
	}
	return mcp.NewToolResultText(formatTaskList(items, header)), nil
}

func (s *Server) getTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := req.RequireString("identifier")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	task, err := s.svc.GetTask(ctx, identifier)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(task.Text), nil
}

func (s *Server) createTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	section := s.sections.Open
	if v, err := req.RequireString("section"); err == nil && v != "" {
		section = v
	}
	change, err := s.svc.CreateTask(ctx, section, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatTaskCreate(change)), nil
}

func (s *Server) updateTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := req.RequireString("identifier")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	change, err := s.svc.UpdateTask(ctx, identifier, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatTaskUpdate(change)), nil
}

func (s *Server) previewTaskUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := req.RequireString("identifier")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	diff, err := s.svc.PreviewUpdate(ctx, identifier, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatTaskPreview(diff)), nil
}

func (s *Server) moveTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := req.RequireString("identifier")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	from, err := req.RequireString("from_section")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := req.RequireString("to_section")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	change, err := s.svc.MoveTask(ctx, identifier, from, to)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatTaskMove(change)), nil
}

func (s *Server) searchTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.SearchTasks(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getOrgContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(OrgFormatContract), nil
}
