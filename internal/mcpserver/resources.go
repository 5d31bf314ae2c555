package mcpserver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/dagaz/internal/models"
)

func (s *Server) registerResources() {
	s.mcp.AddResource(
		mcp.NewResource("org://tasks/active", "Active Tasks",
			mcp.WithResourceDescription("Tasks in the open-task section."),
			mcp.WithMIMEType("application/json"),
		),
		s.readTasksResource("org://tasks/active", string(models.StatusOpen)),
	)
	s.mcp.AddResource(
		mcp.NewResource("org://tasks/completed", "Completed Tasks",
			mcp.WithResourceDescription("Tasks in the closed-task section."),
			mcp.WithMIMEType("application/json"),
		),
		s.readTasksResource("org://tasks/completed", string(models.StatusClosed)),
	)
	s.mcp.AddResource(
		mcp.NewResource("org://journal/today", "Today's Journal",
			mcp.WithResourceDescription("Journal entries for today."),
			mcp.WithMIMEType("application/json"),
		),
		s.readTodayResource,
	)
	s.mcp.AddResource(
		mcp.NewResource("org://task-format", "Org Format Contract",
			mcp.WithResourceDescription("Canonical task and journal entry format."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)
}

func (s *Server) readTasksResource(uri, status string) func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		items, err := s.svc.ListTasks(ctx, status)
		if err != nil {
			return nil, err
		}
		out, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(out)},
		}, nil
	}
}

func (s *Server) readTodayResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day, err := s.svc.GetDay(ctx, today)
	if err != nil {
		// A missing day file is an empty journal, not an error.
		day = nil
	}
	var entries any = []any{}
	if day != nil {
		entries = day.Entries
	}
	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: "org://journal/today", MIMEType: "application/json", Text: string(out)},
	}, nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: "org://task-format", MIMEType: "text/markdown", Text: OrgFormatContract},
	}, nil
}
