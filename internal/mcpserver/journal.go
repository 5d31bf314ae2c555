package mcpserver

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/dagaz/internal/journal"
	"github.com/starford/dagaz/internal/orgservice"
)

const dayLayout = "2006-01-02"

func (s *Server) registerJournalTools() {
	s.mcp.AddTool(mcp.NewTool("list_journal_entries",
		mcp.WithDescription("List journal entries for a date (defaults to today)."),
		mcp.WithString("date", mcp.Description("Date in YYYY-MM-DD format")),
	), s.listJournalEntries)

	s.mcp.AddTool(mcp.NewTool("get_journal_entry",
		mcp.WithDescription("Get one journal entry by time (HH:MM) or headline substring."),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("Entry time (HH:MM) or headline text")),
		mcp.WithString("date", mcp.Description("Date in YYYY-MM-DD format (defaults to today)")),
	), s.getJournalEntry)

	s.mcp.AddTool(mcp.NewTool("create_journal_entry",
		mcp.WithDescription("Add a timed entry to a day's journal file, creating the file when needed. "+
			"Entries stay sorted by time."),
		mcp.WithString("headline", mcp.Required(), mcp.Description("Entry headline text")),
		mcp.WithString("date", mcp.Description("Date in YYYY-MM-DD format (defaults to today)")),
		mcp.WithString("time", mcp.Description("Entry time HH:MM (defaults to now)")),
		mcp.WithString("ticket", mcp.Description("Optional ticket token, e.g. GH-28")),
		mcp.WithString("link", mcp.Description("Optional reference URL")),
		mcp.WithString("link_text", mcp.Description("Optional link display text")),
		mcp.WithString("tags", mcp.Description("Optional comma-separated tags")),
		mcp.WithString("details", mcp.Description("Optional body text (newline-separated lines)")),
	), s.createJournalEntry)

	s.mcp.AddTool(mcp.NewTool("update_journal_entry",
		mcp.WithDescription("Update fields of an existing journal entry. Only supplied fields change; "+
			"the file is re-sorted only when the time changes."),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("Entry time (HH:MM) or headline text")),
		mcp.WithString("date", mcp.Description("Date in YYYY-MM-DD format (defaults to today)")),
		mcp.WithString("time", mcp.Description("New entry time HH:MM")),
		mcp.WithString("headline", mcp.Description("New headline text")),
		mcp.WithString("ticket", mcp.Description("New ticket token")),
		mcp.WithString("link", mcp.Description("New reference URL")),
		mcp.WithString("link_text", mcp.Description("New link display text")),
		mcp.WithString("tags", mcp.Description("New comma-separated tags")),
		mcp.WithString("details", mcp.Description("New body text (newline-separated lines)")),
	), s.updateJournalEntry)

	s.mcp.AddTool(mcp.NewTool("preview_journal_update",
		mcp.WithDescription("Show the diff an update_journal_entry call would apply, without writing."),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("Entry time (HH:MM) or headline text")),
		mcp.WithString("date", mcp.Description("Date in YYYY-MM-DD format (defaults to today)")),
		mcp.WithString("time", mcp.Description("New entry time HH:MM")),
		mcp.WithString("headline", mcp.Description("New headline text")),
		mcp.WithString("ticket", mcp.Description("New ticket token")),
		mcp.WithString("link", mcp.Description("New reference URL")),
		mcp.WithString("link_text", mcp.Description("New link display text")),
		mcp.WithString("tags", mcp.Description("New comma-separated tags")),
		mcp.WithString("details", mcp.Description("New body text (newline-separated lines)")),
	), s.previewJournalUpdate)

	s.mcp.AddTool(mcp.NewTool("search_journal",
		mcp.WithDescription("Search journal entries across recent days, newest first."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithString("days", mcp.Description("How many recent day files to scan (default 30)")),
	), s.searchJournal)
}

// dateArg reads the optional "date" argument, defaulting to today.
func (s *Server) dateArg(req mcp.CallToolRequest) (time.Time, error) {
	v, err := req.RequireString("date")
	if err != nil || v == "" {
		now := s.now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(dayLayout, v)
}

func (s *Server) listJournalEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := s.dateArg(req)
	if err != nil {
		return mcp.NewToolResultError("invalid date, expected YYYY-MM-DD"), nil
	}
	day, err := s.svc.GetDay(ctx, date)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(day.Entries) == 0 {
		return mcp.NewToolResultText("No entries for " + day.Date), nil
	}
	var lines []string
	for _, e := range day.Entries {
		lines = append(lines, e.Text)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n\n")), nil
}

func (s *Server) getJournalEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := req.RequireString("identifier")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := s.dateArg(req)
	if err != nil {
		return mcp.NewToolResultError("invalid date, expected YYYY-MM-DD"), nil
	}
	day, err := s.svc.GetDay(ctx, date)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	for _, e := range day.Entries {
		if e.Time == identifier || strings.Contains(strings.ToLower(e.Headline), strings.ToLower(identifier)) {
			return mcp.NewToolResultText(e.Text), nil
		}
	}
	return mcp.NewToolResultError("no entry matching " + identifier + " on " + day.Date), nil
}

func (s *Server) createJournalEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	headline, err := req.RequireString("headline")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := s.dateArg(req)
	if err != nil {
		return mcp.NewToolResultError("invalid date, expected YYYY-MM-DD"), nil
	}

	in := orgservice.EntryInput{Headline: headline}
	if v, err := req.RequireString("time"); err == nil {
		in.Time = v
	}
	if v, err := req.RequireString("ticket"); err == nil {
		in.Ticket = v
	}
	if v, err := req.RequireString("link"); err == nil {
		in.Link = v
	}
	if v, err := req.RequireString("link_text"); err == nil {
		in.LinkText = v
	}
	if v, err := req.RequireString("tags"); err == nil && v != "" {
		in.Tags = splitCSV(v)
	}
	if v, err := req.RequireString("details"); err == nil && v != "" {
		in.Details = strings.Split(v, "\n")
	}

	change, err := s.svc.CreateJournalEntry(ctx, date, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatJournalCreate(date.Format(dayLayout), change)), nil
}

// journalFields builds the partial update from optional tool arguments.
func journalFields(req mcp.CallToolRequest) journal.EntryFields {
	var fields journal.EntryFields
	if v, err := req.RequireString("time"); err == nil && v != "" {
		fields.Time = &v
	}
	if v, err := req.RequireString("headline"); err == nil && v != "" {
		fields.Headline = &v
	}
	if v, err := req.RequireString("ticket"); err == nil && v != "" {
		fields.Ticket = &v
	}
	if v, err := req.RequireString("link"); err == nil && v != "" {
		fields.Link = &v
	}
	if v, err := req.RequireString("link_text"); err == nil && v != "" {
		fields.LinkText = &v
	}
	if v, err := req.RequireString("tags"); err == nil && v != "" {
		tags := splitCSV(v)
		fields.Tags = &tags
	}
	if v, err := req.RequireString("details"); err == nil && v != "" {
		details := strings.Split(v, "\n")
		fields.Details = &details
	}
	return fields
}

func (s *Server) updateJournalEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := req.RequireString("identifier")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := s.dateArg(req)
	if err != nil {
		return mcp.NewToolResultError("invalid date, expected YYYY-MM-DD"), nil
	}
	change, err := s.svc.UpdateJournalEntry(ctx, date, identifier, journalFields(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatJournalUpdate(date.Format(dayLayout), change)), nil
}

func (s *Server) previewJournalUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := req.RequireString("identifier")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := s.dateArg(req)
	if err != nil {
		return mcp.NewToolResultError("invalid date, expected YYYY-MM-DD"), nil
	}
	diff, err := s.svc.PreviewJournalUpdate(ctx, date, identifier, journalFields(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatJournalPreview(date.Format(dayLayout), identifier, diff)), nil
}

func (s *Server) searchJournal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	days := 30
	if v, err := req.RequireString("days"); err == nil && v != "" {
		if n, convErr := strconv.Atoi(v); convErr == nil {
			days = n
		}
	}
	matches, err := s.svc.SearchJournal(ctx, query, days)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(matches) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	var lines []string
	for _, m := range matches {
		lines = append(lines, m.Date+" ("+m.Field+")\n"+m.Entry.Text)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n\n")), nil
}

func splitCSV(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
