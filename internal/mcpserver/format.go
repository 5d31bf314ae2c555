package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/dagaz/internal/orgservice"
)

// Plain-text result formatting for tool output. MCP clients show these
// blocks verbatim, so the shapes stay stable.

func formatTaskCreate(change *orgservice.TaskChange) string {
	return strings.Join([]string{
		fmt.Sprintf("✓ Task Created in %s", change.ToSection),
		"",
		change.Task.Text,
	}, "\n")
}

func formatTaskUpdate(change *orgservice.TaskChange) string {
	var lines []string
	if change.Moved {
		lines = append(lines, fmt.Sprintf("✓ Task Updated and Moved: %s → %s", change.FromSection, change.ToSection))
	} else {
		lines = append(lines, fmt.Sprintf("✓ Task Updated in %s", change.ToSection))
	}
	lines = append(lines,
		"",
		"Changes:",
		change.Diff,
		"",
		"Final:",
		change.Task.Text,
	)
	return strings.Join(lines, "\n")
}

func formatTaskMove(change *orgservice.TaskChange) string {
	return fmt.Sprintf("✓ Task Moved: %s → %s\n  %s",
		change.FromSection, change.ToSection, change.Task.Headline)
}

func formatTaskPreview(diff string) string {
	return strings.Join([]string{
		"Preview: proposed task changes",
		"",
		"Proposed changes:",
		diff,
	}, "\n")
}

func formatTaskList(tasks []*orgservice.TaskDetail, header string) string {
	if len(tasks) == 0 {
		return fmt.Sprintf("No tasks in %s", header)
	}
	lines := []string{header, strings.Repeat("=", len(header)), ""}
	for _, t := range tasks {
		ticket := ""
		if t.Ticket != "" {
			ticket = fmt.Sprintf("[%s] ", t.Ticket)
		}
		slug := ""
		if t.Slug != "" {
			slug = fmt.Sprintf(" (#%s)", t.Slug)
		}
		lines = append(lines, fmt.Sprintf("  %s  %s%s%s", t.Status, ticket, t.Headline, slug))
	}
	return strings.Join(lines, "\n")
}

func formatJournalCreate(date string, change *orgservice.JournalChange) string {
	return strings.Join([]string{
		fmt.Sprintf("✓ Journal Entry Created for %s", date),
		"",
		change.Entry.Text,
	}, "\n")
}

func formatJournalUpdate(date string, change *orgservice.JournalChange) string {
	return strings.Join([]string{
		fmt.Sprintf("✓ Journal Entry Updated for %s", date),
		"",
		"Changes:",
		change.Diff,
		"",
		"Final:",
		change.Entry.Text,
	}, "\n")
}

func formatJournalPreview(date, identifier, diff string) string {
	return strings.Join([]string{
		fmt.Sprintf("Preview: Journal entry %s on %s", identifier, date),
		"",
		"Proposed changes:",
		diff,
	}, "\n")
}
