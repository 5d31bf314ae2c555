package journal

import (
	"strings"
	"time"

	"github.com/starford/dagaz/internal/models"
)

// NewDay creates an empty journal file for the given date.
func NewDay(date time.Time) *models.JournalFile {
	return &models.JournalFile{
		Date:     date,
		Preamble: []string{""},
	}
}

// Render serializes a journal file back to text. Untouched entries emit
// their original lines; new or modified entries are re-rendered with a
// blank separator line when another entry follows.
func Render(f *models.JournalFile) string {
	var lines []string
	if f.RawHeading != "" {
		lines = append(lines, f.RawHeading)
	} else {
		lines = append(lines, "* "+f.Date.Format(dateLayout))
	}
	lines = append(lines, f.Preamble...)

	for i, e := range f.Entries {
		lines = append(lines, entryLines(e)...)
		if e.Raw == nil && i < len(f.Entries)-1 {
			lines = append(lines, "")
		}
	}
	return strings.Join(lines, "\n")
}

func entryLines(e *models.JournalEntry) []string {
	if e.Raw != nil {
		return e.Raw
	}
	lines := []string{headingLine(e)}
	lines = append(lines, e.Details...)
	return lines
}

func headingLine(e *models.JournalEntry) string {
	var b strings.Builder
	b.WriteString(entryPrefix)
	b.WriteString(e.Time)
	if e.Ticket != "" {
		b.WriteString(" " + e.Ticket)
	}
	if e.Link != "" {
		b.WriteString(" [[" + e.Link)
		if e.LinkText != "" {
			b.WriteString("][" + e.LinkText)
		}
		b.WriteString("]]")
	}
	if e.Headline != "" {
		b.WriteString(" " + e.Headline)
	}
	if len(e.Tags) > 0 {
		b.WriteString(" :" + strings.Join(e.Tags, ":") + ":")
	}
	return b.String()
}

// RenderEntry serializes a single entry to text for tool and API output.
func RenderEntry(e *models.JournalEntry) string {
	return strings.Join(entryLines(e), "\n")
}
