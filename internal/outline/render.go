package outline

import (
	"strings"

	"github.com/starford/dagaz/internal/models"
)

// Render serializes a Document back to text. Untouched nodes emit their
// original source lines byte-identically; mutated nodes are re-rendered.
func Render(d *models.Document) string {
	var lines []string
	lines = append(lines, d.Preamble...)
	for _, sec := range d.Sections {
		lines = append(lines, sectionLines(sec)...)
	}
	return strings.Join(lines, "\n")
}

func sectionLines(s *models.Section) []string {
	var lines []string
	if s.RawHeading != "" {
		lines = append(lines, s.RawHeading)
	} else {
		heading := "* " + s.Name
		if s.HasCookie {
			heading += " " + s.Checklist.Cookie()
		}
		lines = append(lines, heading)
	}
	lines = append(lines, s.PreLines...)
	for _, e := range s.Entries {
		lines = append(lines, EntryLines(e)...)
	}
	return lines
}

// EntryLines returns the serialized lines of a single entry.
func EntryLines(e *models.Entry) []string {
	if e.Raw != nil {
		return e.Raw
	}

	heading := "** "
	if e.Status != "" {
		heading += string(e.Status)
		if e.Headline != "" {
			heading += " "
		}
	}
	heading += e.Headline
	lines := []string{heading}

	if len(e.Props) > 0 {
		lines = append(lines, ":PROPERTIES:")
		for _, p := range e.Props {
			line := ":" + p.Key + ":"
			if p.Value != "" {
				line += " " + p.Value
			}
			lines = append(lines, line)
		}
		lines = append(lines, ":END:")
	}

	for _, sub := range e.Subsections {
		if sub.Heading != "" || sub.HasCookie {
			h := "*** " + sub.Heading
			if sub.HasCookie {
				h += " " + sub.Checklist.Cookie()
			}
			lines = append(lines, h)
		}
		lines = append(lines, sub.Lines...)
	}

	return lines
}

// RenderEntry serializes a single entry to text, used for tool and API
// output of task content.
func RenderEntry(e *models.Entry) string {
	return strings.Join(EntryLines(e), "\n")
}
