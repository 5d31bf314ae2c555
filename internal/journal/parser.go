// Package journal parses and mutates daily journal files.
//
// A journal file holds one calendar date: a "* YYYY-MM-DD" heading followed
// by timed entries in non-decreasing time order:
//
//	** 14:30 GH-28 [[https://example.com/pr/28][#28]] Reviewed the fix :review:
//	- detail line
//
// Untouched entries keep their exact source lines and serialize back
// byte-identically.
package journal

import (
	"regexp"
	"strings"
	"time"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/models"
)

var (
	ticketLeadRe = regexp.MustCompile(`^([A-Z]+-\d+)\b`)
	linkRe       = regexp.MustCompile(`^\[\[([^\]\[]+)\](?:\[([^\]\[]*)\])?\]`)
)

// Time layouts.
const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

var (
	dateHeadingPrefix = "* "
	entryPrefix       = "** "
)

// ParseDay builds a JournalFile from raw day-file text. The first non-blank
// line must be a "* YYYY-MM-DD" date heading; every "** " line must match
// the entry grammar.
func ParseDay(text string) (*models.JournalFile, error) {
	lines := strings.Split(text, "\n")

	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= len(lines) || !strings.HasPrefix(lines[i], dateHeadingPrefix) {
		return nil, &apperr.ParseError{Line: i + 1, Reason: "missing date heading (* YYYY-MM-DD)"}
	}

	heading := lines[i]
	date, err := time.Parse(dateLayout, strings.TrimSpace(strings.TrimPrefix(heading, dateHeadingPrefix)))
	if err != nil {
		return nil, &apperr.ParseError{Line: i + 1, Reason: "malformed date heading: " + heading}
	}

	file := &models.JournalFile{Date: date, RawHeading: heading}
	i++

	for i < len(lines) && !strings.HasPrefix(lines[i], entryPrefix) {
		file.Preamble = append(file.Preamble, lines[i])
		i++
	}

	for i < len(lines) {
		entry, next, err := parseEntry(lines, i)
		if err != nil {
			return nil, err
		}
		file.Entries = append(file.Entries, entry)
		i = next
	}

	return file, nil
}

// parseEntry consumes one "** HH:MM ..." chunk ending at the next heading.
func parseEntry(lines []string, start int) (*models.JournalEntry, int, error) {
	end := start + 1
	for end < len(lines) && !strings.HasPrefix(lines[end], entryPrefix) &&
		!strings.HasPrefix(lines[end], dateHeadingPrefix) {
		end++
	}

	entry, err := parseEntryLine(lines[start], start)
	if err != nil {
		return nil, 0, err
	}
	entry.Details = lines[start+1 : end]
	entry.Raw = lines[start:end]
	return entry, end, nil
}

// parseEntryLine decodes the heading line: time, optional leading ticket
// token, optional [[url][label]] reference, headline text, trailing tags.
func parseEntryLine(line string, idx int) (*models.JournalEntry, error) {
	rest := strings.TrimPrefix(line, entryPrefix)

	hhmm, rest, ok := strings.Cut(rest, " ")
	if !ok && hhmm == "" {
		return nil, &apperr.ParseError{Line: idx + 1, Reason: "empty journal entry line"}
	}
	if _, err := time.Parse(timeLayout, hhmm); err != nil || len(hhmm) != 5 {
		return nil, &apperr.ParseError{Line: idx + 1, Reason: "malformed entry time: " + hhmm}
	}

	entry := &models.JournalEntry{Time: hhmm}

	// Trailing tag set: " :tag1:tag2:".
	rest = strings.TrimRight(rest, " ")
	if strings.HasSuffix(rest, ":") {
		if sp := strings.LastIndex(rest, " "); sp >= 0 {
			token := rest[sp+1:]
			if len(token) > 2 && strings.HasPrefix(token, ":") && !strings.Contains(token, "::") {
				entry.Tags = splitTags(token)
				rest = strings.TrimRight(rest[:sp], " ")
			}
		}
	}

	// Leading ticket token.
	if m := ticketLeadRe.FindStringSubmatch(rest); m != nil {
		entry.Ticket = m[1]
		rest = strings.TrimLeft(rest[len(m[0]):], " ")
	}

	// Leading reference link.
	if m := linkRe.FindStringSubmatch(rest); m != nil {
		entry.Link = m[1]
		entry.LinkText = m[2]
		rest = strings.TrimLeft(rest[len(m[0]):], " ")
	}

	entry.Headline = rest
	return entry, nil
}

func splitTags(token string) []string {
	parts := strings.Split(strings.Trim(token, ":"), ":")
	seen := make(map[string]struct{}, len(parts))
	var out []string
	for _, p := range parts {
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
