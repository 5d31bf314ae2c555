// Package outline parses and serializes the hierarchical task outline.
//
// The grammar follows the org-mode conventions of the tasks file: top-level
// sections ("* Tasks"), task entries ("** TODO GH-28 Headline") with a
// :PROPERTIES: drawer, and level-3 subsections whose content is preserved
// verbatim. Any region not touched by a mutation serializes back
// byte-identical: parsed nodes keep their exact source lines until a
// mutation invalidates them.
package outline

import (
	"regexp"
	"strings"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/models"
)

var (
	cookieRe   = regexp.MustCompile(`\s*\[(\d*)/(\d*)\]\s*$`)
	propRe     = regexp.MustCompile(`^\s*:([A-Za-z0-9_]+):\s*(.*?)\s*$`)
	checkboxRe = regexp.MustCompile(`^\s*- \[(.)\] ?(.*)$`)
)

func isLevel1(line string) bool { return strings.HasPrefix(line, "* ") }
func isLevel2(line string) bool { return strings.HasPrefix(line, "** ") }
func isLevel3(line string) bool { return strings.HasPrefix(line, "*** ") }

// Parse builds a Document from raw outline text.
func Parse(text string) (*models.Document, error) {
	lines := strings.Split(text, "\n")
	doc := &models.Document{}

	i := 0
	for i < len(lines) && !isLevel1(lines[i]) {
		if isLevel2(lines[i]) || isLevel3(lines[i]) {
			return nil, &apperr.ParseError{Line: i + 1, Reason: "heading outside any section"}
		}
		doc.Preamble = append(doc.Preamble, lines[i])
		i++
	}

	for i < len(lines) {
		sec, next, err := parseSection(lines, i)
		if err != nil {
			return nil, err
		}
		doc.Sections = append(doc.Sections, sec)
		i = next
	}

	return doc, nil
}

// parseSection consumes one "* ..." section starting at lines[start].
func parseSection(lines []string, start int) (*models.Section, int, error) {
	heading := lines[start]
	name := strings.TrimPrefix(heading, "* ")
	hasCookie := cookieRe.MatchString(name)
	if hasCookie {
		name = cookieRe.ReplaceAllString(name, "")
	}

	sec := &models.Section{
		Name:       strings.TrimSpace(name),
		HasCookie:  hasCookie,
		RawHeading: heading,
	}

	i := start + 1
	for i < len(lines) && !isLevel1(lines[i]) && !isLevel2(lines[i]) {
		if isLevel3(lines[i]) {
			return nil, 0, &apperr.ParseError{Line: i + 1, Reason: "subsection heading outside any entry"}
		}
		if err := checkCheckboxSyntax(lines[i], i); err != nil {
			return nil, 0, err
		}
		sec.PreLines = append(sec.PreLines, lines[i])
		i++
	}
	sec.Checklist = parseChecklist(sec.PreLines)

	for i < len(lines) && !isLevel1(lines[i]) {
		entry, next, err := parseEntry(lines, i)
		if err != nil {
			return nil, 0, err
		}
		sec.Entries = append(sec.Entries, entry)
		i = next
	}

	return sec, i, nil
}

// parseEntry consumes one "** ..." entry starting at lines[start]. The chunk
// runs until the next level-1 or level-2 heading. Level-2 headings without a
// recognized status keyword are kept as non-task entries and never mutated.
func parseEntry(lines []string, start int) (*models.Entry, int, error) {
	end := start + 1
	for end < len(lines) && !isLevel1(lines[end]) && !isLevel2(lines[end]) {
		end++
	}
	raw := lines[start:end]

	head := strings.TrimPrefix(lines[start], "** ")
	entry := &models.Entry{Raw: raw}

	status, rest, ok := strings.Cut(head, " ")
	if ok && models.Status(status).Valid() {
		entry.Status = models.Status(status)
		entry.Headline = strings.TrimSpace(rest)
	} else if models.Status(head).Valid() {
		entry.Status = models.Status(head)
	} else {
		// Non-task heading: preserved verbatim via Raw, skipped by the
		// locator and mutator.
		entry.Headline = strings.TrimSpace(head)
		return entry, end, nil
	}

	i := start + 1
	// Skip blank lines between the heading and the drawer.
	for i < end && strings.TrimSpace(lines[i]) == "" {
		i++
	}

	if i < end && strings.TrimSpace(lines[i]) == ":PROPERTIES:" {
		drawerStart := i
		i++
		closed := false
		for i < end {
			if strings.TrimSpace(lines[i]) == ":END:" {
				closed = true
				i++
				break
			}
			if m := propRe.FindStringSubmatch(lines[i]); m != nil {
				entry.Props = append(entry.Props, models.Property{Key: m[1], Value: m[2]})
			}
			i++
		}
		if !closed {
			return nil, 0, &apperr.ParseError{Line: drawerStart + 1, Reason: "unterminated :PROPERTIES: drawer"}
		}
	}

	subs, err := parseSubsections(lines, i, end)
	if err != nil {
		return nil, 0, err
	}
	entry.Subsections = subs

	return entry, end, nil
}

// parseSubsections splits entry body lines at "*** " boundaries. Lines
// before the first level-3 heading form an unnamed subsection.
func parseSubsections(lines []string, start, end int) ([]models.Subsection, error) {
	var subs []models.Subsection

	flush := func(heading string, hasCookie bool, body []string) {
		if heading == "" && len(body) == 0 {
			return
		}
		sub := models.Subsection{
			Heading:   heading,
			HasCookie: hasCookie,
			Lines:     body,
		}
		if hasCookie {
			sub.Checklist = parseChecklist(body)
		}
		subs = append(subs, sub)
	}

	heading := ""
	hasCookie := false
	bodyStart := start

	for i := start; i < end; i++ {
		if isLevel3(lines[i]) {
			flush(heading, hasCookie, lines[bodyStart:i])
			heading = strings.TrimPrefix(lines[i], "*** ")
			hasCookie = cookieRe.MatchString(heading)
			if hasCookie {
				heading = strings.TrimSpace(cookieRe.ReplaceAllString(heading, ""))
			}
			bodyStart = i + 1
			continue
		}
		if err := checkCheckboxSyntax(lines[i], i); err != nil {
			return nil, err
		}
	}
	flush(heading, hasCookie, lines[bodyStart:end])

	return subs, nil
}

// parseChecklist extracts "- [ ]" / "- [X]" items from body lines.
// Returns nil when no checkbox lines are present.
func parseChecklist(lines []string) *models.Checklist {
	var items []models.ChecklistItem
	for _, line := range lines {
		m := checkboxRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		items = append(items, models.ChecklistItem{
			Done: m[1] == "X" || m[1] == "x",
			Text: m[2],
		})
	}
	if items == nil {
		return nil
	}
	return &models.Checklist{Items: items}
}

// checkCheckboxSyntax rejects checkbox-shaped lines with an invalid marker,
// e.g. "- [y] item". Lines that do not look like checkboxes pass through.
func checkCheckboxSyntax(line string, idx int) error {
	m := checkboxRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	switch m[1] {
	case " ", "X", "x":
		return nil
	}
	return &apperr.ParseError{Line: idx + 1, Reason: "malformed checklist line: " + strings.TrimSpace(line)}
}

// ParseFragment parses a standalone entry fragment (a "** STATUS ..."
// heading plus optional drawer and subsections). The first level-2 heading
// wins; a fragment without one is a ParseError.
func ParseFragment(text string) (*models.Entry, error) {
	lines := strings.Split(strings.Trim(text, "\n"), "\n")

	start := -1
	for i, line := range lines {
		if isLevel2(line) {
			start = i
			break
		}
		if strings.TrimSpace(line) != "" {
			return nil, &apperr.ParseError{Line: i + 1, Reason: "fragment must start with a level-2 heading"}
		}
	}
	if start < 0 {
		return nil, &apperr.ParseError{Reason: "fragment must contain a level-2 heading (** TODO ...)"}
	}

	entry, _, err := parseEntry(lines, start)
	if err != nil {
		return nil, err
	}
	return entry, nil
}
