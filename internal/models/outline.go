// Package models defines the domain types for Dagaz.
package models

import (
	"fmt"
	"regexp"
	"strings"
)

// Status is the TODO keyword of a task entry.
type Status string

// Recognized status keywords.
const (
	StatusOpen   Status = "TODO"
	StatusClosed Status = "DONE"
)

// Valid reports whether s is a recognized status keyword.
func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusClosed
}

// Well-known keys in an entry's :PROPERTIES: drawer.
const (
	PropID       = "ID"
	PropCustomID = "CUSTOM_ID"
	PropCreated  = "CREATED"
	PropModified = "MODIFIED"
	PropClosed   = "CLOSED"
)

// Property is one key/value pair inside a :PROPERTIES: drawer.
// Order is preserved so that drawers serialize deterministically.
type Property struct {
	Key   string
	Value string
}

// ChecklistItem is one "- [ ] text" line.
type ChecklistItem struct {
	Done bool
	Text string
}

// Checklist is an ordered list of checkbox items. The progress counter is
// always derived from the live items, never stored.
type Checklist struct {
	Items []ChecklistItem
}

// Progress returns (done, total) for the cookie rendering.
func (c *Checklist) Progress() (done, total int) {
	if c == nil {
		return 0, 0
	}
	for _, it := range c.Items {
		if it.Done {
			done++
		}
	}
	return done, len(c.Items)
}

// Cookie renders the derived "[done/total]" progress marker.
func (c *Checklist) Cookie() string {
	done, total := c.Progress()
	return fmt.Sprintf("[%d/%d]", done, total)
}

// Subsection is a level-3 block under an entry (Description, Task items,
// Links, ...). Lines are kept verbatim; Checklist is a parsed view of the
// checkbox lines when the subsection heading carries a progress cookie.
type Subsection struct {
	Heading   string // heading text after "*** ", progress cookie stripped
	HasCookie bool   // heading carried a "[n/m]" marker in the source
	Checklist *Checklist
	Lines     []string // body lines verbatim (checkbox lines included)
}

// Entry is a single task: a level-2 heading with a status keyword, an
// optional properties drawer, and free-form subsections.
//
// Raw holds the exact source lines of an untouched entry; serialization
// emits Raw byte-identically until a mutation invalidates it.
type Entry struct {
	Status      Status
	Headline    string
	Props       []Property
	Subsections []Subsection

	Raw []string
}

var (
	ticketRe       = regexp.MustCompile(`\b([A-Z]+-\d+)\b`)
	ticketPrefixRe = regexp.MustCompile(`^[A-Z]+-\d+\s+`)
)

// Ticket extracts an external ticket token (e.g. GH-28, JIRA-1234) from the
// headline, or returns "" when none is present.
func (e *Entry) Ticket() string {
	m := ticketRe.FindStringSubmatch(e.Headline)
	if m == nil {
		return ""
	}
	return m[1]
}

// Prop returns the value for key, or "" when absent.
func (e *Entry) Prop(key string) string {
	for _, p := range e.Props {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// HasProp reports whether the drawer contains key.
func (e *Entry) HasProp(key string) bool {
	for _, p := range e.Props {
		if p.Key == key {
			return true
		}
	}
	return false
}

// SetProp sets key to value, appending when absent, and marks the entry
// dirty so that it re-renders on serialization.
func (e *Entry) SetProp(key, value string) {
	e.Raw = nil
	for i := range e.Props {
		if e.Props[i].Key == key {
			e.Props[i].Value = value
			return
		}
	}
	e.Props = append(e.Props, Property{Key: key, Value: value})
}

// DeleteProp removes key from the drawer if present.
func (e *Entry) DeleteProp(key string) {
	for i, p := range e.Props {
		if p.Key == key {
			e.Raw = nil
			e.Props = append(e.Props[:i], e.Props[i+1:]...)
			return
		}
	}
}

// Slug returns the entry's stable slug (:CUSTOM_ID:).
func (e *Entry) Slug() string { return e.Prop(PropCustomID) }

// Checklist returns the entry's checklist subsection view, or nil.
func (e *Entry) Checklist() *Checklist {
	for i := range e.Subsections {
		if e.Subsections[i].Checklist != nil {
			return e.Subsections[i].Checklist
		}
	}
	return nil
}

// Section is a top-level named group: either an ordered list of entries
// (task sections) or a single checklist (the summary section).
type Section struct {
	Name      string
	HasCookie bool // heading carried a "[n/m]" marker (summary section)
	Checklist *Checklist
	PreLines  []string // verbatim lines between the heading and the first entry
	Entries   []*Entry

	RawHeading string // exact source heading line, "" for generated sections
}

// Document is an ordered sequence of sections plus any preamble lines that
// appear before the first top-level heading.
type Document struct {
	Preamble []string
	Sections []*Section
}

// Section returns the section with the given name, or nil.
func (d *Document) Section(name string) *Section {
	for _, s := range d.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// EntryBySlug returns the entry whose :CUSTOM_ID: equals slug, or nil.
func (d *Document) EntryBySlug(slug string) *Entry {
	for _, s := range d.Sections {
		for _, e := range s.Entries {
			if e.Slug() == slug {
				return e
			}
		}
	}
	return nil
}

// Description strips the ticket token prefix from the headline, leaving the
// human description used for summary checklist lines.
func (e *Entry) Description() string {
	text := strings.TrimSpace(e.Headline)
	if m := ticketPrefixRe.FindString(text); m != "" {
		text = text[len(m):]
	}
	return strings.TrimSpace(text)
}
