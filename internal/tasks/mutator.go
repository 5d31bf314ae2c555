// Package tasks implements the outline mutation operations: creating,
// updating, and relocating entries, plus the derived summary-checklist
// projection. All operations are pure in-memory transformations over a
// parsed Document; persistence belongs to the caller.
package tasks

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/locator"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/outline"
)

// SectionMap is the caller-supplied status→section mapping plus the name of
// the summary checklist section. Section names are configuration, never
// hard-coded.
type SectionMap struct {
	Open      string
	Closed    string
	Checklist string
}

// TaskSections returns the status-bearing section names in search order.
func (m SectionMap) TaskSections() []string {
	return []string{m.Open, m.Closed}
}

// SectionFor maps a status to its home section name.
func (m SectionMap) SectionFor(status models.Status) string {
	if status == models.StatusClosed {
		return m.Closed
	}
	return m.Open
}

// Mutator performs entry mutations on a Document. Now and NewID default to
// the wall clock and uppercase UUIDs; tests inject deterministic values.
type Mutator struct {
	Sections SectionMap
	Now      func() time.Time
	NewID    func() string
}

// NewMutator creates a Mutator with default clock and ID generation.
func NewMutator(sections SectionMap) *Mutator {
	return &Mutator{
		Sections: sections,
		Now:      time.Now,
		NewID:    func() string { return strings.ToUpper(uuid.NewString()) },
	}
}

// UpdateResult describes the outcome of an Update.
type UpdateResult struct {
	Old         *models.Entry
	New         *models.Entry
	Moved       bool
	FromSection string
	ToSection   string
}

// Create parses fragment as a standalone entry and appends it to the named
// section. A missing :ID: is generated, a missing :CUSTOM_ID: is derived
// from the headline, and :CREATED:/:MODIFIED: are stamped with the current
// time. An explicit slug colliding with an existing entry is a
// DuplicateSlug error.
func (m *Mutator) Create(doc *models.Document, sectionName, fragment string) (*models.Entry, error) {
	sec := doc.Section(sectionName)
	if sec == nil {
		return nil, fmt.Errorf("tasks: section %q: %w", sectionName, apperr.ErrNotFound)
	}

	entry, err := outline.ParseFragment(fragment)
	if err != nil {
		return nil, err
	}
	if entry.Status == "" {
		// No status keyword: default to open. Re-parse with the keyword
		// injected so the drawer and subsections are recognized.
		entry, err = outline.ParseFragment(injectStatus(fragment, models.StatusOpen))
		if err != nil {
			return nil, err
		}
		entry.Raw = nil
	}

	if slug := entry.Slug(); slug != "" {
		if other := doc.EntryBySlug(slug); other != nil {
			return nil, &apperr.DuplicateSlugError{Slug: slug}
		}
	} else {
		entry.SetProp(models.PropCustomID, m.freeSlug(doc, entry))
	}

	if !entry.HasProp(models.PropID) {
		entry.SetProp(models.PropID, m.NewID())
	}

	now := m.Now()
	if !entry.HasProp(models.PropCreated) {
		entry.SetProp(models.PropCreated, outline.ActiveTimestamp(now))
	}
	entry.SetProp(models.PropModified, outline.InactiveTimestamp(now))

	if entry.Status == models.StatusClosed && !entry.HasProp(models.PropClosed) {
		entry.SetProp(models.PropClosed, outline.ActiveTimestamp(now))
	}

	sec.Entries = append(sec.Entries, entry)
	Synchronize(doc, m.Sections)
	return entry, nil
}

// Update replaces the entry matching identifier with the parsed fragment.
// The prior :ID:, :CUSTOM_ID:, :CREATED:, and :CLOSED: values carry over
// unless the fragment supplies its own; :MODIFIED: always advances. A
// status transition relocates the entry to its mapped section and sets or
// clears :CLOSED:; with an unchanged status the entry keeps its position.
func (m *Mutator) Update(doc *models.Document, identifier, fragment string) (*UpdateResult, error) {
	hit, err := locator.Find(doc, identifier, m.Sections.TaskSections()...)
	if err != nil {
		return nil, err
	}
	old, oldSec := hit.Entry, hit.Section

	entry, err := outline.ParseFragment(fragment)
	if err != nil {
		return nil, err
	}
	if !entry.Status.Valid() {
		return nil, fmt.Errorf("tasks: fragment has no recognized status keyword: %w", apperr.ErrInvalidTransition)
	}

	// Carry over identity and history unless the fragment overrides them.
	for _, key := range []string{models.PropID, models.PropCustomID, models.PropCreated, models.PropClosed} {
		if !entry.HasProp(key) && old.HasProp(key) {
			entry.SetProp(key, old.Prop(key))
		}
	}
	if entry.Slug() == "" {
		entry.SetProp(models.PropCustomID, m.freeSlug(doc, entry))
	}
	if slug := entry.Slug(); slug != old.Slug() {
		if other := doc.EntryBySlug(slug); other != nil && other != old {
			return nil, &apperr.DuplicateSlugError{Slug: slug}
		}
	}

	now := m.Now()
	entry.SetProp(models.PropModified, outline.InactiveTimestamp(now))

	switch {
	case old.Status == models.StatusOpen && entry.Status == models.StatusClosed:
		entry.SetProp(models.PropClosed, outline.ActiveTimestamp(now))
	case old.Status == models.StatusClosed && entry.Status == models.StatusOpen:
		entry.DeleteProp(models.PropClosed)
	}

	result := &UpdateResult{Old: old, New: entry, FromSection: oldSec.Name}

	if entry.Status == old.Status {
		// Same status: replace in place, order undisturbed.
		result.ToSection = oldSec.Name
		replaceEntry(oldSec, old, entry)
	} else {
		targetName := m.Sections.SectionFor(entry.Status)
		target := doc.Section(targetName)
		if target == nil {
			return nil, fmt.Errorf("tasks: section %q: %w", targetName, apperr.ErrNotFound)
		}
		removeEntry(oldSec, old)
		target.Entries = append(target.Entries, entry)
		result.ToSection = targetName
		result.Moved = oldSec.Name != targetName
	}

	Synchronize(doc, m.Sections)
	return result, nil
}

// Move relocates an entry between sections without touching content,
// status, or timestamps. The entry must be present in fromSection.
func (m *Mutator) Move(doc *models.Document, identifier, fromSection, toSection string) (*models.Entry, error) {
	target := doc.Section(toSection)
	if target == nil {
		return nil, fmt.Errorf("tasks: section %q: %w", toSection, apperr.ErrNotFound)
	}

	hit, err := locator.Find(doc, identifier, fromSection)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("tasks: %q not in section %q: %w", identifier, fromSection, apperr.ErrInvalidTransition)
		}
		return nil, err
	}

	removeEntry(hit.Section, hit.Entry)
	target.Entries = append(target.Entries, hit.Entry)
	Synchronize(doc, m.Sections)
	return hit.Entry, nil
}

// freeSlug derives a slug from the entry's ticket token or headline and
// uniquifies it against the document with a numeric suffix.
func (m *Mutator) freeSlug(doc *models.Document, e *models.Entry) string {
	base := "task-"
	if ticket := e.Ticket(); ticket != "" {
		base += strings.ToLower(ticket)
	} else {
		base += slugify(e.Headline)
	}
	slug := base
	for n := 2; doc.EntryBySlug(slug) != nil; n++ {
		slug = fmt.Sprintf("%s-%d", base, n)
	}
	return slug
}

// injectStatus rewrites the fragment's heading line with a status keyword.
func injectStatus(fragment string, status models.Status) string {
	lines := strings.Split(fragment, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "** ") {
			lines[i] = "** " + string(status) + " " + strings.TrimPrefix(line, "** ")
			break
		}
	}
	return strings.Join(lines, "\n")
}

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	s = nonSlugRe.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

func replaceEntry(sec *models.Section, old, repl *models.Entry) {
	for i, e := range sec.Entries {
		if e == old {
			sec.Entries[i] = repl
			return
		}
	}
}

func removeEntry(sec *models.Section, e *models.Entry) {
	for i, cur := range sec.Entries {
		if cur == e {
			sec.Entries = append(sec.Entries[:i], sec.Entries[i+1:]...)
			return
		}
	}
}
