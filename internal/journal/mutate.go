package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/models"
)

// CreateEntry inserts a new entry at the position that keeps the file
// non-decreasing by time. Entries with an equal time keep their arrival
// order: the new entry goes after them.
func CreateEntry(f *models.JournalFile, e *models.JournalEntry) error {
	if _, err := time.Parse(timeLayout, e.Time); err != nil || len(e.Time) != 5 {
		return &apperr.ParseError{Reason: "malformed entry time: " + e.Time}
	}
	e.Raw = nil
	insertByTime(f, e)
	return nil
}

// EntryFields carries the replacement values for an update; nil fields keep
// the existing value.
type EntryFields struct {
	Time     *string
	Ticket   *string
	Link     *string
	LinkText *string
	Headline *string
	Tags     *[]string
	Details  *[]string
}

// UpdateResult describes the outcome of an UpdateEntry.
type UpdateResult struct {
	Old *models.JournalEntry
	New *models.JournalEntry
}

// UpdateEntry locates an entry by exact time or headline substring and
// replaces the supplied fields. The file is re-sorted only when the time
// itself changed; untouched entries keep their original text.
func UpdateEntry(f *models.JournalFile, identifier string, fields EntryFields) (*UpdateResult, error) {
	old, err := Locate(f, identifier)
	if err != nil {
		return nil, err
	}

	repl := &models.JournalEntry{
		Time:     old.Time,
		Ticket:   old.Ticket,
		Link:     old.Link,
		LinkText: old.LinkText,
		Headline: old.Headline,
		Tags:     old.Tags,
		Details:  old.Details,
	}
	if fields.Time != nil {
		if _, err := time.Parse(timeLayout, *fields.Time); err != nil || len(*fields.Time) != 5 {
			return nil, &apperr.ParseError{Reason: "malformed entry time: " + *fields.Time}
		}
		repl.Time = *fields.Time
	}
	if fields.Ticket != nil {
		repl.Ticket = *fields.Ticket
	}
	if fields.Link != nil {
		repl.Link = *fields.Link
	}
	if fields.LinkText != nil {
		repl.LinkText = *fields.LinkText
	}
	if fields.Headline != nil {
		repl.Headline = *fields.Headline
	}
	if fields.Tags != nil {
		repl.Tags = *fields.Tags
	}
	if fields.Details != nil {
		repl.Details = *fields.Details
	}

	if repl.Time == old.Time {
		for i, e := range f.Entries {
			if e == old {
				f.Entries[i] = repl
				break
			}
		}
	} else {
		removeEntry(f, old)
		insertByTime(f, repl)
	}

	return &UpdateResult{Old: old, New: repl}, nil
}

// Locate resolves an identifier to a single entry: exact HH:MM match first,
// then case-insensitive headline substring. Several hits at the same
// priority are an AmbiguousError; none is ErrNotFound.
func Locate(f *models.JournalFile, identifier string) (*models.JournalEntry, error) {
	if byTime := f.EntriesAt(identifier); len(byTime) > 0 {
		if len(byTime) > 1 {
			return nil, ambiguous(identifier, byTime)
		}
		return byTime[0], nil
	}

	needle := strings.ToLower(identifier)
	var hits []*models.JournalEntry
	for _, e := range f.Entries {
		if strings.Contains(strings.ToLower(e.Headline), needle) {
			hits = append(hits, e)
		}
	}
	switch len(hits) {
	case 0:
		return nil, fmt.Errorf("journal: entry %q: %w", identifier, apperr.ErrNotFound)
	case 1:
		return hits[0], nil
	default:
		return nil, ambiguous(identifier, hits)
	}
}

func ambiguous(identifier string, hits []*models.JournalEntry) error {
	candidates := make([]string, len(hits))
	for i, e := range hits {
		candidates[i] = e.Time + " " + e.Headline
	}
	return &apperr.AmbiguousError{Identifier: identifier, Candidates: candidates}
}

// insertByTime places e before the first entry with a strictly later time,
// so that ties land after existing entries at the same time. HH:MM strings
// order correctly under lexicographic comparison.
func insertByTime(f *models.JournalFile, e *models.JournalEntry) {
	at := len(f.Entries)
	for i, cur := range f.Entries {
		if cur.Time > e.Time {
			at = i
			break
		}
	}
	f.Entries = append(f.Entries, nil)
	copy(f.Entries[at+1:], f.Entries[at:])
	f.Entries[at] = e
}

func removeEntry(f *models.JournalFile, e *models.JournalEntry) {
	for i, cur := range f.Entries {
		if cur == e {
			f.Entries = append(f.Entries[:i], f.Entries[i+1:]...)
			return
		}
	}
}
