package journal

import (
	"iter"
	"strings"
	"time"

	"github.com/starford/dagaz/internal/models"
)

// Match is one search hit: the day the entry lives in, the entry itself,
// and which field matched.
type Match struct {
	Date  time.Time
	Entry *models.JournalEntry
	Field string
}

// Matched field names.
const (
	FieldHeadline = "headline"
	FieldDetails  = "details"
	FieldTags     = "tags"
)

// Search yields matches for query across the given day files, visiting the
// files in the order supplied and each file's entries top to bottom. The
// comparison is a case-insensitive substring test over headline, detail
// lines, and tags; an entry yields at most one match, reporting the first
// field that hit. The sequence is lazy and restartable.
func Search(files []*models.JournalFile, query string) iter.Seq[Match] {
	needle := strings.ToLower(query)
	return func(yield func(Match) bool) {
		for _, f := range files {
			for _, e := range f.Entries {
				field, ok := matchEntry(e, needle)
				if !ok {
					continue
				}
				if !yield(Match{Date: f.Date, Entry: e, Field: field}) {
					return
				}
			}
		}
	}
}

func matchEntry(e *models.JournalEntry, needle string) (string, bool) {
	if strings.Contains(strings.ToLower(e.Headline), needle) {
		return FieldHeadline, true
	}
	for _, line := range e.Details {
		if strings.Contains(strings.ToLower(line), needle) {
			return FieldDetails, true
		}
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return FieldTags, true
		}
	}
	return "", false
}
