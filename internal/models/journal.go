package models

import "time"

// JournalEntry is one timed record in a daily journal file:
//
//	** HH:MM TICKET-123 [[url][label]] headline text :tag1:tag2:
//	- detail line
//	- detail line
//
// Ticket and Link are optional. Details are kept verbatim. Raw holds the
// exact source lines of an untouched entry, mirroring Entry.Raw.
type JournalEntry struct {
	Time     string // HH:MM
	Ticket   string
	Link     string // external reference, e.g. https://... or [[url][label]] target
	LinkText string // display label inside [[url][label]], "" when absent
	Headline string
	Tags     []string
	Details  []string

	Raw []string
}

// HasTag reports whether the entry carries the given tag.
func (e *JournalEntry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// JournalFile is the parsed form of one day's journal: a date heading
// followed by entries in non-decreasing time order.
type JournalFile struct {
	Date     time.Time
	Preamble []string // verbatim lines between the date heading and the first entry
	Entries  []*JournalEntry

	RawHeading string // exact source date heading line, "" for new files
}

// EntriesAt returns all entries with exactly the given HH:MM time.
func (f *JournalFile) EntriesAt(hhmm string) []*JournalEntry {
	var out []*JournalEntry
	for _, e := range f.Entries {
		if e.Time == hhmm {
			out = append(out, e)
		}
	}
	return out
}
