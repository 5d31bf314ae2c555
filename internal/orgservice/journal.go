package orgservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/dagaz/internal/diffview"
	"github.com/starford/dagaz/internal/index"
	"github.com/starford/dagaz/internal/journal"
	"github.com/starford/dagaz/internal/models"
)

// EntryInput carries the fields of a new journal entry. An empty Time
// defaults to the current clock reading.
type EntryInput struct {
	Time     string   `json:"time,omitempty"`
	Ticket   string   `json:"ticket,omitempty"`
	Link     string   `json:"link,omitempty"`
	LinkText string   `json:"link_text,omitempty"`
	Headline string   `json:"headline"`
	Tags     []string `json:"tags,omitempty"`
	Details  []string `json:"details,omitempty"`
}

// JournalEntryDetail is the full representation of one journal entry.
type JournalEntryDetail struct {
	Date     string   `json:"date"`
	Time     string   `json:"time"`
	Ticket   string   `json:"ticket,omitempty"`
	Link     string   `json:"link,omitempty"`
	LinkText string   `json:"link_text,omitempty"`
	Headline string   `json:"headline"`
	Tags     []string `json:"tags,omitempty"`
	Details  []string `json:"details,omitempty"`
	Text     string   `json:"text"`
}

// DayDetail is one journal day file.
type DayDetail struct {
	Date    string                `json:"date"`
	Path    string                `json:"path"`
	Text    string                `json:"text"`
	Entries []*JournalEntryDetail `json:"entries"`
}

// JournalChange is the outcome of a journal mutation.
type JournalChange struct {
	Entry *JournalEntryDetail `json:"entry"`
	Diff  string              `json:"diff"`
}

// JournalMatch is one hit from a journal search.
type JournalMatch struct {
	Date  string              `json:"date"`
	Field string              `json:"field"`
	Entry *JournalEntryDetail `json:"entry"`
}

func journalEntryDetail(date time.Time, e *models.JournalEntry) *JournalEntryDetail {
	return &JournalEntryDetail{
		Date:     date.Format("2006-01-02"),
		Time:     e.Time,
		Ticket:   e.Ticket,
		Link:     e.Link,
		LinkText: e.LinkText,
		Headline: e.Headline,
		Tags:     e.Tags,
		Details:  e.Details,
		Text:     journal.RenderEntry(e),
	}
}

// ListDays returns the dates of all existing day files, newest first.
func (s *Service) ListDays(_ context.Context) ([]time.Time, error) {
	return s.naming.Days(s.store)
}

// GetDay returns the parsed day file for a date.
func (s *Service) GetDay(_ context.Context, date time.Time) (*DayDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.naming.PathFor(s.store, date)
	text, err := s.readText(path)
	if err != nil {
		return nil, err
	}
	f, err := journal.ParseDay(text)
	if err != nil {
		return nil, err
	}
	detail := &DayDetail{Date: f.Date.Format("2006-01-02"), Path: path, Text: text}
	for _, e := range f.Entries {
		detail.Entries = append(detail.Entries, journalEntryDetail(f.Date, e))
	}
	return detail, nil
}

// CreateJournalEntry adds a timed entry to the day file for date, creating
// the file when the day has no entries yet, and persists the change.
func (s *Service) CreateJournalEntry(ctx context.Context, date time.Time, in EntryInput) (*JournalChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, oldText, f, err := s.loadDay(date)
	if err != nil {
		return nil, err
	}
	entry := entryFromInput(in, s.mutator.Now)
	if err := journal.CreateEntry(f, entry); err != nil {
		return nil, err
	}
	diff, err := s.commitDay(ctx, path, oldText, f, "created", entry.Time)
	if err != nil {
		return nil, err
	}
	return &JournalChange{Entry: journalEntryDetail(f.Date, entry), Diff: diff}, nil
}

// UpdateJournalEntry replaces fields of the identified entry and persists
// the change.
func (s *Service) UpdateJournalEntry(ctx context.Context, date time.Time, identifier string, fields journal.EntryFields) (*JournalChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, oldText, f, err := s.loadDay(date)
	if err != nil {
		return nil, err
	}
	res, err := journal.UpdateEntry(f, identifier, fields)
	if err != nil {
		return nil, err
	}
	diff, err := s.commitDay(ctx, path, oldText, f, "updated", res.New.Time)
	if err != nil {
		return nil, err
	}
	return &JournalChange{Entry: journalEntryDetail(f.Date, res.New), Diff: diff}, nil
}

// PreviewJournalCreate returns the diff a CreateJournalEntry would apply,
// without writing.
func (s *Service) PreviewJournalCreate(_ context.Context, date time.Time, in EntryInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, oldText, f, err := s.loadDay(date)
	if err != nil {
		return "", err
	}
	if err := journal.CreateEntry(f, entryFromInput(in, s.mutator.Now)); err != nil {
		return "", err
	}
	return diffview.Format(oldText, journal.Render(f)), nil
}

// PreviewJournalUpdate returns the diff an UpdateJournalEntry would apply,
// without writing.
func (s *Service) PreviewJournalUpdate(_ context.Context, date time.Time, identifier string, fields journal.EntryFields) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, oldText, f, err := s.loadDay(date)
	if err != nil {
		return "", err
	}
	if _, err := journal.UpdateEntry(f, identifier, fields); err != nil {
		return "", err
	}
	return diffview.Format(oldText, journal.Render(f)), nil
}

// SearchJournal scans the newest `days` day files for query, newest first.
// A non-positive days scans every file.
func (s *Service) SearchJournal(_ context.Context, query string, days int) ([]JournalMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dates, err := s.naming.Days(s.store)
	if err != nil {
		return nil, err
	}
	if days > 0 && len(dates) > days {
		dates = dates[:days]
	}

	var files []*models.JournalFile
	for _, d := range dates {
		text, err := s.readText(s.naming.PathFor(s.store, d))
		if err != nil {
			continue
		}
		f, err := journal.ParseDay(text)
		if err != nil {
			s.logger.Warn("journal search: skipping unparsable day",
				slog.String("date", d.Format("2006-01-02")),
				slog.String("error", err.Error()))
			continue
		}
		files = append(files, f)
	}

	var out []JournalMatch
	for m := range journal.Search(files, query) {
		out = append(out, JournalMatch{
			Date:  m.Date.Format("2006-01-02"),
			Field: m.Field,
			Entry: journalEntryDetail(m.Date, m.Entry),
		})
	}
	return out, nil
}

// loadDay reads and parses the day file for date, or starts an empty file
// when none exists.
func (s *Service) loadDay(date time.Time) (path, oldText string, f *models.JournalFile, err error) {
	path = s.naming.PathFor(s.store, date)
	if !s.store.Exists(path) {
		return path, "", journal.NewDay(date), nil
	}
	oldText, err = s.readText(path)
	if err != nil {
		return "", "", nil, err
	}
	f, err = journal.ParseDay(oldText)
	if err != nil {
		return "", "", nil, err
	}
	return path, oldText, f, nil
}

func (s *Service) commitDay(ctx context.Context, path, oldText string, f *models.JournalFile, kind, hhmm string) (string, error) {
	newText := journal.Render(f)
	ref := f.Date.Format("2006-01-02") + " " + hhmm
	return s.commit(ctx, path, oldText, newText, func(data []byte) error {
		return index.IndexDayFile(s.db, path, data)
	}, "journal", kind, ref)
}

func entryFromInput(in EntryInput, now func() time.Time) *models.JournalEntry {
	t := in.Time
	if t == "" {
		t = now().Format("15:04")
	}
	return &models.JournalEntry{
		Time:     t,
		Ticket:   in.Ticket,
		Link:     in.Link,
		LinkText: in.LinkText,
		Headline: in.Headline,
		Tags:     in.Tags,
		Details:  in.Details,
	}
}
