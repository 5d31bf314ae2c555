package journal

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/models"
)

const sampleDay = `* 2025-08-28

** 09:15 GH-28 [[https://example.com/pr/28][#28]] Reviewed the rate limiter :review:
- left two comments

** 11:00 Standup :meeting:

** 14:30 Debugged the flaky build
- narrowed it down to the cache key
- still reproducing intermittently
`

func parseDay(t *testing.T, text string) *models.JournalFile {
	t.Helper()
	f, err := ParseDay(text)
	if err != nil {
		t.Fatalf("ParseDay() error = %v", err)
	}
	return f
}

func TestParseDayRoundTrip(t *testing.T) {
	f := parseDay(t, sampleDay)
	if got := Render(f); got != sampleDay {
		t.Errorf("Render() does not round-trip:\ngot:\n%s\nwant:\n%s", got, sampleDay)
	}
}

func TestParseDayFields(t *testing.T) {
	f := parseDay(t, sampleDay)

	if !f.Date.Equal(time.Date(2025, 8, 28, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v", f.Date)
	}
	if len(f.Entries) != 3 {
		t.Fatalf("len(Entries) = %d, want 3", len(f.Entries))
	}

	e := f.Entries[0]
	if e.Time != "09:15" {
		t.Errorf("Time = %q", e.Time)
	}
	if e.Ticket != "GH-28" {
		t.Errorf("Ticket = %q", e.Ticket)
	}
	if e.Link != "https://example.com/pr/28" || e.LinkText != "#28" {
		t.Errorf("Link = %q LinkText = %q", e.Link, e.LinkText)
	}
	if e.Headline != "Reviewed the rate limiter" {
		t.Errorf("Headline = %q", e.Headline)
	}
	if !e.HasTag("review") {
		t.Errorf("Tags = %v", e.Tags)
	}
	if len(e.Details) == 0 || e.Details[0] != "- left two comments" {
		t.Errorf("Details = %v", e.Details)
	}

	if f.Entries[1].Headline != "Standup" || !f.Entries[1].HasTag("meeting") {
		t.Errorf("entry 1 = %+v", f.Entries[1])
	}
	if f.Entries[2].Ticket != "" || f.Entries[2].Link != "" {
		t.Errorf("entry 2 picked up phantom ticket/link: %+v", f.Entries[2])
	}
}

func TestParseDayErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"no heading", "** 09:00 Entry without a date"},
		{"bad date", "* not-a-date\n** 09:00 Entry"},
		{"bad time", "* 2025-08-28\n** 9:00 Entry"},
		{"nonsense time", "* 2025-08-28\n** 25:99 Entry"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseDay(tc.text); !errors.Is(err, apperr.ErrParse) {
				t.Errorf("ParseDay() error = %v, want parse error", err)
			}
		})
	}
}

func TestCreateEntryKeepsTimeOrder(t *testing.T) {
	f := parseDay(t, sampleDay)

	if err := CreateEntry(f, &models.JournalEntry{Time: "10:00", Headline: "Mid-morning note"}); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	times := entryTimes(f)
	want := []string{"09:15", "10:00", "11:00", "14:30"}
	if strings.Join(times, ",") != strings.Join(want, ",") {
		t.Errorf("times = %v, want %v", times, want)
	}
}

func TestCreateEntryTieGoesAfter(t *testing.T) {
	f := parseDay(t, sampleDay)

	tie := &models.JournalEntry{Time: "11:00", Headline: "Second standup note"}
	if err := CreateEntry(f, tie); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	if f.Entries[2] != tie {
		t.Errorf("tie inserted at position %d", indexOf(f, tie))
	}
	if f.Entries[1].Headline != "Standup" {
		t.Errorf("existing entry displaced: %+v", f.Entries[1])
	}
}

func TestCreateEntryRejectsBadTime(t *testing.T) {
	f := parseDay(t, sampleDay)
	err := CreateEntry(f, &models.JournalEntry{Time: "9:00", Headline: "x"})
	if !errors.Is(err, apperr.ErrParse) {
		t.Errorf("CreateEntry() error = %v, want parse error", err)
	}
}

func TestCreateEntryIntoNewDay(t *testing.T) {
	f := NewDay(time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC))
	if err := CreateEntry(f, &models.JournalEntry{Time: "08:00", Headline: "First entry", Tags: []string{"am"}}); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	out := Render(f)
	if !strings.HasPrefix(out, "* 2025-08-29\n") {
		t.Errorf("missing date heading:\n%s", out)
	}
	if !strings.Contains(out, "** 08:00 First entry :am:") {
		t.Errorf("entry line missing:\n%s", out)
	}
}

func TestUpdateEntrySameTimeKeepsPosition(t *testing.T) {
	f := parseDay(t, sampleDay)

	headline := "Reviewed the rate limiter again"
	res, err := UpdateEntry(f, "09:15", EntryFields{Headline: &headline})
	if err != nil {
		t.Fatalf("UpdateEntry() error = %v", err)
	}
	if f.Entries[0] != res.New {
		t.Error("updated entry lost its position")
	}
	if res.New.Headline != headline {
		t.Errorf("Headline = %q", res.New.Headline)
	}
	// Untouched fields carry over.
	if res.New.Ticket != "GH-28" || !res.New.HasTag("review") {
		t.Errorf("fields not carried over: %+v", res.New)
	}
	// Other entries keep their exact source text.
	if f.Entries[1].Raw == nil {
		t.Error("untouched entry lost its raw lines")
	}
}

func TestUpdateEntryTimeChangeResorts(t *testing.T) {
	f := parseDay(t, sampleDay)

	newTime := "15:00"
	res, err := UpdateEntry(f, "09:15", EntryFields{Time: &newTime})
	if err != nil {
		t.Fatalf("UpdateEntry() error = %v", err)
	}
	if f.Entries[len(f.Entries)-1] != res.New {
		t.Errorf("re-timed entry not moved to the end: times = %v", entryTimes(f))
	}
}

func TestUpdateEntryByHeadline(t *testing.T) {
	f := parseDay(t, sampleDay)

	details := []string{"- found it: stale lockfile"}
	res, err := UpdateEntry(f, "flaky build", EntryFields{Details: &details})
	if err != nil {
		t.Fatalf("UpdateEntry() error = %v", err)
	}
	if res.Old.Time != "14:30" {
		t.Errorf("located %q", res.Old.Time)
	}
	if len(res.New.Details) != 1 {
		t.Errorf("Details = %v", res.New.Details)
	}
}

func TestLocateAmbiguousAndMissing(t *testing.T) {
	f := parseDay(t, sampleDay)
	extra := &models.JournalEntry{Time: "11:00", Headline: "Second item"}
	if err := CreateEntry(f, extra); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}

	if _, err := Locate(f, "11:00"); !errors.Is(err, apperr.ErrAmbiguous) {
		t.Errorf("Locate(11:00) error = %v, want ErrAmbiguous", err)
	}
	if _, err := Locate(f, "nothing matches this"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Locate() error = %v, want ErrNotFound", err)
	}
}

func TestSearchFieldsAndOrder(t *testing.T) {
	day1 := parseDay(t, sampleDay)
	day2 := parseDay(t, strings.Join([]string{
		"* 2025-08-27",
		"",
		"** 10:00 Planning :review:",
		"** 16:00 Pairing on the cache key bug",
	}, "\n"))

	var got []Match
	for m := range Search([]*models.JournalFile{day1, day2}, "review") {
		got = append(got, m)
	}
	if len(got) != 2 {
		t.Fatalf("len(matches) = %d, want 2", len(got))
	}
	// File order first, then entry order; headline beats tags.
	if got[0].Field != FieldHeadline || got[0].Entry.Time != "09:15" {
		t.Errorf("match 0 = %+v", got[0])
	}
	if got[1].Field != FieldTags || !got[1].Date.Equal(day2.Date) {
		t.Errorf("match 1 = %+v", got[1])
	}

	var detail []Match
	for m := range Search([]*models.JournalFile{day1, day2}, "cache key") {
		detail = append(detail, m)
	}
	if len(detail) != 2 {
		t.Fatalf("len(matches) = %d, want 2", len(detail))
	}
	if detail[0].Field != FieldDetails {
		t.Errorf("match field = %q, want details", detail[0].Field)
	}
}

func TestSearchStopsEarly(t *testing.T) {
	f := parseDay(t, sampleDay)
	n := 0
	for range Search([]*models.JournalFile{f}, "") {
		n++
		break
	}
	if n != 1 {
		t.Errorf("yielded %d matches after break", n)
	}
}

func entryTimes(f *models.JournalFile) []string {
	out := make([]string, len(f.Entries))
	for i, e := range f.Entries {
		out[i] = e.Time
	}
	return out
}

func indexOf(f *models.JournalFile, e *models.JournalEntry) int {
	for i, cur := range f.Entries {
		if cur == e {
			return i
		}
	}
	return -1
}
