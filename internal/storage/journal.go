package storage

import (
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const journalDateLayout = "20060102"

// JournalNaming resolves day-file names inside a journal directory, where
// files are named YYYYMMDD with or without an .org extension. New files
// follow whichever convention the directory already uses.
type JournalNaming struct {
	Dir string // journal directory, relative to the org root
}

// PathFor returns the relative path of the day file for date, preferring an
// existing file (with either extension) and otherwise the detected
// convention for new files.
func (n JournalNaming) PathFor(p Provider, date time.Time) string {
	base := filepath.Join(n.Dir, date.Format(journalDateLayout))
	if p.Exists(base + ".org") {
		return base + ".org"
	}
	if p.Exists(base) {
		return base
	}
	return base + n.detectExtension(p)
}

// detectExtension returns ".org" when any existing day file carries it.
func (n JournalNaming) detectExtension(p Provider) string {
	files, err := p.List(n.Dir)
	if err != nil {
		return ""
	}
	for _, f := range files {
		name := filepath.Base(f.Path)
		if stem, ok := strings.CutSuffix(name, ".org"); ok && isDayStem(stem) {
			return ".org"
		}
	}
	return ""
}

// Days returns the dates of all existing day files, newest first.
func (n JournalNaming) Days(p Provider) ([]time.Time, error) {
	files, err := p.List(n.Dir)
	if err != nil {
		return nil, err
	}
	var dates []time.Time
	for _, f := range files {
		stem := strings.TrimSuffix(filepath.Base(f.Path), ".org")
		if !isDayStem(stem) {
			continue
		}
		d, err := time.Parse(journalDateLayout, stem)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	return dates, nil
}

func isDayStem(stem string) bool {
	if len(stem) != 8 {
		return false
	}
	for _, r := range stem {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
