package tasks

import "github.com/starford/dagaz/internal/models"

// Synchronize regenerates the summary checklist section from the live
// entries: one checkbox line per task across the status-bearing sections,
// open entries first (in their section order), then closed entries, each
// checked iff the entry is closed. The progress cookie is recomputed from
// the regenerated items. The projection is idempotent: running it twice
// with no intervening mutation yields byte-identical output.
//
// A document without a checklist section is left untouched.
func Synchronize(doc *models.Document, sections SectionMap) {
	summary := doc.Section(sections.Checklist)
	if summary == nil {
		return
	}

	var items []models.ChecklistItem
	for _, closed := range []bool{false, true} {
		for _, name := range sections.TaskSections() {
			sec := doc.Section(name)
			if sec == nil {
				continue
			}
			for _, e := range sec.Entries {
				if !e.Status.Valid() {
					continue
				}
				if (e.Status == models.StatusClosed) != closed {
					continue
				}
				items = append(items, models.ChecklistItem{
					Done: closed,
					Text: e.Description(),
				})
			}
		}
	}

	summary.Checklist = &models.Checklist{Items: items}
	summary.HasCookie = true
	summary.RawHeading = "" // force heading re-render with the fresh cookie

	lines := make([]string, 0, len(items)+1)
	for _, it := range items {
		marker := "- [ ] "
		if it.Done {
			marker = "- [X] "
		}
		lines = append(lines, marker+it.Text)
	}
	lines = append(lines, "")
	summary.PreLines = lines
}
