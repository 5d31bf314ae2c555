// Package diffview renders a compact change preview: only the removed and
// added lines, with a "− " or "+ " marker each. Callers show the preview to
// a human before a file write is committed.
package diffview

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// NoChanges is returned when the two texts are line-identical.
const NoChanges = "(no changes)"

// Format diffs old against new and returns the marked changed lines. Equal
// regions are omitted; a replace block lists its removed lines before its
// added lines.
func Format(old, new string) string {
	oldLines := splitLines(old)
	newLines := splitLines(new)

	matcher := difflib.NewMatcher(oldLines, newLines)
	var out []string
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'r':
			for _, line := range oldLines[op.I1:op.I2] {
				out = append(out, "− "+line)
			}
			for _, line := range newLines[op.J1:op.J2] {
				out = append(out, "+ "+line)
			}
		case 'd':
			for _, line := range oldLines[op.I1:op.I2] {
				out = append(out, "− "+line)
			}
		case 'i':
			for _, line := range newLines[op.J1:op.J2] {
				out = append(out, "+ "+line)
			}
		}
	}
	if len(out) == 0 {
		return NoChanges
	}
	return strings.Join(out, "\n")
}

// Changed reports whether Format would produce any output.
func Changed(old, new string) bool {
	return old != new && Format(old, new) != NoChanges
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
