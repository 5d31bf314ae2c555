package outline

import "time"

// Timestamp layout used in property drawers, e.g. "2025-12-26 Fri 01:45".
// Timestamps are naive: they carry the wall clock of the editing
// environment and no timezone.
const timestampLayout = "2006-01-02 Mon 15:04"

// ActiveTimestamp renders t in the active (angle-bracket) form used by
// :CREATED: and :CLOSED:.
func ActiveTimestamp(t time.Time) string {
	return "<" + t.Format(timestampLayout) + ">"
}

// InactiveTimestamp renders t in the inactive (square-bracket) form used by
// :MODIFIED:.
func InactiveTimestamp(t time.Time) string {
	return "[" + t.Format(timestampLayout) + "]"
}
