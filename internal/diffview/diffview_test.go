package diffview

import (
	"strings"
	"testing"
)

func TestFormatNoChanges(t *testing.T) {
	text := "line one\nline two"
	if got := Format(text, text); got != NoChanges {
		t.Errorf("Format() = %q, want %q", got, NoChanges)
	}
	if Changed(text, text) {
		t.Error("Changed() = true for identical text")
	}
}

func TestFormatAddition(t *testing.T) {
	old := "a\nb"
	new := "a\nb\nc"
	got := Format(old, new)
	if got != "+ c" {
		t.Errorf("Format() = %q, want %q", got, "+ c")
	}
}

func TestFormatRemoval(t *testing.T) {
	got := Format("a\nb\nc", "a\nc")
	if got != "− b" {
		t.Errorf("Format() = %q, want %q", got, "− b")
	}
}

func TestFormatReplaceOrdersRemovedFirst(t *testing.T) {
	got := Format("a\nold line\nz", "a\nnew line\nz")
	want := "− old line\n+ new line"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatOmitsEqualRegions(t *testing.T) {
	old := strings.Repeat("same\n", 50) + "changed"
	new := strings.Repeat("same\n", 50) + "different"
	got := Format(old, new)
	if strings.Contains(got, "same") {
		t.Errorf("Format() leaked equal lines:\n%s", got)
	}
}

func TestFormatFromEmpty(t *testing.T) {
	got := Format("", "first\nsecond")
	want := "+ first\n+ second"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestChanged(t *testing.T) {
	if !Changed("a", "b") {
		t.Error("Changed() = false for different text")
	}
	if !Changed("", "a") {
		t.Error("Changed() = false for addition from empty")
	}
}
