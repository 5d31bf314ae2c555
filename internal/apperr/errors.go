// Package apperr defines the typed error taxonomy shared by all Dagaz
// components. Callers branch with errors.Is / errors.As; the structured
// types carry enough context for the transport layer to render a message.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAmbiguous         = errors.New("ambiguous match")
	ErrDuplicateSlug     = errors.New("duplicate slug")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrParse             = errors.New("parse error")
	ErrConflict          = errors.New("conflict")
	ErrRejected          = errors.New("change rejected")
)

// ParseError reports malformed structural syntax with its source line.
type ParseError struct {
	Line   int // 1-based, 0 when unknown
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("parse error: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// AmbiguousError reports an identifier matching multiple candidates at the
// same priority level. Candidates are slugs (or headlines when no slug is
// set) for the caller to disambiguate with.
type AmbiguousError struct {
	Identifier string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("identifier %q is ambiguous: matches %s",
		e.Identifier, strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousError) Unwrap() error { return ErrAmbiguous }

// DuplicateSlugError reports a stable-slug collision on create or update.
type DuplicateSlugError struct {
	Slug string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("slug %q is already in use", e.Slug)
}

func (e *DuplicateSlugError) Unwrap() error { return ErrDuplicateSlug }
