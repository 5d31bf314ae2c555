// Package locator resolves entry identifiers against a parsed outline.
//
// An identifier may be a stable slug (:CUSTOM_ID:), a ticket token (GH-28),
// or a headline substring. Strategies are tried in that strict priority
// order; the first strategy producing any matches wins and later strategies
// are not consulted. Multiple matches within one strategy are an ambiguity
// the caller must resolve — the locator never guesses.
package locator

import (
	"strings"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/models"
)

// Hit is one located entry together with its containing section.
type Hit struct {
	Entry   *models.Entry
	Section *models.Section
}

// matcher is a single resolution strategy. It returns every entry in scope
// that matches the identifier; an empty result hands over to the next
// strategy.
type matcher func(identifier string, e *models.Entry) bool

var strategies = []matcher{
	matchSlug,
	matchTicket,
	matchHeadline,
}

func matchSlug(identifier string, e *models.Entry) bool {
	return e.Slug() != "" && e.Slug() == identifier
}

func matchTicket(identifier string, e *models.Entry) bool {
	ticket := e.Ticket()
	return ticket != "" && strings.EqualFold(ticket, identifier)
}

func matchHeadline(identifier string, e *models.Entry) bool {
	return strings.Contains(strings.ToLower(e.Headline), strings.ToLower(identifier))
}

// Find resolves identifier within the named sections of doc. An empty
// sections list searches every section. Returns apperr.ErrNotFound when
// nothing matches and an apperr.AmbiguousError when one strategy yields
// several candidates.
func Find(doc *models.Document, identifier string, sections ...string) (Hit, error) {
	scope := collectScope(doc, sections)

	for _, try := range strategies {
		var hits []Hit
		for _, h := range scope {
			if try(identifier, h.Entry) {
				hits = append(hits, h)
			}
		}
		switch len(hits) {
		case 0:
			continue
		case 1:
			return hits[0], nil
		default:
			return Hit{}, &apperr.AmbiguousError{
				Identifier: identifier,
				Candidates: describe(hits),
			}
		}
	}

	return Hit{}, apperr.ErrNotFound
}

// collectScope gathers every task entry in the requested sections,
// preserving document order.
func collectScope(doc *models.Document, sections []string) []Hit {
	inScope := func(name string) bool {
		if len(sections) == 0 {
			return true
		}
		for _, s := range sections {
			if s == name {
				return true
			}
		}
		return false
	}

	var out []Hit
	for _, sec := range doc.Sections {
		if !inScope(sec.Name) {
			continue
		}
		for _, e := range sec.Entries {
			if !e.Status.Valid() {
				continue
			}
			out = append(out, Hit{Entry: e, Section: sec})
		}
	}
	return out
}

// describe renders candidate identifiers for an ambiguity error: the slug
// when set, the headline otherwise.
func describe(hits []Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		if slug := h.Entry.Slug(); slug != "" {
			out[i] = slug
		} else {
			out[i] = h.Entry.Headline
		}
	}
	return out
}
