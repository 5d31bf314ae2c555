package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/dagaz/internal/journal"
	"github.com/starford/dagaz/internal/orgservice"
)

const dayParamLayout = "2006-01-02"

// dayParam parses the {date} URL segment as YYYY-MM-DD.
func dayParam(r *http.Request) (time.Time, bool) {
	d, err := time.Parse(dayParamLayout, chi.URLParam(r, "date"))
	return d, err == nil
}

// ListDays handles GET /api/journal: available day dates, newest first.
func (h *Handler) ListDays(w http.ResponseWriter, r *http.Request) {
	dates, err := h.svc.ListDays(r.Context())
	if err != nil {
		writeError(w, "list days", err)
		return
	}
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(dayParamLayout)
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": out})
}

// GetDay handles GET /api/journal/{date}.
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, ok := dayParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date, expected YYYY-MM-DD"))
		return
	}
	day, err := h.svc.GetDay(r.Context(), date)
	if err != nil {
		writeError(w, "get day", err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// CreateJournalEntry handles POST /api/journal/{date}/entries.
func (h *Handler) CreateJournalEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := dayParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date, expected YYYY-MM-DD"))
		return
	}
	var req orgservice.EntryInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Headline == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("headline is required"))
		return
	}
	change, err := h.svc.CreateJournalEntry(r.Context(), date, req)
	if err != nil {
		writeError(w, "create journal entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, change)
}

// UpdateJournalEntry handles PUT /api/journal/{date}/entries/{identifier}.
func (h *Handler) UpdateJournalEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := dayParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date, expected YYYY-MM-DD"))
		return
	}
	identifier := chi.URLParam(r, "identifier")
	var fields journal.EntryFields
	if !decodeJSON(w, r, &fields) {
		return
	}
	change, err := h.svc.UpdateJournalEntry(r.Context(), date, identifier, fields)
	if err != nil {
		writeError(w, "update journal entry", err)
		return
	}
	writeJSON(w, http.StatusOK, change)
}

// PreviewJournalEntry handles POST /api/journal/{date}/preview.
func (h *Handler) PreviewJournalEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := dayParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date, expected YYYY-MM-DD"))
		return
	}
	var req struct {
		Identifier string                 `json:"identifier,omitempty"`
		Entry      *orgservice.EntryInput `json:"entry,omitempty"`
		Fields     *journal.EntryFields   `json:"fields,omitempty"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var diff string
	var err error
	switch {
	case req.Identifier != "" && req.Fields != nil:
		diff, err = h.svc.PreviewJournalUpdate(r.Context(), date, req.Identifier, *req.Fields)
	case req.Entry != nil:
		diff, err = h.svc.PreviewJournalCreate(r.Context(), date, *req.Entry)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("entry or identifier+fields is required"))
		return
	}
	if err != nil {
		writeError(w, "preview journal entry", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"diff": diff})
}

// SearchJournal handles GET /api/journal/search.
func (h *Handler) SearchJournal(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	results, err := h.svc.SearchJournal(r.Context(), q, days)
	if err != nil {
		writeError(w, "search journal", err)
		return
	}
	if results == nil {
		results = []orgservice.JournalMatch{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
