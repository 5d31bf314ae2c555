package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/dagaz/internal/orgservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *orgservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *orgservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListTasks handles GET /api/tasks with an optional ?status= filter.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	items, err := h.svc.ListTasks(r.Context(), status)
	if err != nil {
		writeError(w, "list tasks", err)
		return
	}
	if items == nil {
		items = []*orgservice.TaskDetail{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tasks": items,
		"total": len(items),
	})
}

// GetTask handles GET /api/tasks/{identifier}.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	task, err := h.svc.GetTask(r.Context(), identifier)
	if err != nil {
		writeError(w, "get task", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// CreateTask handles POST /api/tasks.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Section  string `json:"section"`
		Fragment string `json:"fragment"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Section == "" || req.Fragment == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("section and fragment are required"))
		return
	}
	change, err := h.svc.CreateTask(r.Context(), req.Section, req.Fragment)
	if err != nil {
		writeError(w, "create task", err)
		return
	}
	writeJSON(w, http.StatusCreated, change)
}

// UpdateTask handles PUT /api/tasks/{identifier}.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	var req struct {
		Fragment string `json:"fragment"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Fragment == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("fragment is required"))
		return
	}
	change, err := h.svc.UpdateTask(r.Context(), identifier, req.Fragment)
	if err != nil {
		writeError(w, "update task", err)
		return
	}
	writeJSON(w, http.StatusOK, change)
}

// MoveTask handles POST /api/tasks/{identifier}/move.
func (h *Handler) MoveTask(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	var req struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.From == "" || req.To == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("from and to are required"))
		return
	}
	change, err := h.svc.MoveTask(r.Context(), identifier, req.From, req.To)
	if err != nil {
		writeError(w, "move task", err)
		return
	}
	writeJSON(w, http.StatusOK, change)
}

// PreviewTask handles POST /api/tasks/preview: the diff a create or update
// would apply, without writing.
func (h *Handler) PreviewTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier,omitempty"`
		Section    string `json:"section,omitempty"`
		Fragment   string `json:"fragment"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Fragment == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("fragment is required"))
		return
	}

	var diff string
	var err error
	switch {
	case req.Identifier != "":
		diff, err = h.svc.PreviewUpdate(r.Context(), req.Identifier, req.Fragment)
	case req.Section != "":
		diff, err = h.svc.PreviewCreate(r.Context(), req.Section, req.Fragment)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("identifier or section is required"))
		return
	}
	if err != nil {
		writeError(w, "preview task", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"diff": diff})
}

// SearchTasks handles GET /api/tasks/search.
func (h *Handler) SearchTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.SearchTasks(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
