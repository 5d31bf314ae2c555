package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/dagaz/internal/orgservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *orgservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Tasks.
	r.Get("/tasks", h.ListTasks)
	r.Post("/tasks", h.CreateTask)
	r.Get("/tasks/search", h.SearchTasks)
	r.Post("/tasks/preview", h.PreviewTask)
	r.Get("/tasks/{identifier}", h.GetTask)
	r.Put("/tasks/{identifier}", h.UpdateTask)
	r.Post("/tasks/{identifier}/move", h.MoveTask)

	// Journal.
	r.Get("/journal", h.ListDays)
	r.Get("/journal/search", h.SearchJournal)
	r.Get("/journal/{date}", h.GetDay)
	r.Post("/journal/{date}/entries", h.CreateJournalEntry)
	r.Put("/journal/{date}/entries/{identifier}", h.UpdateJournalEntry)
	r.Post("/journal/{date}/preview", h.PreviewJournalEntry)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
