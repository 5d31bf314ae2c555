package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/dagaz/internal/apperr"
)

// writeError maps domain errors to HTTP status codes. Ambiguous matches and
// duplicate slugs carry their detail through; everything unexpected is a
// logged 500.
func writeError(w http.ResponseWriter, op string, err error) {
	var ambig *apperr.AmbiguousError
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.As(err, &ambig):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      "ambiguous identifier",
			"candidates": ambig.Candidates,
		})
	case errors.Is(err, apperr.ErrDuplicateSlug),
		errors.Is(err, apperr.ErrConflict),
		errors.Is(err, apperr.ErrRejected):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrParse),
		errors.Is(err, apperr.ErrInvalidTransition):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
