package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/termpipe/termpipe/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleError maps domain errors to HTTP statuses. Anything unmapped is a
// 500 with the detail kept out of the response body.
func handleError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidRuleSet):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInputTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrWriteFailed):
		log.ErrorContext(r.Context(), "write failed", slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, "glossary write failed")
	default:
		log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
