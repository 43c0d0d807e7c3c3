package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/termpipe/termpipe/internal/domain"
)

// statsProvider defines the minimal interface needed by ActionsHandler.
type statsProvider interface {
	Stats(ctx context.Context) (*domain.ActionStats, error)
}

// ActionsHandler serves audit-trail aggregates.
type ActionsHandler struct {
	svc statsProvider
	log *slog.Logger
}

// NewActionsHandler creates an ActionsHandler.
func NewActionsHandler(svc statsProvider, logger *slog.Logger) *ActionsHandler {
	return &ActionsHandler{svc: svc, log: logger.With("handler", "actions")}
}

type termCountResponse struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

type statsResponse struct {
	Total           int                 `json:"total"`
	BySource        map[string]int      `json:"bySource"`
	AddedToGlossary int                 `json:"addedToGlossary"`
	TopTerms        []termCountResponse `json:"topTerms"`
}

// Stats handles GET /api/actions/stats.
func (h *ActionsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	resp := statsResponse{
		Total:           stats.Total,
		BySource:        stats.BySource,
		AddedToGlossary: stats.AddedToGlossary,
		TopTerms:        []termCountResponse{},
	}
	for _, tc := range stats.TopTerms {
		resp.TopTerms = append(resp.TopTerms, termCountResponse{Term: tc.Term, Count: tc.Count})
	}

	writeJSON(w, http.StatusOK, resp)
}
