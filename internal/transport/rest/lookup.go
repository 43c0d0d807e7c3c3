package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/termpipe/termpipe/internal/domain"
)

// lookupService defines the minimal interface needed by LookupHandler.
type lookupService interface {
	Lookup(ctx context.Context, query domain.LookupQuery) (*domain.LookupResult, error)
}

// LookupHandler serves the terminology lookup endpoint.
type LookupHandler struct {
	svc lookupService
	log *slog.Logger
}

// NewLookupHandler creates a LookupHandler.
func NewLookupHandler(svc lookupService, logger *slog.Logger) *LookupHandler {
	return &LookupHandler{svc: svc, log: logger.With("handler", "lookup")}
}

type lookupRequest struct {
	Term    string   `json:"term"`
	Sources []string `json:"sources"`
}

type candidateResponse struct {
	Term        string `json:"term"`
	Translation string `json:"translation"`
	Source      string `json:"source"`
	Rank        int    `json:"rank"`
	Context     string `json:"context,omitempty"`
	Subject     string `json:"subject,omitempty"`
	URL         string `json:"url,omitempty"`
}

type noticeResponse struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

type lookupResponse struct {
	Term       string              `json:"term"`
	Candidates []candidateResponse `json:"candidates"`
	Notices    []noticeResponse    `json:"notices"`
}

// Lookup handles POST /api/lookup.
func (h *LookupHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sources := make([]domain.Source, 0, len(req.Sources))
	for _, s := range req.Sources {
		src := domain.Source(s)
		if !src.IsValid() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown source %q", s))
			return
		}
		sources = append(sources, src)
	}

	result, err := h.svc.Lookup(r.Context(), domain.LookupQuery{
		Term:    req.Term,
		Sources: sources,
	})
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toLookupResponse(result))
}

func toLookupResponse(result *domain.LookupResult) lookupResponse {
	resp := lookupResponse{
		Term:       result.Term,
		Candidates: []candidateResponse{},
		Notices:    []noticeResponse{},
	}
	for _, c := range result.Candidates {
		resp.Candidates = append(resp.Candidates, candidateResponse{
			Term:        c.Term,
			Translation: c.Translation,
			Source:      string(c.Source),
			Rank:        c.Rank,
			Context:     c.Context,
			Subject:     c.Subject,
			URL:         c.URL,
		})
	}
	for _, n := range result.Notices {
		resp.Notices = append(resp.Notices, noticeResponse{
			Source: string(n.Source),
			Error:  n.Err.Error(),
		})
	}
	return resp
}
