package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/termpipe/termpipe/internal/translate"
)

// translateService defines the minimal interface needed by TranslateHandler.
type translateService interface {
	Translate(ctx context.Context, sourceText string) (*translate.Output, error)
	Estimate(ctx context.Context, sourceText string) (float64, error)
}

// TranslateHandler serves the translation endpoint.
type TranslateHandler struct {
	svc translateService
	log *slog.Logger
}

// NewTranslateHandler creates a TranslateHandler.
func NewTranslateHandler(svc translateService, logger *slog.Logger) *TranslateHandler {
	return &TranslateHandler{svc: svc, log: logger.With("handler", "translate")}
}

type translateRequest struct {
	Text string `json:"text"`
}

type translateResponse struct {
	Translation   string   `json:"translation"`
	Model         string   `json:"model"`
	InputTokens   int      `json:"inputTokens"`
	OutputTokens  int      `json:"outputTokens"`
	CostUSD       float64  `json:"costUsd"`
	TermsUsed     []string `json:"termsUsed"`
	GlossaryUsed  bool     `json:"glossaryUsed"`
	StaleGlossary bool     `json:"staleGlossary"`
}

// Translate handles POST /api/translate.
func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	}

	out, err := h.svc.Translate(r.Context(), req.Text)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	termsUsed := out.TermsUsed
	if termsUsed == nil {
		termsUsed = []string{}
	}

	writeJSON(w, http.StatusOK, translateResponse{
		Translation:   out.Text,
		Model:         out.Model,
		InputTokens:   out.InputTokens,
		OutputTokens:  out.OutputTokens,
		CostUSD:       out.CostUSD,
		TermsUsed:     termsUsed,
		GlossaryUsed:  out.GlossaryUsed,
		StaleGlossary: out.StaleGlossary,
	})
}

type estimateResponse struct {
	EstimatedCostUSD float64 `json:"estimatedCostUsd"`
}

// Estimate handles POST /api/translate/estimate. It prices a translation
// up front, before any model call is made.
func (h *TranslateHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	}

	cost, err := h.svc.Estimate(r.Context(), req.Text)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, estimateResponse{EstimatedCostUSD: cost})
}
