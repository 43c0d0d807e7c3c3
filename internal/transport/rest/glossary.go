package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/termpipe/termpipe/internal/domain"
	"github.com/termpipe/termpipe/internal/glossary"
)

// glossaryCache defines the minimal cache interface needed by GlossaryHandler.
type glossaryCache interface {
	Get(ctx context.Context) (*domain.GlossarySnapshot, error)
	Invalidate()
}

// glossaryWriter defines the minimal writer interface needed by GlossaryHandler.
type glossaryWriter interface {
	Write(ctx context.Context, entry domain.GlossaryEntry, source string) (*glossary.WriteResult, error)
	Import(ctx context.Context, entries []domain.GlossaryEntry) (*domain.ImportReport, error)
}

// GlossaryHandler serves glossary read and write endpoints.
type GlossaryHandler struct {
	cache  glossaryCache
	writer glossaryWriter
	log    *slog.Logger
}

// NewGlossaryHandler creates a GlossaryHandler.
func NewGlossaryHandler(cache glossaryCache, writer glossaryWriter, logger *slog.Logger) *GlossaryHandler {
	return &GlossaryHandler{cache: cache, writer: writer, log: logger.With("handler", "glossary")}
}

type entryPayload struct {
	SourceTerm string `json:"sourceTerm"`
	TargetTerm string `json:"targetTerm"`
	Notes      string `json:"notes,omitempty"`
}

type glossaryResponse struct {
	Entries   []entryPayload `json:"entries"`
	Revision  string         `json:"revision"`
	FetchedAt time.Time      `json:"fetchedAt"`
	Stale     bool           `json:"stale"`
}

type writeRequest struct {
	SourceTerm string `json:"sourceTerm"`
	TargetTerm string `json:"targetTerm"`
	Notes      string `json:"notes"`
	Source     string `json:"source"`
}

type writeResponse struct {
	Entry        entryPayload `json:"entry"`
	Created      bool         `json:"created"`
	AuditWarning string       `json:"auditWarning,omitempty"`
}

type importRequest struct {
	Entries []writeRequest `json:"entries"`
}

type importResponse struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// List handles GET /api/glossary.
func (h *GlossaryHandler) List(w http.ResponseWriter, r *http.Request) {
	snap, err := h.cache.Get(r.Context())
	stale := false
	if err != nil {
		if snap == nil || !errors.Is(err, domain.ErrStaleData) {
			handleError(w, r, h.log, err)
			return
		}
		stale = true
	}

	writeJSON(w, http.StatusOK, toGlossaryResponse(snap, stale))
}

// Add handles POST /api/glossary.
func (h *GlossaryHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req writeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.writer.Write(r.Context(), domain.GlossaryEntry{
		SourceTerm: req.SourceTerm,
		TargetTerm: req.TargetTerm,
		Notes:      req.Notes,
	}, req.Source)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}

	resp := writeResponse{
		Entry: entryPayload{
			SourceTerm: res.Entry.SourceTerm,
			TargetTerm: res.Entry.TargetTerm,
			Notes:      res.Entry.Notes,
		},
		Created: res.Created,
	}
	if res.AuditErr != nil {
		resp.AuditWarning = res.AuditErr.Error()
	}

	writeJSON(w, status, resp)
}

// Import handles POST /api/glossary/import.
func (h *GlossaryHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Entries) == 0 {
		writeError(w, http.StatusBadRequest, "entries must not be empty")
		return
	}

	entries := make([]domain.GlossaryEntry, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = domain.GlossaryEntry{
			SourceTerm: e.SourceTerm,
			TargetTerm: e.TargetTerm,
			Notes:      e.Notes,
		}
	}

	report, err := h.writer.Import(r.Context(), entries)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, importResponse{
		Added:   report.Added,
		Updated: report.Updated,
		Skipped: report.Skipped,
	})
}

// Refresh handles POST /api/glossary/refresh. It drops the cached snapshot
// and refetches immediately.
func (h *GlossaryHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.cache.Invalidate()

	snap, err := h.cache.Get(r.Context())
	stale := false
	if err != nil {
		if snap == nil || !errors.Is(err, domain.ErrStaleData) {
			handleError(w, r, h.log, err)
			return
		}
		stale = true
	}

	writeJSON(w, http.StatusOK, toGlossaryResponse(snap, stale))
}

func toGlossaryResponse(snap *domain.GlossarySnapshot, stale bool) glossaryResponse {
	resp := glossaryResponse{
		Entries:   []entryPayload{},
		Revision:  snap.Revision,
		FetchedAt: snap.FetchedAt,
		Stale:     stale,
	}
	for _, e := range snap.Entries {
		resp.Entries = append(resp.Entries, entryPayload{
			SourceTerm: e.SourceTerm,
			TargetTerm: e.TargetTerm,
			Notes:      e.Notes,
		})
	}
	return resp
}
