package rest

import (
	"log/slog"
	"net/http"

	"github.com/termpipe/termpipe/internal/transport/middleware"
)

// Handlers groups the REST handlers mounted by the router.
type Handlers struct {
	Translate *TranslateHandler
	Lookup    *LookupHandler
	Glossary  *GlossaryHandler
	Actions   *ActionsHandler
	Health    *HealthHandler
}

// NewRouter mounts the API routes and wraps them in the standard
// middleware chain: request-id, logging, panic recovery.
func NewRouter(h Handlers, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/translate", h.Translate.Translate)
	mux.HandleFunc("POST /api/translate/estimate", h.Translate.Estimate)
	mux.HandleFunc("POST /api/lookup", h.Lookup.Lookup)

	mux.HandleFunc("GET /api/glossary", h.Glossary.List)
	mux.HandleFunc("POST /api/glossary", h.Glossary.Add)
	mux.HandleFunc("POST /api/glossary/import", h.Glossary.Import)
	mux.HandleFunc("POST /api/glossary/refresh", h.Glossary.Refresh)

	mux.HandleFunc("GET /api/actions/stats", h.Actions.Stats)

	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /live", h.Health.Live)

	chain := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
	)

	return chain(mux)
}
