package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	anthropicadapter "github.com/termpipe/termpipe/internal/adapter/anthropic"
	"github.com/termpipe/termpipe/internal/adapter/postgres"
	auditrepo "github.com/termpipe/termpipe/internal/adapter/postgres/audit"
	glossaryrepo "github.com/termpipe/termpipe/internal/adapter/postgres/glossary"
	"github.com/termpipe/termpipe/internal/adapter/provider/oqlf"
	"github.com/termpipe/termpipe/internal/adapter/provider/termium"
	"github.com/termpipe/termpipe/internal/auditlog"
	"github.com/termpipe/termpipe/internal/config"
	"github.com/termpipe/termpipe/internal/domain"
	"github.com/termpipe/termpipe/internal/glossary"
	"github.com/termpipe/termpipe/internal/lookup"
	"github.com/termpipe/termpipe/internal/provider"
	"github.com/termpipe/termpipe/internal/rules"
	"github.com/termpipe/termpipe/internal/translate"
	"github.com/termpipe/termpipe/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, wires the
// glossary cache, translation pipeline, lookup aggregator, and audit
// trail, and serves the REST API until the context is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	glossaryStore := glossaryrepo.New(pool)
	auditStore := auditrepo.New(pool)

	cache := glossary.NewCache(glossaryStore, cfg.Cache.TTL, cfg.Cache.SnapshotPath, logger)
	if err := cache.WarmFromDisk(); err != nil {
		logger.Warn("glossary snapshot pre-warm failed", slog.String("error", err.Error()))
	}

	ruleSet, err := rules.Load(cfg.Rules.Path)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	logger.Info("rule set loaded", slog.Int("rules", ruleSet.Len()))

	audit := auditlog.New(auditStore, logger)
	writer := glossary.NewWriter(glossaryStore, cache, audit, logger)

	if cfg.Translator.APIKey == "" {
		return fmt.Errorf("translator api key is not set")
	}
	model := anthropicadapter.New(anthropicadapter.Config{
		APIKey:      cfg.Translator.APIKey,
		Model:       cfg.Translator.Model,
		MaxTokens:   cfg.Translator.MaxTokens,
		Temperature: cfg.Translator.Temperature,
		Timeout:     cfg.Translator.Timeout,
	}, logger)
	builder := translate.NewBuilder(cfg.Translator.MaxInputChars)
	translator := translate.NewService(cache, builder, model, ruleSet, audit, logger)

	sources := map[domain.Source]provider.TermSource{
		domain.SourceTermium: termium.NewProvider(logger),
		domain.SourceOQLF:    oqlf.NewProvider(logger),
	}
	priority := make([]domain.Source, len(cfg.Lookup.Priority))
	for i, name := range cfg.Lookup.Priority {
		priority[i] = domain.Source(name)
	}
	aggregator := lookup.New(sources, priority, lookup.Options{
		SourceTimeout:   cfg.Lookup.SourceTimeout,
		BreakerFailures: cfg.Lookup.BreakerFailures,
		BreakerCooldown: cfg.Lookup.BreakerCooldown,
	}, logger)

	router := rest.NewRouter(rest.Handlers{
		Translate: rest.NewTranslateHandler(translator, logger),
		Lookup:    rest.NewLookupHandler(aggregator, logger),
		Glossary:  rest.NewGlossaryHandler(cache, writer, logger),
		Actions:   rest.NewActionsHandler(audit, logger),
		Health:    rest.NewHealthHandler(pool, cache, BuildVersion()),
	}, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("stopped")
	return nil
}
