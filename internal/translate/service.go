package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/termpipe/termpipe/internal/domain"
)

// Translator performs the model call for a composed request.
type Translator interface {
	Translate(ctx context.Context, req *Request) (*ModelResult, error)
}

// ModelResult is what the model returned, plus usage metadata.
type ModelResult struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
}

// snapshotProvider yields the current glossary snapshot.
type snapshotProvider interface {
	Get(ctx context.Context) (*domain.GlossarySnapshot, error)
}

// recorder appends action records to the audit trail.
type recorder interface {
	Record(ctx context.Context, rec domain.ActionRecord) error
}

// Output is the result of one translation run.
type Output struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
	CostUSD      float64

	TermsUsed    []string
	GlossaryUsed bool

	// StaleGlossary is true when the glossary snapshot used was served
	// past its TTL after a failed refresh.
	StaleGlossary bool
}

// Service orchestrates one translation: glossary snapshot → request →
// model call → audit record.
type Service struct {
	cache   snapshotProvider
	builder *Builder
	model   Translator
	rules   *domain.RuleSet
	audit   recorder
	log     *slog.Logger
}

// NewService creates the translation service. The rule set is fixed for
// the life of the service.
func NewService(cache snapshotProvider, builder *Builder, model Translator, rules *domain.RuleSet, audit recorder, logger *slog.Logger) *Service {
	return &Service{
		cache:   cache,
		builder: builder,
		model:   model,
		rules:   rules,
		audit:   audit,
		log:     logger.With("service", "translate"),
	}
}

// Translate runs the pipeline for one source text. A stale glossary
// snapshot degrades the run (flagged on the output) instead of failing
// it; an oversized input or a model failure fails the run.
func (s *Service) Translate(ctx context.Context, sourceText string) (*Output, error) {
	snap, err := s.cache.Get(ctx)
	stale := false
	if err != nil {
		if snap == nil || !errors.Is(err, domain.ErrStaleData) {
			return nil, fmt.Errorf("translate: glossary: %w", err)
		}
		stale = true
	}

	req, err := s.builder.Build(sourceText, snap, s.rules)
	if err != nil {
		return nil, err
	}

	res, err := s.model.Translate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("translate: model: %w", err)
	}

	out := &Output{
		Text:          res.Text,
		Model:         res.Model,
		InputTokens:   res.InputTokens,
		OutputTokens:  res.OutputTokens,
		CostUSD:       res.CostUSD,
		TermsUsed:     req.TermsUsed,
		GlossaryUsed:  req.GlossaryUsed,
		StaleGlossary: stale,
	}

	// The audit row is informational; a failed append never fails the
	// translation.
	if err := s.audit.Record(ctx, domain.ActionRecord{
		SourceTerm: summarize(sourceText),
		Source:     domain.ActionTranslation,
	}); err != nil {
		s.log.WarnContext(ctx, "translation audit record failed", slog.String("error", err.Error()))
	}

	s.log.InfoContext(ctx, "translation finished",
		slog.Int("input_tokens", res.InputTokens),
		slog.Int("output_tokens", res.OutputTokens),
		slog.Bool("glossary_used", out.GlossaryUsed),
		slog.Bool("stale_glossary", stale),
	)

	return out, nil
}

// Estimate approximates the cost of translating sourceText without a
// model call, using the character heuristic of EstimateCost. The current
// glossary size feeds the overhead; an unavailable snapshot degrades the
// estimate to text-only instead of failing it. The same input limit as
// Translate applies.
func (s *Service) Estimate(ctx context.Context, sourceText string) (float64, error) {
	if length := utf8.RuneCountInString(sourceText); length > s.builder.MaxInputChars {
		return 0, &domain.InputTooLargeError{Length: length, Max: s.builder.MaxInputChars}
	}

	glossarySize := 0
	if snap, _ := s.cache.Get(ctx); snap != nil {
		glossarySize = len(snap.Entries)
	}

	return EstimateCost(sourceText, glossarySize), nil
}

// summarize truncates the source text to a short audit-friendly excerpt.
func summarize(text string) string {
	const maxRunes = 80
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes]) + "…"
}
