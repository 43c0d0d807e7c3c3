// Package lookup aggregates candidate translations from external
// terminology authorities.
package lookup

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"github.com/termpipe/termpipe/internal/domain"
	"github.com/termpipe/termpipe/internal/provider"
)

// Options tunes the aggregator.
type Options struct {
	// SourceTimeout bounds each authority query independently; the whole
	// lookup never takes longer than the slowest allowed source.
	SourceTimeout time.Duration

	// BreakerFailures is the consecutive-failure count that opens a
	// source's circuit; BreakerCooldown is how long it stays open.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

type sourceClient struct {
	name    domain.Source
	source  provider.TermSource
	breaker *gobreaker.CircuitBreaker
}

// Aggregator queries terminology authorities concurrently and merges their
// results into one ranked, deduplicated candidate list. It never mutates
// the glossary; acceptance is the caller's decision.
type Aggregator struct {
	clients map[domain.Source]*sourceClient
	// priority orders sources for dedup attribution and ranking ties.
	priority []domain.Source
	timeout  time.Duration
	log      *slog.Logger
}

// New creates an aggregator over the given sources. priority orders them;
// every source in the map must appear in priority.
func New(sources map[domain.Source]provider.TermSource, priority []domain.Source, opts Options, logger *slog.Logger) *Aggregator {
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = 10 * time.Second
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 3
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = time.Minute
	}

	clients := make(map[domain.Source]*sourceClient, len(sources))
	for name, src := range sources {
		clients[name] = &sourceClient{
			name:   name,
			source: src,
			breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
				Name:        string(name),
				MaxRequests: 1,
				Timeout:     opts.BreakerCooldown,
				ReadyToTrip: func(c gobreaker.Counts) bool {
					return c.ConsecutiveFailures >= opts.BreakerFailures
				},
			}),
		}
	}

	return &Aggregator{
		clients:  clients,
		priority: priority,
		timeout:  opts.SourceTimeout,
		log:      logger.With("service", "lookup"),
	}
}

// Lookup queries the requested sources concurrently. A source that times
// out, is unreachable, or has an open circuit contributes zero candidates
// and one notice; only an empty term fails the call. Candidates are
// deduplicated by normalized (term, translation) pair, attributed to the
// higher-priority source, and ranked: exact term matches first, then
// source priority, then page order.
func (a *Aggregator) Lookup(ctx context.Context, query domain.LookupQuery) (*domain.LookupResult, error) {
	term := domain.NormalizeTerm(query.Term)
	if term == "" {
		return nil, domain.NewValidationError("term", "must not be empty")
	}

	requested := a.requestedOrder(query.Sources)

	perSource := make([][]provider.TermResult, len(requested))
	notices := make([]*domain.SourceNotice, len(requested))

	// Each query runs on its own timeout detached from the caller's
	// cancellation: an abandoned lookup lets in-flight fetches run to
	// completion or timeout.
	g := new(errgroup.Group)
	for i, name := range requested {
		client := a.clients[name]
		g.Go(func() error {
			srcCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
			defer cancel()

			started := time.Now()
			v, err := client.breaker.Execute(func() (any, error) {
				return client.source.FetchTerms(srcCtx, query.Term)
			})
			if err != nil {
				a.log.WarnContext(ctx, "source failed",
					slog.String("source", string(client.name)),
					slog.Duration("elapsed", time.Since(started)),
					slog.String("error", err.Error()),
				)
				notices[i] = &domain.SourceNotice{
					Source: client.name,
					Err:    &domain.SourceError{Source: client.name, Err: err},
				}
				return nil
			}
			perSource[i] = v.([]provider.TermResult)
			return nil
		})
	}
	// Goroutines report through notices, never an error.
	_ = g.Wait()

	result := &domain.LookupResult{Term: query.Term}
	for _, n := range notices {
		if n != nil {
			result.Notices = append(result.Notices, *n)
		}
	}
	result.Candidates = merge(term, requested, perSource)

	a.log.InfoContext(ctx, "lookup finished",
		slog.String("term", query.Term),
		slog.Int("candidates", len(result.Candidates)),
		slog.Int("notices", len(result.Notices)),
	)

	return result, nil
}

// requestedOrder filters the priority list down to the requested sources;
// an empty request means all configured sources.
func (a *Aggregator) requestedOrder(sources []domain.Source) []domain.Source {
	want := make(map[domain.Source]bool, len(sources))
	for _, s := range sources {
		want[s] = true
	}

	var order []domain.Source
	for _, name := range a.priority {
		if _, ok := a.clients[name]; !ok {
			continue
		}
		if len(sources) == 0 || want[name] {
			order = append(order, name)
		}
	}
	return order
}

// merge deduplicates and ranks raw results. Sources arrive in priority
// order, so on a duplicate the earlier (higher-priority) source keeps the
// candidate. The sort is stable; within the same exactness tier the
// priority-then-page order is preserved.
func merge(normalizedTerm string, order []domain.Source, perSource [][]provider.TermResult) []domain.LookupCandidate {
	seen := make(map[string]bool)
	var candidates []domain.LookupCandidate

	for i, name := range order {
		for _, r := range perSource[i] {
			if r.Term == "" || r.Translation == "" {
				continue
			}
			key := domain.CandidateKey(r.Term, r.Translation)
			if seen[key] {
				continue
			}
			seen[key] = true
			candidates = append(candidates, domain.LookupCandidate{
				Term:        r.Term,
				Translation: r.Translation,
				Source:      name,
				Context:     r.Context,
				Subject:     r.Subject,
				URL:         r.URL,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return exactness(candidates[i], normalizedTerm) > exactness(candidates[j], normalizedTerm)
	})
	for i := range candidates {
		candidates[i].Rank = i + 1
	}

	return candidates
}

func exactness(c domain.LookupCandidate, normalizedTerm string) int {
	if domain.NormalizeTerm(c.Term) == normalizedTerm {
		return 1
	}
	return 0
}
