// Package audit implements the action-log store using PostgreSQL.
// It provides append-only operations plus aggregate statistics.
package audit

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/termpipe/termpipe/internal/adapter/postgres"
	"github.com/termpipe/termpipe/internal/domain"
)

// topTermsLimit caps the most-checked-terms aggregate.
const topTermsLimit = 10

// Repo provides action-log persistence backed by PostgreSQL.
type Repo struct {
	q postgres.Querier
}

// New creates a new action-log repository.
func New(q postgres.Querier) *Repo {
	return &Repo{q: q}
}

// Append inserts one record. Records are never updated or deleted.
func (r *Repo) Append(ctx context.Context, rec domain.ActionRecord) error {
	sql, args, err := postgres.Builder().
		Insert("action_log").
		Columns("id", "created_at", "source_term", "target_term", "source", "added_to_glossary").
		Values(rec.ID, rec.CreatedAt, rec.SourceTerm, rec.TargetTerm, rec.Source, rec.AddedToGlossary).
		ToSql()
	if err != nil {
		return fmt.Errorf("action_log insert build: %w", err)
	}

	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "action_log", rec.SourceTerm)
	}

	return nil
}

// Stats aggregates the log: total records, records per source, how many
// actions added a glossary entry, and the most frequently checked terms
// (lookups only, translations excluded).
func (r *Repo) Stats(ctx context.Context) (*domain.ActionStats, error) {
	stats := &domain.ActionStats{BySource: map[string]int{}}

	totalsSQL, _, err := postgres.Builder().
		Select("COUNT(*)", "COUNT(*) FILTER (WHERE added_to_glossary)").
		From("action_log").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("action_log totals build: %w", err)
	}
	if err := r.q.QueryRow(ctx, totalsSQL).Scan(&stats.Total, &stats.AddedToGlossary); err != nil {
		return nil, fmt.Errorf("action_log totals: %w", err)
	}

	bySourceSQL, _, err := postgres.Builder().
		Select("source", "COUNT(*) AS n").
		From("action_log").
		GroupBy("source").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("action_log by-source build: %w", err)
	}
	var sourceRows []struct {
		Source string `db:"source"`
		N      int    `db:"n"`
	}
	if err := pgxscan.Select(ctx, r.q, &sourceRows, bySourceSQL); err != nil {
		return nil, fmt.Errorf("action_log by-source: %w", err)
	}
	for _, row := range sourceRows {
		stats.BySource[row.Source] = row.N
	}

	topSQL, args, err := postgres.Builder().
		Select("source_term", "COUNT(*) AS n").
		From("action_log").
		Where(squirrel.NotEq{"source": domain.ActionTranslation}).
		Where(squirrel.NotEq{"source_term": ""}).
		GroupBy("source_term").
		OrderBy("n DESC", "source_term ASC").
		Limit(topTermsLimit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("action_log top-terms build: %w", err)
	}
	var termRows []struct {
		SourceTerm string `db:"source_term"`
		N          int    `db:"n"`
	}
	if err := pgxscan.Select(ctx, r.q, &termRows, topSQL, args...); err != nil {
		return nil, fmt.Errorf("action_log top-terms: %w", err)
	}
	for _, row := range termRows {
		stats.TopTerms = append(stats.TopTerms, domain.TermCount{Term: row.SourceTerm, Count: row.N})
	}

	return stats, nil
}
