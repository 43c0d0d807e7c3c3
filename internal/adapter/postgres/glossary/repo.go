// Package glossary implements the glossary store using PostgreSQL.
//
// The table is append-only: superseding an entry inserts a newer row for
// the same source term; ReadAll materializes the active snapshot.
package glossary

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/termpipe/termpipe/internal/adapter/postgres"
	"github.com/termpipe/termpipe/internal/domain"
)

// Repo provides glossary persistence backed by PostgreSQL.
type Repo struct {
	q postgres.Querier
}

// New creates a new glossary repository.
func New(q postgres.Querier) *Repo {
	return &Repo{q: q}
}

// readAllSQL materializes the active snapshot: the newest row per source
// term, ordered by each term's first insertion so prompt order stays
// deterministic as entries are superseded.
const readAllSQL = `
SELECT source_term, target_term, notes
FROM (
    SELECT source_term, target_term, notes,
           row_number() OVER (PARTITION BY source_term ORDER BY seq DESC) AS rn,
           min(seq)     OVER (PARTITION BY source_term)                   AS first_seq
    FROM glossary_entries
) ranked
WHERE rn = 1
ORDER BY first_seq`

type entryRow struct {
	SourceTerm string `db:"source_term"`
	TargetTerm string `db:"target_term"`
	Notes      string `db:"notes"`
}

// ReadAll returns the active glossary entries in insertion order together
// with the revision token (the highest sequence number, as a decimal
// string; "0" for an empty glossary).
func (r *Repo) ReadAll(ctx context.Context) ([]domain.GlossaryEntry, string, error) {
	var rows []entryRow
	if err := pgxscan.Select(ctx, r.q, &rows, readAllSQL); err != nil {
		return nil, "", fmt.Errorf("glossary read all: %w", err)
	}

	entries := make([]domain.GlossaryEntry, len(rows))
	for i, row := range rows {
		entries[i] = domain.GlossaryEntry{
			SourceTerm: row.SourceTerm,
			TargetTerm: row.TargetTerm,
			Notes:      row.Notes,
		}
	}

	revision, err := r.revision(ctx)
	if err != nil {
		return nil, "", err
	}

	return entries, revision, nil
}

// AppendOrUpdate inserts one row; the snapshot query makes it supersede
// any earlier row with the same source term.
func (r *Repo) AppendOrUpdate(ctx context.Context, entry domain.GlossaryEntry) error {
	sql, args, err := postgres.Builder().
		Insert("glossary_entries").
		Columns("source_term", "target_term", "notes").
		Values(entry.SourceTerm, entry.TargetTerm, entry.Notes).
		ToSql()
	if err != nil {
		return fmt.Errorf("glossary insert build: %w", err)
	}

	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "glossary_entry", entry.SourceTerm)
	}

	return nil
}

func (r *Repo) revision(ctx context.Context) (string, error) {
	sql, _, err := postgres.Builder().
		Select("COALESCE(MAX(seq), 0)::text").
		From("glossary_entries").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("glossary revision build: %w", err)
	}

	var revision string
	if err := r.q.QueryRow(ctx, sql).Scan(&revision); err != nil {
		return "", fmt.Errorf("glossary revision: %w", err)
	}

	return revision, nil
}
