// Package auditlog records terminology actions in an append-only trail.
package auditlog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/termpipe/termpipe/internal/domain"
)

// Store is the append-only audit backing store.
type Store interface {
	Append(ctx context.Context, rec domain.ActionRecord) error
	Stats(ctx context.Context) (*domain.ActionStats, error)
}

// Log appends action records durably and serves aggregates over them.
type Log struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// New creates the audit log service.
func New(store Store, logger *slog.Logger) *Log {
	return &Log{
		store: store,
		log:   logger.With("service", "auditlog"),
		now:   time.Now,
	}
}

// Record persists one action record, assigning its id and timestamp if
// unset. The record is durable once Record returns nil. A failure is
// returned as *domain.AuditWriteError; callers treat it as a warning and
// never roll back the action that triggered it.
func (l *Log) Record(ctx context.Context, rec domain.ActionRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = l.now().UTC()
	}

	if err := l.store.Append(ctx, rec); err != nil {
		l.log.ErrorContext(ctx, "audit append failed",
			slog.String("source_term", rec.SourceTerm),
			slog.String("source", rec.Source),
			slog.String("error", err.Error()),
		)
		return &domain.AuditWriteError{Err: err}
	}

	return nil
}

// Stats aggregates the action log: totals, per-source counts, and the most
// frequently checked terms.
func (l *Log) Stats(ctx context.Context) (*domain.ActionStats, error) {
	stats, err := l.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("auditlog: stats: %w", err)
	}
	return stats, nil
}
