package glossary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/termpipe/termpipe/internal/domain"
)

// recorder appends action records to the audit trail.
type recorder interface {
	Record(ctx context.Context, rec domain.ActionRecord) error
}

// WriteResult reports the outcome of a glossary write. AuditErr is set
// when the entry was committed but the audit record could not be written;
// the write itself is not rolled back.
type WriteResult struct {
	Entry    domain.GlossaryEntry
	Created  bool
	AuditErr error
}

// Writer validates and commits glossary entries. Writes are serialized on
// a mutex because the backing store offers no transactional guarantee;
// every successful write invalidates the cache so the next read observes
// the change.
type Writer struct {
	store Store
	cache *Cache
	audit recorder
	log   *slog.Logger

	mu sync.Mutex
}

// NewWriter creates a glossary writer.
func NewWriter(store Store, cache *Cache, audit recorder, logger *slog.Logger) *Writer {
	return &Writer{
		store: store,
		cache: cache,
		audit: audit,
		log:   logger.With("service", "glossary-writer"),
	}
}

// Write commits one entry. source names where the translation came from
// (a terminology authority or "manual") and is recorded in the audit
// trail.
//
// An entry whose source term already maps to the same target term is
// rejected with domain.ErrAlreadyExists; a different target term
// supersedes the existing entry. A store failure is returned as
// *domain.GlossaryWriteError and leaves no partial state.
func (w *Writer) Write(ctx context.Context, entry domain.GlossaryEntry, source string) (*WriteResult, error) {
	entry.SourceTerm = strings.TrimSpace(entry.SourceTerm)
	entry.TargetTerm = strings.TrimSpace(entry.TargetTerm)
	entry.Notes = strings.TrimSpace(entry.Notes)

	if err := validateEntry(entry); err != nil {
		return nil, err
	}
	if source == "" {
		source = "manual"
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	created := true
	if existing, ok := w.currentEntry(ctx, entry.SourceTerm); ok {
		if domain.NormalizeTerm(existing.TargetTerm) == domain.NormalizeTerm(entry.TargetTerm) {
			return nil, fmt.Errorf("glossary writer: %q → %q: %w", entry.SourceTerm, entry.TargetTerm, domain.ErrAlreadyExists)
		}
		created = false
	}

	if err := w.store.AppendOrUpdate(ctx, entry); err != nil {
		return nil, &domain.GlossaryWriteError{SourceTerm: entry.SourceTerm, Err: err}
	}

	w.cache.Invalidate()

	res := &WriteResult{Entry: entry, Created: created}
	res.AuditErr = w.audit.Record(ctx, domain.ActionRecord{
		SourceTerm:      entry.SourceTerm,
		TargetTerm:      entry.TargetTerm,
		Source:          source,
		AddedToGlossary: true,
	})

	w.log.InfoContext(ctx, "glossary entry written",
		slog.String("source_term", entry.SourceTerm),
		slog.Bool("created", created),
	)

	return res, nil
}

// Import commits a batch of entries with last-write-wins reconciliation:
// within the batch, a later entry for the same source term overrides an
// earlier one; entries identical to the current glossary are skipped. The
// cache is invalidated once, after the batch.
func (w *Writer) Import(ctx context.Context, entries []domain.GlossaryEntry) (*domain.ImportReport, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Last write wins within the batch, keeping first-seen order.
	order := make([]string, 0, len(entries))
	latest := make(map[string]domain.GlossaryEntry, len(entries))
	for _, e := range entries {
		e.SourceTerm = strings.TrimSpace(e.SourceTerm)
		e.TargetTerm = strings.TrimSpace(e.TargetTerm)
		e.Notes = strings.TrimSpace(e.Notes)
		if err := validateEntry(e); err != nil {
			return nil, err
		}
		key := domain.NormalizeTerm(e.SourceTerm)
		if _, seen := latest[key]; !seen {
			order = append(order, key)
		}
		latest[key] = e
	}

	report := &domain.ImportReport{}
	// Rows committed before a mid-batch failure must still become visible
	// to readers, so invalidation runs on every exit once the store has
	// changed, not only after a fully successful batch.
	defer func() {
		if report.Added > 0 || report.Updated > 0 {
			w.cache.Invalidate()
		}
	}()

	for _, key := range order {
		e := latest[key]

		if existing, ok := w.currentEntry(ctx, e.SourceTerm); ok {
			if domain.NormalizeTerm(existing.TargetTerm) == domain.NormalizeTerm(e.TargetTerm) {
				report.Skipped++
				continue
			}
			if err := w.store.AppendOrUpdate(ctx, e); err != nil {
				return nil, w.importFailed(ctx, e.SourceTerm, report, err)
			}
			report.Updated++
			continue
		}

		if err := w.store.AppendOrUpdate(ctx, e); err != nil {
			return nil, w.importFailed(ctx, e.SourceTerm, report, err)
		}
		report.Added++
	}

	w.log.InfoContext(ctx, "glossary import finished",
		slog.Int("added", report.Added),
		slog.Int("updated", report.Updated),
		slog.Int("skipped", report.Skipped),
	)

	return report, nil
}

// importFailed logs how much of the batch was applied before the failing
// write and wraps the store error.
func (w *Writer) importFailed(ctx context.Context, sourceTerm string, report *domain.ImportReport, err error) error {
	w.log.WarnContext(ctx, "glossary import aborted mid-batch",
		slog.String("source_term", sourceTerm),
		slog.Int("added", report.Added),
		slog.Int("updated", report.Updated),
	)
	return &domain.GlossaryWriteError{SourceTerm: sourceTerm, Err: err}
}

// currentEntry looks up the live glossary entry for a term. A stale
// snapshot is still usable for the duplicate check; only a cache with no
// snapshot at all makes the check impossible, in which case the write
// proceeds and the store's append-or-update semantics apply.
func (w *Writer) currentEntry(ctx context.Context, sourceTerm string) (domain.GlossaryEntry, bool) {
	snap, err := w.cache.Get(ctx)
	if snap == nil {
		if err != nil {
			w.log.WarnContext(ctx, "duplicate check skipped", slog.String("error", err.Error()))
		}
		return domain.GlossaryEntry{}, false
	}
	if err != nil && !errors.Is(err, domain.ErrStaleData) {
		w.log.WarnContext(ctx, "duplicate check degraded", slog.String("error", err.Error()))
	}
	return snap.Find(sourceTerm)
}

func validateEntry(entry domain.GlossaryEntry) error {
	var fields []domain.FieldError
	if entry.SourceTerm == "" {
		fields = append(fields, domain.FieldError{Field: "source_term", Message: "must not be empty"})
	}
	if entry.TargetTerm == "" {
		fields = append(fields, domain.FieldError{Field: "target_term", Message: "must not be empty"})
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Errors: fields}
	}
	return nil
}
