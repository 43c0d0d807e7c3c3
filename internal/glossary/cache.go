// Package glossary maintains the process-wide view of the organization's
// glossary: a TTL-bounded snapshot cache over the backing store and the
// serialized write path that feeds it.
package glossary

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/termpipe/termpipe/internal/domain"
)

// State describes the cache lifecycle for observability.
type State string

const (
	StateEmpty      State = "empty"
	StatePopulated  State = "populated"
	StateRefreshing State = "refreshing"
	StateStale      State = "stale"
)

const refreshKey = "glossary"

// Cache holds the current glossary snapshot and refreshes it from the
// store when it ages past the TTL or is explicitly invalidated.
//
// Reads are lock-free against the immutable snapshot; only the refresh
// itself is serialized (single-flight), and no lock is held across the
// store fetch. On a failed refresh the last good snapshot is served with
// a *domain.StaleDataWarning instead of failing the caller.
type Cache struct {
	store        Store
	ttl          time.Duration
	snapshotPath string
	log          *slog.Logger
	now          func() time.Time

	group singleflight.Group

	mu          sync.RWMutex
	snap        *domain.GlossarySnapshot
	invalidated bool
	refreshing  bool
	stale       bool
}

// NewCache creates a glossary cache. snapshotPath may be empty to disable
// the disk snapshot.
func NewCache(store Store, ttl time.Duration, snapshotPath string, logger *slog.Logger) *Cache {
	return &Cache{
		store:        store,
		ttl:          ttl,
		snapshotPath: snapshotPath,
		log:          logger.With("service", "glossary-cache"),
		now:          time.Now,
	}
}

// Get returns the current snapshot, refreshing it first when it is absent,
// older than the TTL, or invalidated. Concurrent callers during a refresh
// share one fetch. When the refresh fails and a previous snapshot exists,
// that snapshot is returned together with a *domain.StaleDataWarning; the
// error is nil only for a fresh snapshot.
func (c *Cache) Get(ctx context.Context) (*domain.GlossarySnapshot, error) {
	if snap, ok := c.fresh(); ok {
		return snap, nil
	}

	v, err, _ := c.group.Do(refreshKey, func() (any, error) {
		return c.refresh(ctx)
	})
	if err == nil {
		return v.(*domain.GlossarySnapshot), nil
	}

	c.mu.Lock()
	last := c.snap
	if last != nil {
		c.stale = true
	}
	c.mu.Unlock()

	if last == nil {
		return nil, fmt.Errorf("glossary cache: fetch: %w", err)
	}

	warn := &domain.StaleDataWarning{Age: last.Age(c.now()), FetchErr: err}
	c.log.WarnContext(ctx, "serving stale glossary",
		slog.Duration("age", warn.Age),
		slog.String("error", err.Error()),
	)
	return last, warn
}

// Invalidate forces the next Get to re-fetch from the store.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.invalidated = true
	c.mu.Unlock()
}

// State reports the cache lifecycle state.
func (c *Cache) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch {
	case c.refreshing:
		return StateRefreshing
	case c.snap == nil:
		return StateEmpty
	case c.stale:
		return StateStale
	default:
		return StatePopulated
	}
}

// fresh returns the snapshot when it can be served without a refresh.
func (c *Cache) fresh() (*domain.GlossarySnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.snap == nil || c.invalidated {
		return nil, false
	}
	if c.snap.Age(c.now()) > c.ttl {
		return nil, false
	}
	return c.snap, true
}

// refresh fetches a new snapshot from the store. It runs inside the
// single-flight group; the fetch is detached from the first caller's
// cancellation so that an abandoned request does not fail the callers
// sharing the flight.
func (c *Cache) refresh(ctx context.Context) (*domain.GlossarySnapshot, error) {
	c.mu.Lock()
	// Re-check under the lock: another flight may have refreshed between
	// the fresh() miss and this one being scheduled.
	if c.snap != nil && !c.invalidated && c.snap.Age(c.now()) <= c.ttl {
		snap := c.snap
		c.mu.Unlock()
		return snap, nil
	}
	c.refreshing = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.refreshing = false
		c.mu.Unlock()
	}()

	fetchCtx := context.WithoutCancel(ctx)
	entries, revision, err := c.store.ReadAll(fetchCtx)
	if err != nil {
		return nil, err
	}

	snap := &domain.GlossarySnapshot{
		Entries:   entries,
		FetchedAt: c.now().UTC(),
		Revision:  revision,
	}

	c.mu.Lock()
	c.snap = snap
	c.invalidated = false
	c.stale = false
	c.mu.Unlock()

	c.log.InfoContext(ctx, "glossary refreshed",
		slog.Int("entries", len(snap.Entries)),
		slog.String("revision", snap.Revision),
	)

	if c.snapshotPath != "" {
		if err := writeSnapshotFile(c.snapshotPath, snap); err != nil {
			c.log.WarnContext(ctx, "snapshot file write failed", slog.String("error", err.Error()))
		}
	}

	return snap, nil
}

// WarmFromDisk pre-populates the cache from the snapshot file, if present.
// The loaded snapshot keeps its original fetch time, so a stale file is
// revalidated by TTL on the first Get; the disk copy is never
// authoritative. A missing file is not an error.
func (c *Cache) WarmFromDisk() error {
	if c.snapshotPath == "" {
		return nil
	}

	snap, err := readSnapshotFile(c.snapshotPath)
	if err != nil {
		return err
	}
	if snap == nil {
		return nil
	}

	c.mu.Lock()
	if c.snap == nil {
		c.snap = snap
	}
	c.mu.Unlock()

	c.log.Info("glossary pre-warmed from disk",
		slog.Int("entries", len(snap.Entries)),
		slog.Time("fetched_at", snap.FetchedAt),
	)
	return nil
}
