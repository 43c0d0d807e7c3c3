package auditlog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termpipe/termpipe/internal/domain"
)

type fakeStore struct {
	appended  []domain.ActionRecord
	appendErr error
	stats     *domain.ActionStats
	statsErr  error
}

func (f *fakeStore) Append(_ context.Context, rec domain.ActionRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, rec)
	return nil
}

func (f *fakeStore) Stats(_ context.Context) (*domain.ActionStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.stats, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecordFillsIDAndTimestamp(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	log := New(store, newTestLogger())
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	log.now = func() time.Time { return fixed }

	err := log.Record(context.Background(), domain.ActionRecord{
		SourceTerm: "couleur",
		TargetTerm: "colour",
		Source:     "termium",
	})
	require.NoError(t, err)

	require.Len(t, store.appended, 1)
	rec := store.appended[0]
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, fixed, rec.CreatedAt)
	assert.Equal(t, "couleur", rec.SourceTerm)
}

func TestRecordKeepsCallerIDAndTimestamp(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	log := New(store, newTestLogger())

	id := uuid.New()
	at := time.Date(2024, 11, 5, 9, 30, 0, 0, time.UTC)

	err := log.Record(context.Background(), domain.ActionRecord{
		ID:        id,
		CreatedAt: at,
		Source:    "oqlf",
	})
	require.NoError(t, err)

	require.Len(t, store.appended, 1)
	assert.Equal(t, id, store.appended[0].ID)
	assert.Equal(t, at, store.appended[0].CreatedAt)
}

func TestRecordWrapsStoreFailure(t *testing.T) {
	t.Parallel()

	store := &fakeStore{appendErr: errors.New("connection refused")}
	log := New(store, newTestLogger())

	err := log.Record(context.Background(), domain.ActionRecord{Source: "manual"})
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrAuditWrite)
	var auditErr *domain.AuditWriteError
	assert.ErrorAs(t, err, &auditErr)
}

func TestStatsPassthrough(t *testing.T) {
	t.Parallel()

	store := &fakeStore{stats: &domain.ActionStats{
		Total:           7,
		BySource:        map[string]int{"termium": 4},
		AddedToGlossary: 2,
	}}
	log := New(store, newTestLogger())

	stats, err := log.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Total)
	assert.Equal(t, 4, stats.BySource["termium"])
}

func TestStatsFailure(t *testing.T) {
	t.Parallel()

	store := &fakeStore{statsErr: errors.New("connection refused")}
	log := New(store, newTestLogger())

	_, err := log.Stats(context.Background())
	require.Error(t, err)
}
