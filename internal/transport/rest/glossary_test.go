package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/termpipe/termpipe/internal/domain"
	"github.com/termpipe/termpipe/internal/glossary"
)

type glossaryCacheMock struct {
	snap *domain.GlossarySnapshot
	err  error

	invalidated int
}

func (m *glossaryCacheMock) Get(_ context.Context) (*domain.GlossarySnapshot, error) {
	return m.snap, m.err
}

func (m *glossaryCacheMock) Invalidate() {
	m.invalidated++
}

type glossaryWriterMock struct {
	writeRes *glossary.WriteResult
	writeErr error
	report   *domain.ImportReport
	impErr   error

	gotEntry   domain.GlossaryEntry
	gotSource  string
	gotEntries []domain.GlossaryEntry
}

func (m *glossaryWriterMock) Write(_ context.Context, entry domain.GlossaryEntry, source string) (*glossary.WriteResult, error) {
	m.gotEntry = entry
	m.gotSource = source
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	return m.writeRes, nil
}

func (m *glossaryWriterMock) Import(_ context.Context, entries []domain.GlossaryEntry) (*domain.ImportReport, error) {
	m.gotEntries = entries
	if m.impErr != nil {
		return nil, m.impErr
	}
	return m.report, nil
}

func testSnapshot() *domain.GlossarySnapshot {
	return &domain.GlossarySnapshot{
		Entries: []domain.GlossaryEntry{
			{SourceTerm: "compte rendu", TargetTerm: "meeting minutes"},
			{SourceTerm: "courriel", TargetTerm: "email", Notes: "IT"},
		},
		FetchedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Revision:  "42",
	}
}

func TestGlossaryList_Success(t *testing.T) {
	t.Parallel()

	cache := &glossaryCacheMock{snap: testSnapshot()}
	h := NewGlossaryHandler(cache, &glossaryWriterMock{}, newTestLogger())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/glossary", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp glossaryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Entries) != 2 || resp.Entries[1].Notes != "IT" {
		t.Errorf("entries = %+v", resp.Entries)
	}
	if resp.Revision != "42" {
		t.Errorf("revision = %q, want %q", resp.Revision, "42")
	}
	if resp.Stale {
		t.Error("stale flag set on a fresh snapshot")
	}
}

func TestGlossaryList_StaleSnapshot(t *testing.T) {
	t.Parallel()

	cache := &glossaryCacheMock{
		snap: testSnapshot(),
		err:  &domain.StaleDataWarning{Age: 10 * time.Minute, FetchErr: errors.New("db down")},
	}
	h := NewGlossaryHandler(cache, &glossaryWriterMock{}, newTestLogger())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/glossary", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp glossaryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Stale {
		t.Error("expected stale flag")
	}
	if len(resp.Entries) != 2 {
		t.Errorf("stale snapshot should still serve entries, got %d", len(resp.Entries))
	}
}

func TestGlossaryList_CacheFailure(t *testing.T) {
	t.Parallel()

	cache := &glossaryCacheMock{err: errors.New("store unreachable")}
	h := NewGlossaryHandler(cache, &glossaryWriterMock{}, newTestLogger())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/glossary", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}

func TestGlossaryAdd_Created(t *testing.T) {
	t.Parallel()

	writer := &glossaryWriterMock{writeRes: &glossary.WriteResult{
		Entry:   domain.GlossaryEntry{SourceTerm: "côté client", TargetTerm: "client-side"},
		Created: true,
	}}
	h := NewGlossaryHandler(&glossaryCacheMock{}, writer, newTestLogger())

	body := `{"sourceTerm":"côté client","targetTerm":"client-side","source":"termium"}`
	req := httptest.NewRequest(http.MethodPost, "/api/glossary", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Add(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp writeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Created || resp.Entry.SourceTerm != "côté client" {
		t.Errorf("response = %+v", resp)
	}
	if resp.AuditWarning != "" {
		t.Errorf("unexpected audit warning %q", resp.AuditWarning)
	}
	if writer.gotSource != "termium" {
		t.Errorf("source = %q, want %q", writer.gotSource, "termium")
	}
}

func TestGlossaryAdd_Superseded(t *testing.T) {
	t.Parallel()

	writer := &glossaryWriterMock{writeRes: &glossary.WriteResult{
		Entry:   domain.GlossaryEntry{SourceTerm: "courriel", TargetTerm: "e-mail"},
		Created: false,
	}}
	h := NewGlossaryHandler(&glossaryCacheMock{}, writer, newTestLogger())

	body := `{"sourceTerm":"courriel","targetTerm":"e-mail"}`
	rec := httptest.NewRecorder()
	h.Add(rec, httptest.NewRequest(http.MethodPost, "/api/glossary", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for a superseded entry, got %d", rec.Code)
	}
}

func TestGlossaryAdd_Duplicate(t *testing.T) {
	t.Parallel()

	writer := &glossaryWriterMock{writeErr: domain.ErrAlreadyExists}
	h := NewGlossaryHandler(&glossaryCacheMock{}, writer, newTestLogger())

	body := `{"sourceTerm":"courriel","targetTerm":"email"}`
	rec := httptest.NewRecorder()
	h.Add(rec, httptest.NewRequest(http.MethodPost, "/api/glossary", strings.NewReader(body)))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestGlossaryAdd_ValidationFailure(t *testing.T) {
	t.Parallel()

	writer := &glossaryWriterMock{writeErr: domain.NewValidationError("source_term", "must not be empty")}
	h := NewGlossaryHandler(&glossaryCacheMock{}, writer, newTestLogger())

	rec := httptest.NewRecorder()
	h.Add(rec, httptest.NewRequest(http.MethodPost, "/api/glossary", strings.NewReader(`{"targetTerm":"x"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestGlossaryAdd_StoreFailure(t *testing.T) {
	t.Parallel()

	writer := &glossaryWriterMock{writeErr: &domain.GlossaryWriteError{
		SourceTerm: "courriel",
		Err:        errors.New("connection refused"),
	}}
	h := NewGlossaryHandler(&glossaryCacheMock{}, writer, newTestLogger())

	body := `{"sourceTerm":"courriel","targetTerm":"email"}`
	rec := httptest.NewRecorder()
	h.Add(rec, httptest.NewRequest(http.MethodPost, "/api/glossary", strings.NewReader(body)))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Error("store error detail leaked into the response body")
	}
}

func TestGlossaryAdd_AuditWarning(t *testing.T) {
	t.Parallel()

	writer := &glossaryWriterMock{writeRes: &glossary.WriteResult{
		Entry:    domain.GlossaryEntry{SourceTerm: "courriel", TargetTerm: "email"},
		Created:  true,
		AuditErr: &domain.AuditWriteError{Err: errors.New("audit table missing")},
	}}
	h := NewGlossaryHandler(&glossaryCacheMock{}, writer, newTestLogger())

	body := `{"sourceTerm":"courriel","targetTerm":"email"}`
	rec := httptest.NewRecorder()
	h.Add(rec, httptest.NewRequest(http.MethodPost, "/api/glossary", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}

	var resp writeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AuditWarning == "" {
		t.Error("expected an audit warning on the response")
	}
}

func TestGlossaryImport_Success(t *testing.T) {
	t.Parallel()

	writer := &glossaryWriterMock{report: &domain.ImportReport{Added: 2, Updated: 1, Skipped: 1}}
	h := NewGlossaryHandler(&glossaryCacheMock{}, writer, newTestLogger())

	body := `{"entries":[
		{"sourceTerm":"a","targetTerm":"1"},
		{"sourceTerm":"b","targetTerm":"2"},
		{"sourceTerm":"c","targetTerm":"3"},
		{"sourceTerm":"d","targetTerm":"4"}
	]}`
	rec := httptest.NewRecorder()
	h.Import(rec, httptest.NewRequest(http.MethodPost, "/api/glossary/import", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp importResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Added != 2 || resp.Updated != 1 || resp.Skipped != 1 {
		t.Errorf("report = %+v", resp)
	}
	if len(writer.gotEntries) != 4 {
		t.Errorf("writer received %d entries, want 4", len(writer.gotEntries))
	}
}

func TestGlossaryImport_EmptyBatch(t *testing.T) {
	t.Parallel()

	h := NewGlossaryHandler(&glossaryCacheMock{}, &glossaryWriterMock{}, newTestLogger())

	rec := httptest.NewRecorder()
	h.Import(rec, httptest.NewRequest(http.MethodPost, "/api/glossary/import", strings.NewReader(`{"entries":[]}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestGlossaryRefresh_InvalidatesAndRefetches(t *testing.T) {
	t.Parallel()

	cache := &glossaryCacheMock{snap: testSnapshot()}
	h := NewGlossaryHandler(cache, &glossaryWriterMock{}, newTestLogger())

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/glossary/refresh", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if cache.invalidated != 1 {
		t.Errorf("cache invalidated %d times, want 1", cache.invalidated)
	}

	var resp glossaryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Revision != "42" {
		t.Errorf("revision = %q", resp.Revision)
	}
}

func TestGlossaryRefresh_EmptyAndDown(t *testing.T) {
	t.Parallel()

	cache := &glossaryCacheMock{err: errors.New("store unreachable")}
	h := NewGlossaryHandler(cache, &glossaryWriterMock{}, newTestLogger())

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/glossary/refresh", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}
