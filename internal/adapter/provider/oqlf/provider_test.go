package oqlf

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const resultsPage = `<!DOCTYPE html>
<html><body>
<article class="result" data-title="ordinateur FR • computer EN" data-url="/fiche-gdt/fiche/8361442/ordinateur">
  <span class="domain">Informatique</span>
  <p class="result-description">Appareil  électronique de traitement
     de l'information.</p>
</article>
<article class="result" data-title="ordinateur de bureau FR • desktop computer EN" data-url="/fiche-gdt/fiche/8400001/ordinateur-de-bureau">
  <p>Ordinateur conçu pour être utilisé à poste fixe.</p>
</article>
<article class="result" data-title="ordinateur, quel beau mot" data-url="/fiche-gdt/fiche/999/malformed">
  <p>Titre sans séparateur, ignoré.</p>
</article>
<article class="result" data-title="autre FR • other EN" data-url="/autre-page/123">
  <p>Pas une fiche GDT, ignoré.</p>
</article>
</body></html>`

func TestProviderFetchTerms(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("tx_solr[q]"); got != "ordinateur" {
			t.Errorf("tx_solr[q] = %q, want %q", got, "ordinateur")
		}
		if got := r.URL.Query().Get("tx_solr[filter][0]"); got != "type_stringM:gdt" {
			t.Errorf("filter = %q", got)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, newTestLogger())
	results, err := p.FetchTerms(context.Background(), "ordinateur")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The malformed title and the non-GDT link are skipped.
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2: %+v", len(results), results)
	}

	r0 := results[0]
	if r0.Term != "ordinateur" || r0.Translation != "computer" {
		t.Errorf("results[0] = %+v", r0)
	}
	if r0.Subject != "Informatique" {
		t.Errorf("Subject = %q", r0.Subject)
	}
	if r0.Context != "Appareil électronique de traitement de l'information." {
		t.Errorf("Context = %q", r0.Context)
	}
	if r0.URL != srv.URL+"/fiche-gdt/fiche/8361442/ordinateur" {
		t.Errorf("URL = %q", r0.URL)
	}

	r1 := results[1]
	if r1.Term != "ordinateur de bureau" || r1.Translation != "desktop computer" {
		t.Errorf("results[1] = %+v", r1)
	}
	if r1.Context != "Ordinateur conçu pour être utilisé à poste fixe." {
		t.Errorf("results[1].Context = %q", r1.Context)
	}
}

func TestProviderFetchTermsNoResults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>Aucun résultat pour cette recherche.</p></body></html>`))
	}))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, newTestLogger())
	results, err := p.FetchTerms(context.Background(), "zzz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestProviderRetriesOn5xx(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, newTestLogger())
	results, err := p.FetchTerms(context.Background(), "ordinateur")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results after retry, want 2", len(results))
	}
	if calls.Load() != 2 {
		t.Errorf("server called %d times, want 2", calls.Load())
	}
}
