// Package termium queries TERMIUM Plus, the Government of Canada
// terminology database.
package termium

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/termpipe/termpipe/internal/provider"
)

const defaultBaseURL = "https://www.btb.termiumplus.gc.ca/tpv2alpha/alpha-fra.html"

// maxRecords bounds how many result records are extracted from one page.
const maxRecords = 10

// Provider fetches French→English terminology records from TERMIUM Plus.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider with the default TERMIUM Plus URL.
func NewProvider(logger *slog.Logger) *Provider {
	return NewProviderWithURL(defaultBaseURL, logger)
}

// NewProviderWithURL creates a Provider with a custom base URL (for testing).
func NewProviderWithURL(baseURL string, logger *slog.Logger) *Provider {
	return &Provider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logger.With("adapter", "termium"),
	}
}

// FetchTerms fetches the result records for a French term. Every English
// variant on a record becomes one result.
func (p *Provider) FetchTerms(ctx context.Context, term string) ([]provider.TermResult, error) {
	q := url.Values{}
	q.Set("lang", "fra")
	q.Set("i", "1")
	q.Set("srchtxt", term)
	q.Set("index", "alt")
	q.Set("codom2nd_wet", "1")
	reqURL := p.baseURL + "?" + q.Encode()

	p.log.DebugContext(ctx, "termium request", slog.String("term", term))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("termium: create request: %w", err)
	}

	resp, err := p.doWithRetry(ctx, req, term)
	if err != nil {
		p.log.ErrorContext(ctx, "termium request failed", slog.String("term", term), slog.String("error", err.Error()))
		return nil, fmt.Errorf("termium: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("termium: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("termium: parse page: %w", err)
	}

	results := parseResults(doc, term, reqURL)

	p.log.DebugContext(ctx, "termium response",
		slog.String("term", term),
		slog.Int("results", len(results)),
	)

	return results, nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (p *Provider) doWithRetry(ctx context.Context, req *http.Request, term string) (*http.Response, error) {
	resp, err := p.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	// Don't retry if context is already cancelled.
	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	p.log.WarnContext(ctx, "termium retry", slog.String("term", term), slog.String("reason", reason))

	// Close body from the failed attempt before retrying.
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	time.Sleep(500 * time.Millisecond)

	resp, err = p.httpClient.Do(req)
	return resp, err
}

// parseResults extracts term records from a results page. TERMIUM groups
// each record in <section class="recordSet">; a record carries French terms
// in span[lang=fr], English variants in span[lang=en], a definition or
// observation after a DEF/OBS marker, and subject fields under a
// "Domaine(s)" heading.
func parseResults(doc *goquery.Document, searchTerm, pageURL string) []provider.TermResult {
	var results []provider.TermResult

	doc.Find("section.recordSet").EachWithBreak(func(i int, rec *goquery.Selection) bool {
		if i >= maxRecords {
			return false
		}

		frenchTerm := strings.TrimSpace(rec.Find(`span[lang="fr"]`).First().Text())
		if frenchTerm == "" {
			frenchTerm = searchTerm
		}
		description := extractDescription(rec)
		subject := extractSubject(rec)

		seen := make(map[string]bool)
		rec.Find(`span[lang="en"]`).Each(func(_ int, s *goquery.Selection) {
			english := strings.TrimSpace(s.Text())
			if english == "" || seen[strings.ToLower(english)] {
				return
			}
			seen[strings.ToLower(english)] = true

			results = append(results, provider.TermResult{
				Term:        frenchTerm,
				Translation: english,
				Context:     description,
				Subject:     subject,
				URL:         pageURL,
			})
		})
		return true
	})

	return results
}

// extractDescription prefers the definition (DEF), falls back to an
// observation (OBS), then to the first substantial paragraph.
func extractDescription(rec *goquery.Selection) string {
	for _, marker := range []string{"DEF", "OBS"} {
		text := textAfterMarker(rec, marker)
		if text != "" {
			return text
		}
	}

	var fallback string
	rec.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := cleanDescription(collapseSpace(p.Text()))
		if len(text) > 30 && !strings.Contains(strings.ToLower(text), "record number") {
			fallback = clip(text, 500)
			return false
		}
		return true
	})
	return fallback
}

// textAfterMarker finds an <abbr> holding the marker (e.g. DEF) inside an
// h5 heading and returns the paragraph that follows the heading.
func textAfterMarker(rec *goquery.Selection, marker string) string {
	var out string
	rec.Find("abbr").EachWithBreak(func(_ int, abbr *goquery.Selection) bool {
		if strings.TrimSpace(abbr.Text()) != marker {
			return true
		}
		next := abbr.Closest("h5").Next()
		if !next.Is("p") {
			return true
		}
		text := cleanDescription(collapseSpace(next.Text()))
		if len(text) > 10 {
			out = clip(text, 500)
			return false
		}
		return true
	})
	return out
}

// ficheRef matches the trailing record metadata TERMIUM appends to textual
// support paragraphs, e.g. "1, fiche 2, Français, - couleur".
var ficheRef = regexp.MustCompile(`(?i)\s*\d+,\s*fiche\s*\d+,\s*(?:français|anglais|espagnol|portugais),?\s*-?\s*\S*\s*$`)

func cleanDescription(s string) string {
	s = ficheRef.ReplaceAllString(s, "")
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ",;"))
}

// extractSubject returns up to three subject fields from the record's
// "Domaine(s)" / "Subject field(s)" list.
func extractSubject(rec *goquery.Selection) string {
	var subject string
	rec.Find("h5").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		title := h.Text()
		if !strings.Contains(title, "Domaine") && !strings.Contains(title, "Subject") {
			return true
		}
		var items []string
		h.NextAllFiltered("ul").First().Find("li").Each(func(_ int, li *goquery.Selection) {
			if len(items) < 3 {
				items = append(items, strings.TrimSpace(li.Text()))
			}
		})
		subject = strings.Join(items, ", ")
		return subject == ""
	})
	return subject
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
