// Package oqlf queries the Vitrine linguistique of the Office québécois de
// la langue française, filtered to Grand dictionnaire terminologique (GDT)
// records.
package oqlf

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/termpipe/termpipe/internal/provider"
)

const (
	defaultBaseURL = "https://vitrinelinguistique.oqlf.gouv.qc.ca"
	searchPath     = "/resultats-de-recherche"
	fichePath      = "/fiche-gdt/fiche/"
)

// maxResults bounds how many result articles are extracted from one page.
const maxResults = 10

// Provider fetches French→English terminology records from the GDT.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider with the default Vitrine linguistique URL.
func NewProvider(logger *slog.Logger) *Provider {
	return NewProviderWithURL(defaultBaseURL, logger)
}

// NewProviderWithURL creates a Provider with a custom base URL (for testing).
func NewProviderWithURL(baseURL string, logger *slog.Logger) *Provider {
	return &Provider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logger.With("adapter", "oqlf"),
	}
}

// FetchTerms fetches GDT search results for a French term.
func (p *Provider) FetchTerms(ctx context.Context, term string) ([]provider.TermResult, error) {
	q := url.Values{}
	q.Set("tx_solr[q]", term)
	q.Set("tx_solr[filter][0]", "type_stringM:gdt")
	reqURL := p.baseURL + searchPath + "?" + q.Encode()

	p.log.DebugContext(ctx, "oqlf request", slog.String("term", term))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("oqlf: create request: %w", err)
	}

	resp, err := p.doWithRetry(ctx, req, term)
	if err != nil {
		p.log.ErrorContext(ctx, "oqlf request failed", slog.String("term", term), slog.String("error", err.Error()))
		return nil, fmt.Errorf("oqlf: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oqlf: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("oqlf: parse page: %w", err)
	}

	results := p.parseResults(doc)

	p.log.DebugContext(ctx, "oqlf response",
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
	p.log.WarnContext(ctx, "oqlf retry", slog.String("term", term), slog.String("reason", reason))

	// Close body from the failed attempt before retrying.
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	time.Sleep(500 * time.Millisecond)

	resp, err = p.httpClient.Do(req)
	return resp, err
}

// parseResults extracts GDT records from a search results page. Each hit is
// an <article class="result"> whose data-title attribute holds
// "french term FR • english term EN" and whose data-url points at the
// fiche.
func (p *Provider) parseResults(doc *goquery.Document) []provider.TermResult {
	var results []provider.TermResult

	doc.Find("article.result").EachWithBreak(func(_ int, art *goquery.Selection) bool {
		ficheURL := art.AttrOr("data-url", "")
		if !strings.Contains(ficheURL, fichePath) {
			return true
		}

		french, english, ok := splitTitle(art.AttrOr("data-title", ""))
		if !ok {
			return true
		}

		if strings.HasPrefix(ficheURL, "/") {
			ficheURL = p.baseURL + ficheURL
		}

		results = append(results, provider.TermResult{
			Term:        french,
			Translation: english,
			Context:     extractDescription(art),
			Subject:     extractSubject(art),
			URL:         ficheURL,
		})
		return len(results) < maxResults
	})

	return results
}

// splitTitle splits a data-title of the form
// "terme français FR • english term EN" into its two halves, dropping the
// language markers.
func splitTitle(title string) (french, english string, ok bool) {
	parts := strings.Split(title, " • ")
	if len(parts) < 2 {
		return "", "", false
	}

	french = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(parts[0]), " FR"))
	english = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(parts[1]), " EN"))
	if english == "" {
		return "", "", false
	}
	return french, english, true
}

// extractDescription returns the result snippet, falling back to the first
// substantial paragraph of the article.
func extractDescription(art *goquery.Selection) string {
	if snippet := art.Find(".result-description, .snippet, .excerpt").First(); snippet.Length() > 0 {
		return clip(collapseSpace(snippet.Text()), 500)
	}

	var fallback string
	art.Find("p").EachWithBreak(func(_ int, para *goquery.Selection) bool {
		text := collapseSpace(para.Text())
		if len(text) > 20 {
			fallback = clip(text, 500)
			return false
		}
		return true
	})
	return fallback
}

// extractSubject returns the domain tag of the article, if any.
func extractSubject(art *goquery.Selection) string {
	if tag := art.Find(".domain, .category, .tag").First(); tag.Length() > 0 {
		return strings.TrimSpace(tag.Text())
	}

	var subject string
	art.Find("span, div, p").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		text := strings.TrimSpace(el.Text())
		if rest, found := strings.CutPrefix(text, "Domaine :"); found {
			subject = clip(strings.TrimSpace(rest), 100)
			return false
		}
		return true
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
