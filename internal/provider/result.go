// Package provider defines the normalization boundary for terminology
// authorities: every external payload is mapped into these fixed shapes on
// ingress, and nothing downstream ever sees a raw page.
package provider

import (
	"context"
)

// TermResult is one raw (term, translation, context) record extracted from
// an authority's results page.
type TermResult struct {
	Term        string
	Translation string
	Context     string
	Subject     string
	URL         string
}

// TermSource fetches structured results for a term from one authority.
type TermSource interface {
	// FetchTerms returns the records found for the term, in page order.
	// An empty slice means the authority answered but had no match.
	FetchTerms(ctx context.Context, term string) ([]TermResult, error)
}
