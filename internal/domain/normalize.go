package domain

import (
	"strings"
)

// NormalizeTerm prepares a term for comparison and deduplication:
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - compresses internal whitespace runs into single spaces
//
// Diacritics, hyphens, and apostrophes are preserved; French terms keep
// their accents.
func NormalizeTerm(term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return ""
	}
	return strings.ToLower(strings.Join(strings.Fields(term), " "))
}

// CandidateKey is the deduplication key for a lookup candidate: the
// normalized term and translation joined with a separator that cannot
// appear in normalized text.
func CandidateKey(term, translation string) string {
	return NormalizeTerm(term) + "\x00" + NormalizeTerm(translation)
}
