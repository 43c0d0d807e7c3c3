package domain

import (
	"time"
)

// GlossaryEntry is one source→target term mapping from the organization's
// glossary. Notes may be empty.
type GlossaryEntry struct {
	SourceTerm string
	TargetTerm string
	Notes      string
}

// GlossarySnapshot is an immutable point-in-time copy of the glossary.
// It is replaced wholesale on refresh and never mutated in place; entry
// order is the glossary's insertion order and is significant (first match
// wins when prompts are built from it).
type GlossarySnapshot struct {
	Entries   []GlossaryEntry
	FetchedAt time.Time
	// Revision is an opaque version token from the backing store.
	Revision string
}

// Age reports how long ago the snapshot was fetched.
func (s *GlossarySnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// Find returns the entry for the given source term, matched by normalized
// form, preserving first-match-wins semantics over the snapshot order.
func (s *GlossarySnapshot) Find(sourceTerm string) (GlossaryEntry, bool) {
	want := NormalizeTerm(sourceTerm)
	for _, e := range s.Entries {
		if NormalizeTerm(e.SourceTerm) == want {
			return e, true
		}
	}
	return GlossaryEntry{}, false
}

// ImportReport summarizes a bulk glossary import.
type ImportReport struct {
	Added   int
	Updated int
	Skipped int
}
