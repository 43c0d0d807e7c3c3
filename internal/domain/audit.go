package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActionTranslation marks an action record produced by a translation run
// rather than a terminology lookup.
const ActionTranslation = "translation"

// ActionRecord is one append-only audit row. Records are ordered by
// creation time and never mutated after write.
type ActionRecord struct {
	ID              uuid.UUID
	CreatedAt       time.Time
	SourceTerm      string
	TargetTerm      string
	Source          string
	AddedToGlossary bool
}

// TermCount pairs a source term with how many times it was looked up.
type TermCount struct {
	Term  string
	Count int
}

// ActionStats aggregates the action log for reporting.
type ActionStats struct {
	Total           int
	BySource        map[string]int
	AddedToGlossary int
	TopTerms        []TermCount
}
