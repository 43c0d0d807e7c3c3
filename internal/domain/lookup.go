package domain

// Source identifies an external terminology authority.
type Source string

const (
	SourceTermium Source = "termium"
	SourceOQLF    Source = "oqlf"
)

// IsValid reports whether the source is one of the known authorities.
func (s Source) IsValid() bool {
	switch s {
	case SourceTermium, SourceOQLF:
		return true
	}
	return false
}

// DisplayName returns the human-readable name of the authority.
func (s Source) DisplayName() string {
	switch s {
	case SourceTermium:
		return "TERMIUM Plus"
	case SourceOQLF:
		return "OQLF"
	default:
		return string(s)
	}
}

// LookupQuery is one user-initiated terminology lookup.
type LookupQuery struct {
	Term    string
	Sources []Source
}

// LookupCandidate is a normalized candidate translation from one authority.
// Rank is the candidate's 1-based position after deduplication and ordering.
type LookupCandidate struct {
	Term        string
	Translation string
	Source      Source
	Rank        int
	Context     string
	Subject     string
	URL         string
}

// SourceNotice records a per-source failure that did not fail the aggregate
// lookup (timeout, unreachable authority, unparseable page).
type SourceNotice struct {
	Source Source
	Err    error
}

// LookupResult is the aggregate outcome of a lookup: ranked candidates plus
// one notice per failed source.
type LookupResult struct {
	Term       string
	Candidates []LookupCandidate
	Notices    []SourceNotice
}
