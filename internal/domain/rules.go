package domain

// RuleCount is the number of canonical translation rules. Rule identifiers
// are exactly 1..RuleCount; a rule set with any id missing or duplicated is
// invalid.
const RuleCount = 11

// RuleCategory classifies what a translation rule governs.
type RuleCategory string

const (
	RuleFormatting     RuleCategory = "formatting"
	RuleCapitalization RuleCategory = "capitalization"
	RuleTerminology    RuleCategory = "terminology"
	RuleSpelling       RuleCategory = "spelling"
)

// IsValid reports whether the category is one of the known values.
func (c RuleCategory) IsValid() bool {
	switch c {
	case RuleFormatting, RuleCapitalization, RuleTerminology, RuleSpelling:
		return true
	}
	return false
}

// Rule is a single translation directive. Rules are loaded once at startup
// and read-only thereafter.
type Rule struct {
	ID          int
	Description string
	AppliesTo   RuleCategory
}

// RuleSet is the complete ordered set of translation directives. Every
// translation request embeds all of them verbatim.
type RuleSet struct {
	Rules []Rule
}

// Len returns the number of rules in the set.
func (rs *RuleSet) Len() int { return len(rs.Rules) }
