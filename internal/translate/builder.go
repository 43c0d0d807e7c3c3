// Package translate composes rule-constrained translation requests and
// orchestrates the call to the translation model.
package translate

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/termpipe/termpipe/internal/domain"
)

// Request is a fully composed translation request: everything the model
// needs, with no further lookups required.
type Request struct {
	System string
	Prompt string

	// TermsUsed lists the glossary source terms present in the source
	// text, in snapshot order. GlossaryUsed is true when it is non-empty.
	TermsUsed    []string
	GlossaryUsed bool
}

// Builder composes translation requests. Build is a pure function of its
// inputs: identical (text, snapshot, rules) triples always produce an
// identical request.
type Builder struct {
	// MaxInputChars bounds the source text length in Unicode code points.
	MaxInputChars int
}

// NewBuilder creates a Builder with the given input limit.
func NewBuilder(maxInputChars int) *Builder {
	return &Builder{MaxInputChars: maxInputChars}
}

// Build composes the request for one source text. Text longer than
// MaxInputChars fails with *domain.InputTooLargeError; it is never
// truncated. The full rule set is embedded verbatim and the glossary is
// embedded in snapshot order, so tie-breaks between entries are
// deterministic (first match wins).
func (b *Builder) Build(sourceText string, snap *domain.GlossarySnapshot, rules *domain.RuleSet) (*Request, error) {
	if length := utf8.RuneCountInString(sourceText); length > b.MaxInputChars {
		return nil, &domain.InputTooLargeError{Length: length, Max: b.MaxInputChars}
	}

	req := &Request{
		System: buildSystem(rules),
	}

	var p strings.Builder
	p.WriteString("Translate the following French text into English.\n\n")

	if snap != nil && len(snap.Entries) > 0 {
		p.WriteString("Glossary (binding equivalences, first entry wins on conflicts):\n")
		for _, e := range snap.Entries {
			p.WriteString("- ")
			p.WriteString(e.SourceTerm)
			p.WriteString(" → ")
			p.WriteString(e.TargetTerm)
			if e.Notes != "" {
				p.WriteString(" (")
				p.WriteString(e.Notes)
				p.WriteString(")")
			}
			p.WriteString("\n")
		}
		p.WriteString("\n")

		req.TermsUsed = termsInText(sourceText, snap.Entries)
		req.GlossaryUsed = len(req.TermsUsed) > 0
	}

	p.WriteString("Text:\n")
	p.WriteString(sourceText)
	req.Prompt = p.String()

	return req, nil
}

// buildSystem embeds every rule verbatim; rules are never summarized or
// dropped.
func buildSystem(rules *domain.RuleSet) string {
	var s strings.Builder
	s.WriteString("You are a professional French-to-English translator. ")
	s.WriteString("Follow every rule below without exception. ")
	s.WriteString("Return only the translated text.\n\nRules:\n")
	for _, r := range rules.Rules {
		fmt.Fprintf(&s, "%d. [%s] %s\n", r.ID, r.AppliesTo, r.Description)
	}
	return s.String()
}

// termsInText returns the source terms occurring in the text as whole
// words, case-insensitively, in entry order.
func termsInText(text string, entries []domain.GlossaryEntry) []string {
	lower := strings.ToLower(text)
	var used []string
	for _, e := range entries {
		if containsWord(lower, strings.ToLower(e.SourceTerm)) {
			used = append(used, e.SourceTerm)
		}
	}
	return used
}

// containsWord reports whether term occurs in text bounded by non-letter,
// non-digit runes. Both arguments must already be lowercased. The check is
// Unicode-aware so accented French words are bounded correctly.
func containsWord(text, term string) bool {
	if term == "" {
		return false
	}
	for start := 0; ; {
		i := strings.Index(text[start:], term)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(term)

		before, _ := utf8.DecodeLastRuneInString(text[:i])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if !isWordRune(before) && !isWordRune(after) {
			return true
		}
		start = i + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Claude API pricing, USD per million tokens.
const (
	costPerMInputUSD  = 3.0
	costPerMOutputUSD = 15.0
)

// EstimateCost approximates the USD cost of translating text before any
// model call, using the rough 4-characters-per-token ratio for French and
// English, a fixed per-entry glossary overhead, and output slightly longer
// than the input.
func EstimateCost(text string, glossarySize int) float64 {
	textTokens := float64(utf8.RuneCountInString(text)) / 4
	glossaryTokens := float64(glossarySize) * 10

	inputTokens := textTokens + glossaryTokens
	outputTokens := textTokens * 1.1

	return inputTokens/1_000_000*costPerMInputUSD + outputTokens/1_000_000*costPerMOutputUSD
}
