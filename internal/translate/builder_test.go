package translate

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/termpipe/termpipe/internal/domain"
)

func testRules() *domain.RuleSet {
	rules := make([]domain.Rule, 0, domain.RuleCount)
	categories := []domain.RuleCategory{
		domain.RuleFormatting, domain.RuleCapitalization,
		domain.RuleTerminology, domain.RuleSpelling,
	}
	for i := 1; i <= domain.RuleCount; i++ {
		rules = append(rules, domain.Rule{
			ID:          i,
			Description: "directive " + strings.Repeat("x", i),
			AppliesTo:   categories[(i-1)%len(categories)],
		})
	}
	return &domain.RuleSet{Rules: rules}
}

func testSnapshot() *domain.GlossarySnapshot {
	return &domain.GlossarySnapshot{
		Entries: []domain.GlossaryEntry{
			{SourceTerm: "compte rendu", TargetTerm: "minutes", Notes: "meetings"},
			{SourceTerm: "courriel", TargetTerm: "email"},
			{SourceTerm: "côté", TargetTerm: "side"},
		},
		FetchedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Revision:  "42",
	}
}

func TestBuildIsPure(t *testing.T) {
	t.Parallel()

	b := NewBuilder(50000)
	text := "Veuillez consulter le compte rendu envoyé par courriel."

	first, err := b.Build(text, testSnapshot(), testRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := b.Build(text, testSnapshot(), testRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.System != second.System || first.Prompt != second.Prompt {
		t.Error("identical inputs produced different requests")
	}
}

func TestBuildEmbedsAllRulesVerbatim(t *testing.T) {
	t.Parallel()

	b := NewBuilder(50000)
	rules := testRules()

	req, err := b.Build("Bonjour.", testSnapshot(), rules)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, r := range rules.Rules {
		if !strings.Contains(req.System, r.Description) {
			t.Errorf("rule %d description missing from request", r.ID)
		}
	}
}

func TestBuildEmbedsGlossaryInOrder(t *testing.T) {
	t.Parallel()

	b := NewBuilder(50000)
	req, err := b.Build("Bonjour.", testSnapshot(), testRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	iCompte := strings.Index(req.Prompt, "compte rendu → minutes")
	iCourriel := strings.Index(req.Prompt, "courriel → email")
	if iCompte < 0 || iCourriel < 0 {
		t.Fatalf("glossary entries missing from prompt:\n%s", req.Prompt)
	}
	if iCompte > iCourriel {
		t.Error("glossary entries out of snapshot order")
	}
	if !strings.Contains(req.Prompt, "(meetings)") {
		t.Error("notes missing from glossary line")
	}
}

func TestBuildInputLimit(t *testing.T) {
	t.Parallel()

	b := NewBuilder(10)

	// Accented runes count as one character each.
	atLimit := strings.Repeat("é", 10)
	if _, err := b.Build(atLimit, testSnapshot(), testRules()); err != nil {
		t.Fatalf("input at limit should succeed, got %v", err)
	}

	over := strings.Repeat("é", 11)
	_, err := b.Build(over, testSnapshot(), testRules())
	if !errors.Is(err, domain.ErrInputTooLarge) {
		t.Fatalf("want ErrInputTooLarge, got %v", err)
	}
	var tooLarge *domain.InputTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("want *InputTooLargeError, got %T", err)
	}
	if tooLarge.Length != 11 || tooLarge.Max != 10 {
		t.Errorf("got length=%d max=%d, want 11/10", tooLarge.Length, tooLarge.Max)
	}
}

func TestBuildTermsUsed(t *testing.T) {
	t.Parallel()

	b := NewBuilder(50000)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			"whole word match",
			"Envoyez le document par courriel.",
			[]string{"courriel"},
		},
		{
			"case insensitive",
			"COURRIEL reçu.",
			[]string{"courriel"},
		},
		{
			"multi-word term",
			"Le compte rendu est prêt.",
			[]string{"compte rendu"},
		},
		{
			"no partial match",
			"Les courriels sont archivés.", // plural is a different word
			nil,
		},
		{
			"accented boundary",
			"De ce côté du fleuve.",
			[]string{"côté"},
		},
		{
			"accent is part of the word",
			"La cote du film.", // "cote" must not match "côté"
			nil,
		},
		{
			"none",
			"Aucun terme connu ici.",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req, err := b.Build(tt.text, testSnapshot(), testRules())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(req.TermsUsed) != len(tt.want) {
				t.Fatalf("TermsUsed = %v, want %v", req.TermsUsed, tt.want)
			}
			for i := range tt.want {
				if req.TermsUsed[i] != tt.want[i] {
					t.Errorf("TermsUsed = %v, want %v", req.TermsUsed, tt.want)
				}
			}
			if req.GlossaryUsed != (len(tt.want) > 0) {
				t.Errorf("GlossaryUsed = %v with terms %v", req.GlossaryUsed, req.TermsUsed)
			}
		})
	}
}

func TestBuildEmptyGlossary(t *testing.T) {
	t.Parallel()

	b := NewBuilder(50000)
	req, err := b.Build("Bonjour.", &domain.GlossarySnapshot{}, testRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(req.Prompt, "Glossary") {
		t.Error("empty glossary should not produce a glossary section")
	}
	if req.GlossaryUsed {
		t.Error("GlossaryUsed should be false with an empty glossary")
	}
}

func TestEstimateCost(t *testing.T) {
	t.Parallel()

	// 4,000,000 characters ≈ 1M text tokens: 1M input at $3 plus 1.1M
	// output at $15 = $19.50, before glossary overhead.
	text := strings.Repeat("abcd", 1_000_000)
	got := EstimateCost(text, 0)
	if math.Abs(got-19.5) > 1e-9 {
		t.Errorf("EstimateCost = %v, want 19.5", got)
	}

	// Glossary overhead: 100 entries ≈ 1000 extra input tokens.
	withGlossary := EstimateCost(text, 100)
	if math.Abs((withGlossary-got)-0.003) > 1e-9 {
		t.Errorf("glossary overhead = %v, want 0.003", withGlossary-got)
	}

	if EstimateCost("", 0) != 0 {
		t.Errorf("empty text should cost nothing, got %v", EstimateCost("", 0))
	}
}
