// Package rules loads and validates the canonical translation rule set.
//
// The eleven directives ship embedded in the binary; an override file with
// the same shape may replace them, subject to identical validation. Rules
// are loaded once at startup and read-only thereafter.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/termpipe/termpipe/internal/domain"
)

//go:embed default_rules.yaml
var defaultRules []byte

type ruleFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

type ruleSpec struct {
	ID          int    `yaml:"id"`
	Description string `yaml:"description"`
	AppliesTo   string `yaml:"applies_to"`
}

// Load returns the validated rule set. An empty path loads the embedded
// canonical rules; otherwise the file at path is loaded instead. Any
// missing, duplicate, or malformed rule fails with
// *domain.InvalidRuleSetError.
func Load(path string) (*domain.RuleSet, error) {
	data := defaultRules
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("rules: read %s: %w", path, err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes and validates a YAML rule file. Rules are returned sorted
// by id so embedding order is deterministic regardless of file order.
func Parse(data []byte) (*domain.RuleSet, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &domain.InvalidRuleSetError{Problems: []string{fmt.Sprintf("yaml: %v", err)}}
	}

	rules := make([]domain.Rule, 0, len(f.Rules))
	for _, spec := range f.Rules {
		rules = append(rules, domain.Rule{
			ID:          spec.ID,
			Description: spec.Description,
			AppliesTo:   domain.RuleCategory(spec.AppliesTo),
		})
	}

	if problems := validate(rules); len(problems) > 0 {
		return nil, &domain.InvalidRuleSetError{Problems: problems}
	}

	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })

	return &domain.RuleSet{Rules: rules}, nil
}

// validate collects every problem so a broken file can be fixed in one pass.
// The set must contain exactly the ids 1..domain.RuleCount, each once, with
// a non-empty description and a known category.
func validate(rules []domain.Rule) []string {
	var problems []string

	seen := make(map[int]bool, domain.RuleCount)
	for _, r := range rules {
		if r.ID < 1 || r.ID > domain.RuleCount {
			problems = append(problems, fmt.Sprintf("rule id %d out of range 1..%d", r.ID, domain.RuleCount))
			continue
		}
		if seen[r.ID] {
			problems = append(problems, fmt.Sprintf("rule id %d duplicated", r.ID))
			continue
		}
		seen[r.ID] = true

		if r.Description == "" {
			problems = append(problems, fmt.Sprintf("rule %d has an empty description", r.ID))
		}
		if !r.AppliesTo.IsValid() {
			problems = append(problems, fmt.Sprintf("rule %d has unknown category %q", r.ID, r.AppliesTo))
		}
	}

	for id := 1; id <= domain.RuleCount; id++ {
		if !seen[id] {
			problems = append(problems, fmt.Sprintf("rule %d missing", id))
		}
	}

	return problems
}
