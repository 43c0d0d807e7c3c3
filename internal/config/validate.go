package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Translator.MaxInputChars <= 0 {
		return fmt.Errorf("translator.max_input_chars must be > 0 (got %d)", c.Translator.MaxInputChars)
	}
	if c.Translator.MaxTokens <= 0 {
		return fmt.Errorf("translator.max_tokens must be > 0 (got %d)", c.Translator.MaxTokens)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be > 0 (got %v)", c.Cache.TTL)
	}
	if c.Lookup.SourceTimeout <= 0 {
		return fmt.Errorf("lookup.source_timeout must be > 0 (got %v)", c.Lookup.SourceTimeout)
	}

	priority, err := ParseSourcePriority(c.Lookup.SourcePriority)
	if err != nil {
		return fmt.Errorf("lookup.source_priority: %w", err)
	}
	c.Lookup.Priority = priority

	return nil
}

// ParseSourcePriority parses a comma-separated list of terminology source
// names (e.g. "termium,oqlf") into an ordered slice. Names must be known
// and must not repeat.
func ParseSourcePriority(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("must not be empty")
	}

	known := map[string]bool{"termium": true, "oqlf": true}
	seen := map[string]bool{}

	parts := strings.Split(raw, ",")
	priority := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !known[p] {
			return nil, fmt.Errorf("unknown source %q", p)
		}
		if seen[p] {
			return nil, fmt.Errorf("source %q listed twice", p)
		}
		seen[p] = true
		priority = append(priority, p)
	}
	if len(priority) == 0 {
		return nil, fmt.Errorf("must name at least one source")
	}

	return priority, nil
}
