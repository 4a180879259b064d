// Package pricing maps model identifiers to published per-token rates and
// computes estimated USD costs for LLM calls.
package pricing

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rate holds the published price per one million tokens for a model.
type Rate struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// entry pairs a model key with its rate. Lookup walks entries in order and
// matches by substring, so more specific keys must come before generic ones
// (gpt-4o before gpt-4, gpt-4-turbo before gpt-4).
type entry struct {
	key  string
	rate Rate
}

// defaultRate is used for models absent from the table. Mid-range pricing
// (Claude Sonnet class) keeps unknown-model estimates plausible instead of
// silently reporting zero cost.
var defaultRate = Rate{Input: 3.00, Output: 15.00}

// Built-in rates per 1M tokens, from provider pricing pages.
var builtin = []entry{
	{"claude-opus-4-20250514", Rate{15.00, 75.00}},
	{"claude-sonnet-4-20250514", Rate{3.00, 15.00}},
	{"claude-3-5-sonnet-20241022", Rate{3.00, 15.00}},
	{"claude-3-5-sonnet-20240620", Rate{3.00, 15.00}},
	{"claude-3-opus-20240229", Rate{15.00, 75.00}},
	{"claude-3-sonnet-20240229", Rate{3.00, 15.00}},
	{"claude-3-haiku-20240307", Rate{0.25, 1.25}},
	{"gpt-4o-mini", Rate{0.15, 0.60}},
	{"gpt-4o", Rate{2.50, 10.00}},
	{"gpt-4-turbo-preview", Rate{10.00, 30.00}},
	{"gpt-4-turbo", Rate{10.00, 30.00}},
	{"gpt-4-32k", Rate{60.00, 120.00}},
	{"gpt-4", Rate{30.00, 60.00}},
	{"gpt-3.5-turbo-16k", Rate{3.00, 4.00}},
	{"gpt-3.5-turbo", Rate{0.50, 1.50}},
	{"gemini-1.5-pro", Rate{1.25, 5.00}},
	{"gemini-1.5-flash", Rate{0.075, 0.30}},
}

// Table resolves model names to rates. The zero value is not usable; use
// NewTable or LoadTable.
type Table struct {
	entries []entry
}

// NewTable returns a table with the built-in rates.
func NewTable() *Table {
	return &Table{entries: builtin}
}

// LoadTable returns the built-in table with rates from the YAML file at
// path merged in. The merged list is ordered longest key first so specific
// names still win across the override/built-in boundary; on equal length
// the user rate wins. An empty path returns the built-in table unchanged.
func LoadTable(path string) (*Table, error) {
	t := NewTable()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing overrides: %w", err)
	}

	// Decode through yaml.Node to keep the file's key order for ties.
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse pricing overrides: %w", err)
	}
	if len(doc.Content) == 0 {
		return t, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse pricing overrides: expected a mapping of model to rates")
	}

	var overrides []entry
	for i := 0; i+1 < len(root.Content); i += 2 {
		var rate Rate
		if err := root.Content[i+1].Decode(&rate); err != nil {
			return nil, fmt.Errorf("parse pricing override for %q: %w", root.Content[i].Value, err)
		}
		overrides = append(overrides, entry{key: strings.ToLower(root.Content[i].Value), rate: rate})
	}

	merged := append(overrides, t.entries...)
	// Longest key first: an override for a generic name must not capture
	// more specific built-in variants by substring. Stable, so overrides
	// stay ahead of built-ins with equal-length keys.
	sort.SliceStable(merged, func(i, j int) bool {
		return len(merged[i].key) > len(merged[j].key)
	})
	t.entries = merged
	return t, nil
}

// Lookup finds the rate for a model name. Matching is case-insensitive and
// by substring, so versioned variants ("gpt-4o-2024-08-06") resolve to their
// base entry. known is false when the default fallback rate was used.
func (t *Table) Lookup(model string) (rate Rate, known bool) {
	lower := strings.ToLower(model)
	for _, e := range t.entries {
		if strings.Contains(lower, e.key) {
			return e.rate, true
		}
	}
	return defaultRate, false
}

// Cost estimates the USD cost of a call, rounded to 6 decimal places.
func (t *Table) Cost(model string, inputTokens, outputTokens int64) (cost float64, known bool) {
	rate, known := t.Lookup(model)
	cost = float64(inputTokens)/1_000_000*rate.Input + float64(outputTokens)/1_000_000*rate.Output
	return round6(cost), known
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
