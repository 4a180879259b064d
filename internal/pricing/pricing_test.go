package pricing

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLookup_OrderedMatching(t *testing.T) {
	table := NewTable()

	tests := []struct {
		name      string
		model     string
		wantIn    float64
		wantOut   float64
		wantKnown bool
	}{
		{
			name:      "exact claude model",
			model:     "claude-3-5-sonnet-20241022",
			wantIn:    3.00,
			wantOut:   15.00,
			wantKnown: true,
		},
		{
			name:      "gpt-4o matches before gpt-4",
			model:     "gpt-4o",
			wantIn:    2.50,
			wantOut:   10.00,
			wantKnown: true,
		},
		{
			name:      "gpt-4o-mini matches before gpt-4o",
			model:     "gpt-4o-mini",
			wantIn:    0.15,
			wantOut:   0.60,
			wantKnown: true,
		},
		{
			name:      "versioned variant resolves by substring",
			model:     "gpt-4o-2024-08-06",
			wantIn:    2.50,
			wantOut:   10.00,
			wantKnown: true,
		},
		{
			name:      "case insensitive",
			model:     "Claude-3-Haiku-20240307",
			wantIn:    0.25,
			wantOut:   1.25,
			wantKnown: true,
		},
		{
			name:      "default sonnet 4 model is known",
			model:     "claude-sonnet-4-20250514",
			wantIn:    3.00,
			wantOut:   15.00,
			wantKnown: true,
		},
		{
			name:      "bedrock inference profile resolves by substring",
			model:     "us.anthropic.claude-sonnet-4-20250514-v1:0",
			wantIn:    3.00,
			wantOut:   15.00,
			wantKnown: true,
		},
		{
			name:      "unknown model falls back to mid-range",
			model:     "some-future-model",
			wantIn:    3.00,
			wantOut:   15.00,
			wantKnown: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, known := table.Lookup(tt.model)
			if known != tt.wantKnown {
				t.Errorf("Lookup(%q) known = %v, want %v", tt.model, known, tt.wantKnown)
			}
			if rate.Input != tt.wantIn || rate.Output != tt.wantOut {
				t.Errorf("Lookup(%q) = %v/%v, want %v/%v", tt.model, rate.Input, rate.Output, tt.wantIn, tt.wantOut)
			}
		})
	}
}

func TestCost(t *testing.T) {
	table := NewTable()

	// 1000 in + 500 out on claude-3-5-sonnet: 1000/1M*3 + 500/1M*15 = 0.0105
	cost, known := table.Cost("claude-3-5-sonnet-20241022", 1000, 500)
	if !known {
		t.Error("expected known model")
	}
	if cost != 0.0105 {
		t.Errorf("Cost = %v, want 0.0105", cost)
	}

	// Zero tokens cost nothing.
	cost, _ = table.Cost("gpt-4o", 0, 0)
	if cost != 0 {
		t.Errorf("Cost with zero tokens = %v, want 0", cost)
	}
}

func TestCost_Rounding(t *testing.T) {
	table := NewTable()

	// 1 input token on gpt-4o-mini: 0.15/1M = 0.00000015, rounds to 0.
	cost, _ := table.Cost("gpt-4o-mini", 1, 0)
	if cost != 0 {
		t.Errorf("Cost = %v, want 0 after rounding to 6 places", cost)
	}

	// 7 output tokens on gpt-4: 7/1M*60 = 0.00042.
	cost, _ = table.Cost("gpt-4", 0, 7)
	if cost != 0.00042 {
		t.Errorf("Cost = %v, want 0.00042", cost)
	}
}

func TestLoadTable_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pricing.yaml")
	contents := `
gpt-4o:
  input: 5.00
  output: 20.00
my-local-model:
  input: 0.10
  output: 0.20
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}

	// Override wins over the built-in entry.
	rate, known := table.Lookup("gpt-4o")
	if !known || rate.Input != 5.00 || rate.Output != 20.00 {
		t.Errorf("override not applied: %v known=%v", rate, known)
	}

	// New models become known.
	rate, known = table.Lookup("my-local-model")
	if !known || rate.Input != 0.10 {
		t.Errorf("new model not found: %v known=%v", rate, known)
	}

	// Built-ins not overridden remain intact.
	rate, known = table.Lookup("claude-3-haiku-20240307")
	if !known || rate.Input != 0.25 {
		t.Errorf("builtin lost: %v known=%v", rate, known)
	}
}

func TestLoadTable_OverrideKeepsSpecificBuiltins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pricing.yaml")
	contents := `
gpt-4o:
  input: 5.00
  output: 20.00
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}

	// A generic override must not capture the more specific built-in
	// variant by substring.
	rate, known := table.Lookup("gpt-4o-mini")
	if !known || rate.Input != 0.15 || rate.Output != 0.60 {
		t.Errorf("Lookup(gpt-4o-mini) = %v/%v known=%v, want built-in 0.15/0.60",
			rate.Input, rate.Output, known)
	}

	// The override still applies to its own model.
	rate, known = table.Lookup("gpt-4o")
	if !known || rate.Input != 5.00 || rate.Output != 20.00 {
		t.Errorf("Lookup(gpt-4o) = %v/%v known=%v, want override 5.00/20.00",
			rate.Input, rate.Output, known)
	}
}

func TestLoadTable_MissingFile(t *testing.T) {
	if _, err := LoadTable("/nonexistent/pricing.yaml"); err == nil {
		t.Error("expected error for missing override file")
	}
}

func TestLoadTable_EmptyPath(t *testing.T) {
	table, err := LoadTable("")
	if err != nil {
		t.Fatalf("LoadTable(\"\"): %v", err)
	}
	if _, known := table.Lookup("gpt-4"); !known {
		t.Error("builtin table missing entries")
	}
}
