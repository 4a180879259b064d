package models

import (
	"encoding/json"
	"testing"
)

func TestNewResult(t *testing.T) {
	issue := Issue{
		IssueID:     "acme/widgets#7",
		Repo:        "acme/widgets",
		IssueNumber: 7,
		Title:       "Fix login timeout",
		URL:         "https://github.com/acme/widgets/issues/7",
	}
	meta := NewRunMetadata()

	result := NewResult(issue,
		PMOutput{Summary: "Fix the timeout"},
		DevOutput{Files: []DevFile{{Path: "auth.py", Content: "..."}}},
		QAOutput{Verdict: VerdictFail},
		meta,
	)

	if result.RunID != meta.RunID {
		t.Errorf("run id = %q, want %q", result.RunID, meta.RunID)
	}
	if result.TimestampUTC != meta.TimestampUTC {
		t.Errorf("timestamp = %q, want %q", result.TimestampUTC, meta.TimestampUTC)
	}
	if result.Metadata == nil {
		t.Fatal("metadata not attached")
	}
	if len(result.NextSteps) != 3 {
		t.Errorf("expected 3 next steps for fail verdict, got %d", len(result.NextSteps))
	}
}

func TestNewRunMetadata(t *testing.T) {
	a := NewRunMetadata()
	b := NewRunMetadata()

	if a.RunID == "" || a.TimestampUTC == "" {
		t.Error("metadata fields not populated")
	}
	if a.RunID == b.RunID {
		t.Error("run ids should be unique")
	}
}

func TestNextSteps(t *testing.T) {
	tests := []struct {
		verdict Verdict
		first   string
		count   int
	}{
		{VerdictPass, "Review the proposed implementation", 5},
		{VerdictFail, "Review QA findings", 3},
		{VerdictNeedsHuman, "Human review required before proceeding", 3},
	}

	for _, tt := range tests {
		t.Run(string(tt.verdict), func(t *testing.T) {
			steps := NextSteps(tt.verdict)
			if len(steps) != tt.count {
				t.Errorf("got %d steps, want %d", len(steps), tt.count)
			}
			if steps[0] != tt.first {
				t.Errorf("first step = %q, want %q", steps[0], tt.first)
			}
		})
	}
}

func TestVerdictValid(t *testing.T) {
	tests := []struct {
		verdict Verdict
		want    bool
	}{
		{VerdictPass, true},
		{VerdictFail, true},
		{VerdictNeedsHuman, true},
		{Verdict("maybe"), false},
		{Verdict(""), false},
	}

	for _, tt := range tests {
		if got := tt.verdict.Valid(); got != tt.want {
			t.Errorf("Verdict(%q).Valid() = %v, want %v", tt.verdict, got, tt.want)
		}
	}
}

func TestIssueSourceValid(t *testing.T) {
	tests := []struct {
		source IssueSource
		want   bool
	}{
		{SourceMock, true},
		{SourceGitHub, true},
		{SourceManual, true},
		{IssueSource("jira"), false},
	}

	for _, tt := range tests {
		if got := tt.source.Valid(); got != tt.want {
			t.Errorf("IssueSource(%q).Valid() = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestIssueID(t *testing.T) {
	if got := IssueID("acme/widgets", 42); got != "acme/widgets#42" {
		t.Errorf("IssueID = %q", got)
	}
}

func TestPipelineResultJSONFieldNames(t *testing.T) {
	result := NewResult(Issue{IssueID: "a/b#1", Repo: "a/b", IssueNumber: 1, Title: "t", URL: "u"},
		PMOutput{Summary: "s"},
		DevOutput{},
		QAOutput{Verdict: VerdictPass},
		NewRunMetadata(),
	)

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"run_id", "timestamp_utc", "issue", "pm", "dev", "qa", "next_steps", "metadata"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("serialized result missing %q", key)
		}
	}
}
