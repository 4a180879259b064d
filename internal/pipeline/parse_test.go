package pipeline

import "testing"

type planDoc struct {
	Summary string   `json:"summary"`
	Plan    []string `json:"plan"`
}

func TestExtractJSON_Direct(t *testing.T) {
	var doc planDoc
	err := extractJSON(`{"summary": "fix bug", "plan": ["step 1"]}`, &doc)
	if err != nil {
		t.Fatalf("extractJSON: %v", err)
	}
	if doc.Summary != "fix bug" || len(doc.Plan) != 1 {
		t.Errorf("unexpected doc: %+v", doc)
	}
}

func TestExtractJSON_JSONFence(t *testing.T) {
	text := "Here is the plan:\n```json\n{\"summary\": \"fenced\", \"plan\": []}\n```\nDone."

	var doc planDoc
	if err := extractJSON(text, &doc); err != nil {
		t.Fatalf("extractJSON: %v", err)
	}
	if doc.Summary != "fenced" {
		t.Errorf("summary = %q", doc.Summary)
	}
}

func TestExtractJSON_BareFence(t *testing.T) {
	text := "```\n{\"summary\": \"bare\"}\n```"

	var doc planDoc
	if err := extractJSON(text, &doc); err != nil {
		t.Fatalf("extractJSON: %v", err)
	}
	if doc.Summary != "bare" {
		t.Errorf("summary = %q", doc.Summary)
	}
}

func TestExtractJSON_BraceSpan(t *testing.T) {
	text := `Sure! The result is {"summary": "embedded"} as requested.`

	var doc planDoc
	if err := extractJSON(text, &doc); err != nil {
		t.Fatalf("extractJSON: %v", err)
	}
	if doc.Summary != "embedded" {
		t.Errorf("summary = %q", doc.Summary)
	}
}

func TestExtractJSON_NoJSON(t *testing.T) {
	var doc planDoc
	if err := extractJSON("I could not produce a plan, sorry.", &doc); err == nil {
		t.Error("expected error for prose-only response")
	}
}
