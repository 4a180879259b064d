package issue

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/triagent/triagent/pkg/models"
)

const validIssueJSON = `{
  "issue_id": "acme/widgets#42",
  "repo": "acme/widgets",
  "issue_number": 42,
  "title": "Add CSV export",
  "body": "Users want CSV export.",
  "labels": ["enhancement"],
  "url": "https://github.com/acme/widgets/issues/42",
  "source": "mock"
}`

func writeIssueFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromPath(t *testing.T) {
	path := writeIssueFile(t, t.TempDir(), "issue.json", validIssueJSON)

	issue, err := FromPath(path)
	if err != nil {
		t.Fatalf("FromPath: %v", err)
	}
	if issue.IssueID != "acme/widgets#42" {
		t.Errorf("issue_id = %q", issue.IssueID)
	}
	if issue.Source != models.SourceMock {
		t.Errorf("source = %q", issue.Source)
	}
}

func TestFromPath_Missing(t *testing.T) {
	if _, err := FromPath("/nonexistent/issue.json"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFromBytes_DefaultsSourceToManual(t *testing.T) {
	issue, err := FromBytes([]byte(`{
		"issue_id": "a/b#1", "repo": "a/b", "issue_number": 1,
		"title": "t", "url": "https://example.com/1"
	}`))
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if issue.Source != models.SourceManual {
		t.Errorf("source = %q, want manual", issue.Source)
	}
}

func TestFromBytes_InvalidJSON(t *testing.T) {
	if _, err := FromBytes([]byte("{not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := writeIssueFile(t, dir, "ok.json", validIssueJSON)
		if errs := ValidateFile(path); len(errs) != 0 {
			t.Errorf("expected no errors, got %v", errs)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		path := writeIssueFile(t, dir, "partial.json", `{"title": "no id"}`)
		errs := ValidateFile(path)
		if len(errs) < 3 {
			t.Errorf("expected all missing fields reported, got %v", errs)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		path := writeIssueFile(t, dir, "bad.json", "{oops")
		errs := ValidateFile(path)
		if len(errs) != 1 {
			t.Fatalf("expected one error, got %v", errs)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		errs := ValidateFile(filepath.Join(dir, "nope.json"))
		if len(errs) != 1 {
			t.Fatalf("expected one error, got %v", errs)
		}
	})

	t.Run("directory", func(t *testing.T) {
		errs := ValidateFile(dir)
		if len(errs) != 1 {
			t.Fatalf("expected one error, got %v", errs)
		}
	})
}

func TestMockSource(t *testing.T) {
	dir := t.TempDir()
	writeIssueFile(t, dir, "issue_001.json", validIssueJSON)
	writeIssueFile(t, dir, "issue_002.json", validIssueJSON)
	writeIssueFile(t, dir, "other.json", validIssueJSON)

	src := NewMockSource(dir)

	available := src.ListAvailable()
	if len(available) != 2 {
		t.Fatalf("available = %v, want two issue_*.json files", available)
	}
	if available[0] != "issue_001.json" || available[1] != "issue_002.json" {
		t.Errorf("unexpected order: %v", available)
	}

	issue, err := src.Load("issue_001.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if issue.Source != models.SourceMock {
		t.Errorf("source = %q, want mock", issue.Source)
	}

	// Suffix may be omitted.
	if _, err := src.Load("issue_002"); err != nil {
		t.Errorf("Load without suffix: %v", err)
	}
}

func TestMockSource_NotFound(t *testing.T) {
	dir := t.TempDir()
	writeIssueFile(t, dir, "issue_001.json", validIssueJSON)

	src := NewMockSource(dir)
	_, err := src.Load("issue_999.json")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "issue_999.json") || !strings.Contains(err.Error(), "issue_001.json") {
		t.Errorf("error should list available issues: %v", err)
	}
}

func TestMockSource_EmptyDir(t *testing.T) {
	src := NewMockSource(filepath.Join(t.TempDir(), "missing"))
	if got := src.ListAvailable(); len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}
