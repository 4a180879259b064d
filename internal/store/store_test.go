package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/triagent/triagent/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "triagent.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult(runID, repo, verdict string) models.PipelineResult {
	cost := 0.0105
	meta := models.NewRunMetadata()
	meta.RunID = runID
	meta.DurationSeconds = 12.5
	meta.TokenUsage = &models.PipelineTokens{
		TotalInputTokens:      1000,
		TotalOutputTokens:     500,
		TotalTokens:           1500,
		EstimatedTotalCostUSD: &cost,
	}

	return models.NewResult(
		models.Issue{
			IssueID:     models.IssueID(repo, 42),
			Repo:        repo,
			IssueNumber: 42,
			Title:       "Add CSV export",
			URL:         "https://github.com/" + repo + "/issues/42",
			Source:      models.SourceMock,
		},
		models.PMOutput{Summary: "s", AcceptanceCriteria: []string{"a", "b"}},
		models.DevOutput{Files: []models.DevFile{{Path: "export.py", Content: "..."}}},
		models.QAOutput{Verdict: models.Verdict(verdict), Findings: []string{"f"}},
		meta,
	)
}

func TestSaveAndGetResult(t *testing.T) {
	s := openTestStore(t)

	saved := sampleResult("run-1", "acme/widgets", "pass")
	if err := s.SaveResult(saved); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	got, err := s.GetResult("run-1")
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if got.RunID != "run-1" {
		t.Errorf("run id = %q", got.RunID)
	}
	if got.Issue.IssueID != "acme/widgets#42" {
		t.Errorf("issue id = %q", got.Issue.IssueID)
	}
	if got.QA.Verdict != models.VerdictPass {
		t.Errorf("verdict = %q", got.QA.Verdict)
	}
	if got.Metadata == nil || got.Metadata.TokenUsage == nil {
		t.Fatal("token usage not round-tripped")
	}
	if got.Metadata.TokenUsage.TotalTokens != 1500 {
		t.Errorf("total tokens = %d", got.Metadata.TokenUsage.TotalTokens)
	}
}

func TestGetResult_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetResult("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveResult_Replaces(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveResult(sampleResult("run-1", "acme/widgets", "fail")); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveResult(sampleResult("run-1", "acme/widgets", "pass")); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetResult("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.QA.Verdict != models.VerdictPass {
		t.Errorf("verdict = %q, want replaced value", got.QA.Verdict)
	}

	runs, err := s.RecentRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("expected single run row, got %d", len(runs))
	}
}

func TestRecentRuns(t *testing.T) {
	s := openTestStore(t)

	for _, id := range []string{"run-1", "run-2", "run-3"} {
		if err := s.SaveResult(sampleResult(id, "acme/widgets", "pass")); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}

	r := runs[0]
	if r.Title != "Add CSV export" || r.PMCriteriaCount != 2 || r.DevFileCount != 1 || r.QAFindingCount != 1 {
		t.Errorf("unexpected summary: %+v", r)
	}
	if r.TotalTokens != 1500 || r.EstimatedCost != 0.0105 {
		t.Errorf("tokens/cost not stored: %+v", r)
	}
	if r.DurationSeconds != 12.5 {
		t.Errorf("duration = %v", r.DurationSeconds)
	}
}

func TestRunsByVerdict(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveResult(sampleResult("run-1", "acme/widgets", "pass")); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveResult(sampleResult("run-2", "acme/widgets", "fail")); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveResult(sampleResult("run-3", "acme/gadgets", "fail")); err != nil {
		t.Fatal(err)
	}

	failures, err := s.RunsByVerdict("fail", 10)
	if err != nil {
		t.Fatalf("RunsByVerdict: %v", err)
	}
	if len(failures) != 2 {
		t.Errorf("got %d failures, want 2", len(failures))
	}
}

func TestRunsByRepo(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveResult(sampleResult("run-1", "acme/widgets", "pass")); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveResult(sampleResult("run-2", "acme/gadgets", "pass")); err != nil {
		t.Fatal(err)
	}

	runs, err := s.RunsByRepo("acme/gadgets", 10)
	if err != nil {
		t.Fatalf("RunsByRepo: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != "run-2" {
		t.Errorf("unexpected runs: %+v", runs)
	}
}

func TestGetStats(t *testing.T) {
	s := openTestStore(t)

	stats, err := s.GetStats()
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalRuns != 0 {
		t.Errorf("empty store total = %d", stats.TotalRuns)
	}

	if err := s.SaveResult(sampleResult("run-1", "acme/widgets", "pass")); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveResult(sampleResult("run-2", "acme/widgets", "fail")); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveResult(sampleResult("run-3", "acme/gadgets", "pass")); err != nil {
		t.Fatal(err)
	}

	stats, err = s.GetStats()
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalRuns != 3 {
		t.Errorf("total = %d", stats.TotalRuns)
	}
	if stats.ByVerdict["pass"] != 2 || stats.ByVerdict["fail"] != 1 {
		t.Errorf("by verdict = %v", stats.ByVerdict)
	}
	if stats.UniqueRepos != 2 {
		t.Errorf("unique repos = %d", stats.UniqueRepos)
	}
	if stats.TotalTokens != 4500 {
		t.Errorf("total tokens = %d", stats.TotalTokens)
	}
	if stats.AvgDurationSeconds != 12.5 {
		t.Errorf("avg duration = %v", stats.AvgDurationSeconds)
	}
}

func TestOpen_Reopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triagent.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveResult(sampleResult("run-1", "acme/widgets", "pass")); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	// Migrations are idempotent on reopen and data survives.
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	if _, err := s2.GetResult("run-1"); err != nil {
		t.Errorf("data lost on reopen: %v", err)
	}
}
