// Package models defines the value types shared across the triagent pipeline:
// issues, per-agent outputs, token accounting, and the final run result.
package models

import "fmt"

// IssueSource identifies where an issue came from.
type IssueSource string

const (
	// SourceMock is a pre-defined issue from the mock_issues directory.
	SourceMock IssueSource = "mock"
	// SourceGitHub is an issue fetched from the GitHub REST API.
	SourceGitHub IssueSource = "github"
	// SourceManual is a hand-written issue file.
	SourceManual IssueSource = "manual"
)

// Valid reports whether s is a known issue source.
func (s IssueSource) Valid() bool {
	switch s {
	case SourceMock, SourceGitHub, SourceManual:
		return true
	}
	return false
}

// Issue is the input contract for the pipeline. Issues arrive as JSON files
// dropped into incoming/, selected from mock_issues/, or fetched from GitHub.
type Issue struct {
	// IssueID uniquely identifies the issue in "owner/repo#123" format.
	IssueID string `json:"issue_id"`
	// Repo is the repository in "owner/repo" format.
	Repo string `json:"repo"`
	// IssueNumber is the issue number within the repository (>= 1).
	IssueNumber int `json:"issue_number"`
	// Title is the issue title (non-empty).
	Title string `json:"title"`
	// Body is the issue description; may be empty.
	Body string `json:"body,omitempty"`
	// Labels are the labels attached to the issue.
	Labels []string `json:"labels,omitempty"`
	// URL points at the issue on GitHub.
	URL string `json:"url"`
	// Source records where the issue came from.
	Source IssueSource `json:"source,omitempty"`
}

// IssueID builds the canonical "owner/repo#N" identifier.
func IssueID(repo string, number int) string {
	return fmt.Sprintf("%s#%d", repo, number)
}
