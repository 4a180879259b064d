// Package issue loads pipeline issues from JSON files, the mock issue
// directory, or the GitHub REST API, and validates them against the input
// contract.
package issue

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/triagent/triagent/pkg/models"
)

var (
	issueIDRe = regexp.MustCompile(`^[\w.-]+/[\w.-]+#\d+$`)
	repoRe    = regexp.MustCompile(`^[\w.-]+/[\w.-]+$`)
)

// ValidationError reports all problems found in an issue at once.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("issue validation failed: %d error(s): %s",
		len(e.Errors), strings.Join(e.Errors, "; "))
}

// Validate checks an issue against the input contract and returns every
// problem found. A nil return means the issue is valid.
func Validate(issue models.Issue) error {
	var errs []string

	if issue.IssueID == "" {
		errs = append(errs, "missing required field: issue_id")
	} else if !issueIDRe.MatchString(issue.IssueID) {
		errs = append(errs, "issue_id must be in format 'owner/repo#123'")
	}

	if issue.Repo == "" {
		errs = append(errs, "missing required field: repo")
	} else if !repoRe.MatchString(issue.Repo) {
		errs = append(errs, "repo must be in format 'owner/repo'")
	}

	if issue.IssueNumber < 1 {
		errs = append(errs, "issue_number must be >= 1")
	}

	if issue.Title == "" {
		errs = append(errs, "missing required field: title")
	}

	if issue.URL == "" {
		errs = append(errs, "missing required field: url")
	} else if !strings.HasPrefix(issue.URL, "http://") && !strings.HasPrefix(issue.URL, "https://") {
		errs = append(errs, "url must start with http:// or https://")
	}

	if issue.Source != "" && !issue.Source.Valid() {
		errs = append(errs, fmt.Sprintf("source must be one of: mock, github, manual (got %q)", issue.Source))
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
