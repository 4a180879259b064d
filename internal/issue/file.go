package issue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/triagent/triagent/pkg/models"
)

// FromPath loads and validates an issue from a JSON file.
func FromPath(path string) (models.Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Issue{}, fmt.Errorf("read issue file: %w", err)
	}
	return FromBytes(data)
}

// FromBytes loads and validates an issue from raw JSON.
func FromBytes(data []byte) (models.Issue, error) {
	var issue models.Issue
	if err := json.Unmarshal(data, &issue); err != nil {
		return models.Issue{}, fmt.Errorf("parse issue JSON: %w", err)
	}
	if issue.Source == "" {
		issue.Source = models.SourceManual
	}
	if err := Validate(issue); err != nil {
		return models.Issue{}, err
	}
	return issue, nil
}

// ValidateFile checks an issue file without keeping the result.
// Returns an empty slice when the file is valid.
func ValidateFile(path string) []string {
	info, err := os.Stat(path)
	if err != nil {
		return []string{fmt.Sprintf("file not found: %s", path)}
	}
	if info.IsDir() {
		return []string{fmt.Sprintf("path is not a file: %s", path)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("read file: %v", err)}
	}

	var issue models.Issue
	if err := json.Unmarshal(data, &issue); err != nil {
		return []string{fmt.Sprintf("invalid JSON: %v", err)}
	}
	if issue.Source == "" {
		issue.Source = models.SourceManual
	}

	if err := Validate(issue); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return verr.Errors
		}
		return []string{err.Error()}
	}
	return nil
}
