package issue

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/triagent/triagent/pkg/models"
)

// MockSource loads pre-defined issues from the mock_issues directory.
// Mock issues are JSON files named issue_*.json, used for demos and
// testing without GitHub access.
type MockSource struct {
	dir string
}

// NewMockSource creates a source reading from dir.
func NewMockSource(dir string) *MockSource {
	return &MockSource{dir: dir}
}

// ListAvailable returns the mock issue filenames, sorted.
// A missing directory yields an empty list.
func (s *MockSource) ListAvailable() []string {
	matches, err := filepath.Glob(filepath.Join(s.dir, "issue_*.json"))
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	sort.Strings(names)
	return names
}

// Load loads a mock issue by filename (e.g. "issue_001.json").
// The ".json" suffix may be omitted.
func (s *MockSource) Load(filename string) (models.Issue, error) {
	if !strings.HasSuffix(filename, ".json") {
		filename += ".json"
	}

	issue, err := FromPath(filepath.Join(s.dir, filename))
	if err != nil {
		available := s.ListAvailable()
		if len(available) > 0 {
			return models.Issue{}, fmt.Errorf("mock issue %s: %w (available: %s)",
				filename, err, strings.Join(available, ", "))
		}
		return models.Issue{}, fmt.Errorf("mock issue %s: %w", filename, err)
	}

	issue.Source = models.SourceMock
	return issue, nil
}
