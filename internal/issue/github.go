package issue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/triagent/triagent/pkg/models"
)

const defaultGitHubBaseURL = "https://api.github.com"

// GitHubFetcher fetches issues over the GitHub REST API.
type GitHubFetcher struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// GitHubOption customizes a GitHubFetcher.
type GitHubOption func(*GitHubFetcher)

// WithGitHubBaseURL overrides the API base URL (for GitHub Enterprise or
// tests).
func WithGitHubBaseURL(url string) GitHubOption {
	return func(f *GitHubFetcher) { f.baseURL = url }
}

// WithGitHubHTTPClient overrides the HTTP client.
func WithGitHubHTTPClient(c *http.Client) GitHubOption {
	return func(f *GitHubFetcher) { f.httpClient = c }
}

// NewGitHubFetcher creates a fetcher authenticating with token.
func NewGitHubFetcher(token string, opts ...GitHubOption) (*GitHubFetcher, error) {
	if token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN not set")
	}

	f := &GitHubFetcher{
		token:      token,
		baseURL:    defaultGitHubBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

type githubIssue struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
	HTMLURL     string           `json:"html_url"`
	PullRequest *json.RawMessage `json:"pull_request,omitempty"`
}

// Fetch retrieves an issue and maps it to the pipeline input contract.
// Pull requests are rejected; the pipeline only processes issues.
func (f *GitHubFetcher) Fetch(ctx context.Context, owner, repo string, number int) (models.Issue, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d", f.baseURL, owner, repo, number)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Issue{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+f.token)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return models.Issue{}, fmt.Errorf("fetch GitHub issue: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return models.Issue{}, fmt.Errorf("issue #%d not found in %s/%s (check that the issue exists and you have access)",
			number, owner, repo)
	case http.StatusUnauthorized:
		return models.Issue{}, fmt.Errorf("GitHub authentication failed (check that your GITHUB_TOKEN is valid)")
	default:
		return models.Issue{}, fmt.Errorf("GitHub API error: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return models.Issue{}, fmt.Errorf("read response: %w", err)
	}

	var gh githubIssue
	if err := json.Unmarshal(body, &gh); err != nil {
		return models.Issue{}, fmt.Errorf("parse GitHub response: %w", err)
	}

	if gh.PullRequest != nil {
		return models.Issue{}, fmt.Errorf("issue #%d is a pull request; use an issue number, not a PR number", number)
	}

	labels := make([]string, 0, len(gh.Labels))
	for _, l := range gh.Labels {
		labels = append(labels, l.Name)
	}

	fullRepo := owner + "/" + repo
	issue := models.Issue{
		IssueID:     models.IssueID(fullRepo, number),
		Repo:        fullRepo,
		IssueNumber: number,
		Title:       gh.Title,
		Body:        gh.Body,
		Labels:      labels,
		URL:         gh.HTMLURL,
		Source:      models.SourceGitHub,
	}
	if err := Validate(issue); err != nil {
		return models.Issue{}, fmt.Errorf("fetched issue is invalid: %w", err)
	}
	return issue, nil
}
