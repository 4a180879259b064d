package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/triagent/triagent/pkg/models"
)

//go:embed report.html
var htmlTemplate string

type tokenRow struct {
	Agent  string
	Input  string
	Output string
	Total  string
	Cost   string
}

type htmlData struct {
	IssueID      string
	IssueTitle   string
	IssueRepo    string
	IssueURL     string
	IssueLabels  string
	IssueBody    string
	Verdict      string
	VerdictClass string
	VerdictColor template.CSS

	Duration string
	NumFiles int

	PMSummary     string
	PMCriteria    []string
	PMPlan        []string
	PMAssumptions []string

	DevFiles []models.DevFile
	DevNotes []string

	QAFindings    []string
	QASuggestions []string

	NextSteps []string

	TokenRows   []tokenRow
	TotalInput  string
	TotalOutput string
	TotalTokens string
	TotalCost   string

	RunID     string
	Timestamp string
}

var verdictColors = map[models.Verdict]template.CSS{
	models.VerdictPass:       "#16a34a",
	models.VerdictFail:       "#dc2626",
	models.VerdictNeedsHuman: "#ca8a04",
}

// HTML renders a self-contained report page for one pipeline result.
func HTML(result models.PipelineResult) ([]byte, error) {
	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}

	color, ok := verdictColors[result.QA.Verdict]
	if !ok {
		color = "#64748b"
	}

	labels := "None"
	if len(result.Issue.Labels) > 0 {
		labels = strings.Join(result.Issue.Labels, ", ")
	}

	data := htmlData{
		IssueID:       result.Issue.IssueID,
		IssueTitle:    result.Issue.Title,
		IssueRepo:     result.Issue.Repo,
		IssueURL:      result.Issue.URL,
		IssueLabels:   labels,
		IssueBody:     result.Issue.Body,
		Verdict:       strings.ToUpper(string(result.QA.Verdict)),
		VerdictClass:  string(result.QA.Verdict),
		VerdictColor:  color,
		Duration:      "N/A",
		NumFiles:      len(result.Dev.Files),
		PMSummary:     result.PM.Summary,
		PMCriteria:    result.PM.AcceptanceCriteria,
		PMPlan:        result.PM.Plan,
		PMAssumptions: result.PM.Assumptions,
		DevFiles:      result.Dev.Files,
		DevNotes:      result.Dev.Notes,
		QAFindings:    result.QA.Findings,
		QASuggestions: result.QA.SuggestedChanges,
		NextSteps:     result.NextSteps,
		TotalTokens:   "N/A",
		TotalCost:     "N/A",
		RunID:         result.RunID,
		Timestamp:     result.TimestampUTC,
	}

	if result.Metadata != nil && result.Metadata.DurationSeconds > 0 {
		data.Duration = fmt.Sprintf("%.1fs", result.Metadata.DurationSeconds)
	}

	if result.Metadata != nil && result.Metadata.TokenUsage != nil {
		tokens := result.Metadata.TokenUsage
		data.TotalInput = humanize.Comma(tokens.TotalInputTokens)
		data.TotalOutput = humanize.Comma(tokens.TotalOutputTokens)
		data.TotalTokens = humanize.Comma(tokens.TotalTokens)
		if tokens.EstimatedTotalCostUSD != nil {
			data.TotalCost = fmt.Sprintf("$%.4f", *tokens.EstimatedTotalCostUSD)
		}
		for _, a := range tokens.Agents {
			data.TokenRows = append(data.TokenRows, tokenRow{
				Agent:  a.AgentName,
				Input:  humanize.Comma(a.Usage.InputTokens),
				Output: humanize.Comma(a.Usage.OutputTokens),
				Total:  humanize.Comma(a.Usage.TotalTokens),
				Cost:   costString(a.Usage.EstimatedCostUSD),
			})
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteHTML writes the HTML report next to the given result JSON path,
// swapping the extension for .html. Returns the report path.
func WriteHTML(result models.PipelineResult, jsonPath string) (string, error) {
	htmlPath := strings.TrimSuffix(jsonPath, ".json") + ".html"

	content, err := HTML(result)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(htmlPath, content, 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return htmlPath, nil
}
