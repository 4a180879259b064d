package pipeline

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/triagent/triagent/pkg/models"
)

//go:embed pm_prompt.md
var pmPrompt string

//go:embed dev_prompt.md
var devPrompt string

//go:embed qa_prompt.md
var qaPrompt string

const pmSystemPrompt = `You are a Product Manager reviewing a GitHub issue.
Your job is to understand the request and create a clear implementation plan.

Be concise and practical. Focus on what needs to be done, not perfection.
`

const devSystemPrompt = `You are a Senior Developer implementing a feature based on a PM's plan.
Your job is to write clean, working code with tests.

Write practical code. Don't over-engineer. Include basic tests.
`

const qaSystemPrompt = `You are a QA Engineer reviewing code implementation.
Your job is to verify the code meets requirements and find issues.

Be thorough but practical. Focus on real problems, not style nitpicks.
`

type pmPromptData struct {
	Title  string
	Repo   string
	Labels string
	Body   string
}

type devPromptData struct {
	Title              string
	Repo               string
	Summary            string
	AcceptanceCriteria string
	Plan               string
}

type qaPromptData struct {
	Title              string
	AcceptanceCriteria string
	DevFiles           string
	DevNotes           string
}

func buildPMPrompt(issue models.Issue) (string, error) {
	labels := "None"
	if len(issue.Labels) > 0 {
		labels = strings.Join(issue.Labels, ", ")
	}
	body := issue.Body
	if body == "" {
		body = "(No description provided)"
	}

	return renderPrompt("pm", pmPrompt, pmPromptData{
		Title:  issue.Title,
		Repo:   issue.Repo,
		Labels: labels,
		Body:   body,
	})
}

func buildDevPrompt(issue models.Issue, pm models.PMOutput) (string, error) {
	var plan strings.Builder
	for i, step := range pm.Plan {
		fmt.Fprintf(&plan, "%d. %s\n", i+1, step)
	}

	return renderPrompt("dev", devPrompt, devPromptData{
		Title:              issue.Title,
		Repo:               issue.Repo,
		Summary:            pm.Summary,
		AcceptanceCriteria: bulletList(pm.AcceptanceCriteria),
		Plan:               strings.TrimRight(plan.String(), "\n"),
	})
}

func buildQAPrompt(issue models.Issue, pm models.PMOutput, dev models.DevOutput) (string, error) {
	var files strings.Builder
	for _, f := range dev.Files {
		fmt.Fprintf(&files, "\n--- %s (%s) ---\n%s\n", f.Path, f.Language, f.Content)
	}
	filesStr := files.String()
	if filesStr == "" {
		filesStr = "(No files provided)"
	}

	notes := "None"
	if len(dev.Notes) > 0 {
		notes = bulletList(dev.Notes)
	}

	return renderPrompt("qa", qaPrompt, qaPromptData{
		Title:              issue.Title,
		AcceptanceCriteria: bulletList(pm.AcceptanceCriteria),
		DevFiles:           filesStr,
		DevNotes:           notes,
	})
}

func renderPrompt(name, tmplText string, data any) (string, error) {
	tmpl, err := template.New(name).Parse(tmplText)
	if err != nil {
		return "", fmt.Errorf("parse %s prompt template: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", name, err)
	}
	return buf.String(), nil
}

func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	return strings.Join(lines, "\n")
}
