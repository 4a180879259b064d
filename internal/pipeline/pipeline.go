// Package pipeline runs the PM -> Dev -> QA agent sequence over a single
// issue and assembles the final result with aggregated token usage.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/triagent/triagent/internal/llm"
	"github.com/triagent/triagent/internal/pricing"
	"github.com/triagent/triagent/internal/track"
	"github.com/triagent/triagent/pkg/models"
)

// Pipeline orchestrates the three agent stages against one Generator.
type Pipeline struct {
	gen      llm.Generator
	pricing  *pricing.Table
	model    string
	debug    *DebugLogger
	progress func(agent, message string)
}

// Options configures optional pipeline behavior.
type Options struct {
	// Pricing is the rate table for cost estimation. Defaults to the
	// built-in table when nil.
	Pricing *pricing.Table
	// Debug receives detailed per-stage log lines. May be nil.
	Debug *DebugLogger
	// Progress receives short per-agent status messages, typically wired
	// to console output. May be nil.
	Progress func(agent, message string)
}

// New creates a pipeline using gen for all three agents. The model name is
// used for cost lookup when the provider response does not carry one.
func New(gen llm.Generator, model string, opts Options) *Pipeline {
	table := opts.Pricing
	if table == nil {
		table = pricing.NewTable()
	}
	return &Pipeline{
		gen:      gen,
		pricing:  table,
		model:    model,
		debug:    opts.Debug,
		progress: opts.Progress,
	}
}

// Run executes the full pipeline for one issue. sourceFile records where the
// issue came from and may be empty.
//
// Agent responses that are not valid JSON do not abort the run: each stage
// falls back to a degraded output that preserves the raw response, so a
// single malformed reply still produces a reviewable result.
func (p *Pipeline) Run(ctx context.Context, issue models.Issue, sourceFile string) (models.PipelineResult, error) {
	start := time.Now()
	meta := models.NewRunMetadata()
	meta.SourceFile = sourceFile

	p.logf("pipeline", "run %s: issue %s", meta.RunID, issue.IssueID)

	var usages []models.AgentTokens

	pmOut, pmTokens, err := p.runPM(ctx, issue)
	if err != nil {
		return models.PipelineResult{}, fmt.Errorf("pm agent: %w", err)
	}
	usages = appendUsage(usages, pmTokens)

	devOut, devTokens, err := p.runDev(ctx, issue, pmOut)
	if err != nil {
		return models.PipelineResult{}, fmt.Errorf("dev agent: %w", err)
	}
	usages = appendUsage(usages, devTokens)

	qaOut, qaTokens, err := p.runQA(ctx, issue, pmOut, devOut)
	if err != nil {
		return models.PipelineResult{}, fmt.Errorf("qa agent: %w", err)
	}
	usages = appendUsage(usages, qaTokens)

	if len(usages) > 0 {
		tokens := track.Aggregate(usages)
		meta.TokenUsage = &tokens
	}
	meta.DurationSeconds = time.Since(start).Seconds()

	result := models.NewResult(issue, pmOut, devOut, qaOut, meta)
	p.logf("pipeline", "run %s: verdict %s in %.1fs", meta.RunID, qaOut.Verdict, meta.DurationSeconds)
	return result, nil
}

func (p *Pipeline) runPM(ctx context.Context, issue models.Issue) (models.PMOutput, *models.AgentTokens, error) {
	prompt, err := buildPMPrompt(issue)
	if err != nil {
		return models.PMOutput{}, nil, err
	}

	p.logf("pm", "Analyzing issue and creating plan...")
	resp, err := p.gen.Generate(ctx, pmSystemPrompt, prompt)
	if err != nil {
		return models.PMOutput{}, nil, err
	}
	tokens := p.recordUsage("PM", resp)

	var out models.PMOutput
	if err := extractJSON(resp.Text, &out); err != nil {
		p.logf("pm", "response was not valid JSON, using fallback")
		out = models.PMOutput{
			Summary:            truncate(resp.Text, 500),
			AcceptanceCriteria: []string{"Review PM response manually"},
			Plan:               []string{"Parse PM output and refine"},
			Assumptions:        []string{"LLM response format issue"},
		}
	}

	p.logf("pm", "Created %d plan steps", len(out.Plan))
	return out, tokens, nil
}

func (p *Pipeline) runDev(ctx context.Context, issue models.Issue, pm models.PMOutput) (models.DevOutput, *models.AgentTokens, error) {
	prompt, err := buildDevPrompt(issue, pm)
	if err != nil {
		return models.DevOutput{}, nil, err
	}

	p.logf("dev", "Implementing feature...")
	resp, err := p.gen.Generate(ctx, devSystemPrompt, prompt)
	if err != nil {
		return models.DevOutput{}, nil, err
	}
	tokens := p.recordUsage("Dev", resp)

	var out models.DevOutput
	if err := extractJSON(resp.Text, &out); err != nil {
		p.logf("dev", "response was not valid JSON, using fallback")
		out = models.DevOutput{
			Files: []models.DevFile{{
				Path:     "implementation.txt",
				Content:  resp.Text,
				Language: "text",
			}},
			Notes: []string{"Response was not structured JSON"},
		}
	}

	p.logf("dev", "Created %d file(s)", len(out.Files))
	return out, tokens, nil
}

func (p *Pipeline) runQA(ctx context.Context, issue models.Issue, pm models.PMOutput, dev models.DevOutput) (models.QAOutput, *models.AgentTokens, error) {
	prompt, err := buildQAPrompt(issue, pm, dev)
	if err != nil {
		return models.QAOutput{}, nil, err
	}

	p.logf("qa", "Reviewing implementation...")
	resp, err := p.gen.Generate(ctx, qaSystemPrompt, prompt)
	if err != nil {
		return models.QAOutput{}, nil, err
	}
	tokens := p.recordUsage("QA", resp)

	var out models.QAOutput
	if err := extractJSON(resp.Text, &out); err != nil || !out.Verdict.Valid() {
		p.logf("qa", "response was not valid JSON, using fallback")
		out = models.QAOutput{
			Verdict:          models.VerdictNeedsHuman,
			Findings:         []string{"Response was not structured JSON", truncate(resp.Text, 200)},
			SuggestedChanges: []string{"Review QA output manually"},
		}
	}

	p.logf("qa", "Verdict: %s", out.Verdict)
	return out, tokens, nil
}

// recordUsage builds a priced AgentTokens record from a response.
// Returns nil when the provider reported no usage at all.
func (p *Pipeline) recordUsage(agent string, resp llm.Response) *models.AgentTokens {
	if resp.InputTokens == 0 && resp.OutputTokens == 0 && resp.TotalTokens == 0 {
		return nil
	}

	model := resp.Model
	if model == "" {
		model = p.model
	}
	usage := track.Usage(p.pricing, model, resp.InputTokens, resp.OutputTokens, resp.TotalTokens)

	p.logf(agent, "Tokens: %d in + %d out = %d total", usage.InputTokens, usage.OutputTokens, usage.TotalTokens)
	return &models.AgentTokens{AgentName: agent, Usage: usage}
}

func (p *Pipeline) logf(agent, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	p.debug.Log("[%s] %s", agent, msg)
	if p.progress != nil {
		p.progress(agent, msg)
	}
}

func appendUsage(usages []models.AgentTokens, t *models.AgentTokens) []models.AgentTokens {
	if t == nil {
		return usages
	}
	return append(usages, *t)
}

// truncate limits s to n characters without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
