// Package report renders pipeline results for humans: a fixed-width text
// report for the console and a self-contained HTML report for sharing.
package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/triagent/triagent/pkg/models"
)

// TextOptions carries optional paths shown in the text report.
type TextOptions struct {
	OutputPath string
	HTMLPath   string
}

// Text renders the run report printed after a pipeline run.
func Text(result models.PipelineResult, opts TextOptions) string {
	rule := strings.Repeat("=", 60)
	var b strings.Builder

	fmt.Fprintf(&b, "%s\nPIPELINE RUN REPORT\n%s\n", rule, rule)
	fmt.Fprintf(&b, "Run ID:  %s\n", result.RunID)
	fmt.Fprintf(&b, "Issue:   %s\n", result.Issue.IssueID)
	fmt.Fprintf(&b, "Title:   %s\n", result.Issue.Title)
	fmt.Fprintf(&b, "Verdict: %s\n", result.QA.Verdict)
	fmt.Fprintf(&b, "PM:      %d criteria, %d steps\n", len(result.PM.AcceptanceCriteria), len(result.PM.Plan))
	fmt.Fprintf(&b, "Dev:     %d files\n", len(result.Dev.Files))
	fmt.Fprintf(&b, "QA:      %d findings\n", len(result.QA.Findings))

	if opts.OutputPath != "" {
		fmt.Fprintf(&b, "Output:  %s\n", opts.OutputPath)
	}
	if opts.HTMLPath != "" {
		fmt.Fprintf(&b, "Report:  file://%s\n", opts.HTMLPath)
	}
	if result.Metadata != nil && result.Metadata.DurationSeconds > 0 {
		fmt.Fprintf(&b, "Time:    %.2fs\n", result.Metadata.DurationSeconds)
	}

	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 60))

	var tokens *models.PipelineTokens
	if result.Metadata != nil {
		tokens = result.Metadata.TokenUsage
	}
	if tokens == nil {
		b.WriteString("Token usage: unavailable (provider did not return usage metadata)\n")
		b.WriteString(rule)
		return b.String()
	}

	b.WriteString("Token usage:\n")
	for _, a := range tokens.Agents {
		fmt.Fprintf(&b, "  %6s: %6s in + %6s out = %7s total (%s)\n",
			a.AgentName,
			humanize.Comma(a.Usage.InputTokens),
			humanize.Comma(a.Usage.OutputTokens),
			humanize.Comma(a.Usage.TotalTokens),
			costString(a.Usage.EstimatedCostUSD),
		)
	}

	inner := "  " + strings.Repeat("-", 54)
	fmt.Fprintf(&b, "%s\n", inner)
	fmt.Fprintf(&b, "  TOTAL: %6s in + %6s out = %7s total\n",
		humanize.Comma(tokens.TotalInputTokens),
		humanize.Comma(tokens.TotalOutputTokens),
		humanize.Comma(tokens.TotalTokens),
	)
	fmt.Fprintf(&b, "  COST:  %s\n", costString(tokens.EstimatedTotalCostUSD))

	m := tokens.Efficiency
	fmt.Fprintf(&b, "%s\n", inner)
	fmt.Fprintf(&b, "  Avg tokens/agent: %s\n", humanize.Commaf(m.AvgTokensPerAgent))
	fmt.Fprintf(&b, "  Max agent tokens: %s\n", humanize.Comma(m.MaxAgentTokens))
	fmt.Fprintf(&b, "  Context usage:    %.2f%%\n", m.ContextWindowUsage)
	fmt.Fprintf(&b, "  Input/Output:     %.3f\n", m.InputOutputRatio)

	b.WriteString(rule)
	return b.String()
}

func costString(cost *float64) string {
	if cost == nil || *cost == 0 {
		return "N/A"
	}
	return fmt.Sprintf("$%.6f", *cost)
}
