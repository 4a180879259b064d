// Package track builds per-call token usage records and aggregates them
// across the agents of a pipeline run.
package track

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/triagent/triagent/internal/pricing"
	"github.com/triagent/triagent/pkg/models"
)

// ContextWindow is the assumed model context window used for the
// context-usage teaching metric (200k-token class models).
const ContextWindow = 200_000

// Usage builds a TokenUsage from provider-reported counts, pricing the call
// against the table. total may be zero, in which case input+output is used.
func Usage(table *pricing.Table, model string, input, output, total int64) models.TokenUsage {
	if input < 0 {
		input = 0
	}
	if output < 0 {
		output = 0
	}
	if total <= 0 {
		total = input + output
	}

	cost, _ := table.Cost(model, input, output)
	return models.TokenUsage{
		InputTokens:      input,
		OutputTokens:     output,
		TotalTokens:      total,
		Model:            model,
		EstimatedCostUSD: &cost,
	}
}

// Aggregate sums per-agent usage into pipeline totals with cost breakdown
// and efficiency metrics. An empty slice yields zero values.
func Aggregate(agents []models.AgentTokens) models.PipelineTokens {
	out := models.PipelineTokens{
		Agents:        agents,
		CostBreakdown: make(map[string]float64, len(agents)),
	}

	var totalCost float64
	var haveCost bool
	var maxTokens int64
	for _, a := range agents {
		out.TotalInputTokens += a.Usage.InputTokens
		out.TotalOutputTokens += a.Usage.OutputTokens
		out.TotalTokens += a.Usage.TotalTokens
		if a.Usage.TotalTokens > maxTokens {
			maxTokens = a.Usage.TotalTokens
		}

		cost := 0.0
		if a.Usage.EstimatedCostUSD != nil {
			cost = *a.Usage.EstimatedCostUSD
			haveCost = true
		}
		out.CostBreakdown[a.AgentName] = cost
		totalCost += cost
	}

	// A zero total reports no cost at all, so free or unmetered runs read
	// as "N/A" rather than "$0.000000".
	if haveCost && totalCost != 0 {
		rounded := round6(totalCost)
		out.EstimatedTotalCostUSD = &rounded
	}

	m := models.EfficiencyMetrics{
		MaxAgentTokens:     maxTokens,
		ContextWindowUsage: round2(float64(maxTokens) / ContextWindow * 100),
		TotalAgents:        len(agents),
	}
	if len(agents) > 0 {
		m.AvgTokensPerAgent = round2(float64(out.TotalTokens) / float64(len(agents)))
		m.AvgCostPerAgent = round6(totalCost / float64(len(agents)))
	}
	if out.TotalOutputTokens > 0 {
		m.InputOutputRatio = round3(float64(out.TotalInputTokens) / float64(out.TotalOutputTokens))
	}
	out.Efficiency = m

	return out
}

// Summary renders the fixed-width token usage block printed after a run.
func Summary(tokens models.PipelineTokens) string {
	rule := strings.Repeat("=", 60)
	var b strings.Builder

	fmt.Fprintf(&b, "%s\nTOKEN USAGE SUMMARY\n%s\n", rule, rule)

	for _, a := range tokens.Agents {
		fmt.Fprintf(&b, "%6s: %8s in + %8s out = %9s total (%s)\n",
			a.AgentName,
			humanize.Comma(a.Usage.InputTokens),
			humanize.Comma(a.Usage.OutputTokens),
			humanize.Comma(a.Usage.TotalTokens),
			costString(a.Usage.EstimatedCostUSD),
		)
	}

	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 60))
	fmt.Fprintf(&b, "TOTAL:  %8s in + %8s out = %9s total\n",
		humanize.Comma(tokens.TotalInputTokens),
		humanize.Comma(tokens.TotalOutputTokens),
		humanize.Comma(tokens.TotalTokens),
	)
	fmt.Fprintf(&b, "COST:   %s\n", costString(tokens.EstimatedTotalCostUSD))
	fmt.Fprintf(&b, "%s\n", rule)

	m := tokens.Efficiency
	fmt.Fprintf(&b, "Avg tokens/agent: %s\n", humanize.Commaf(m.AvgTokensPerAgent))
	fmt.Fprintf(&b, "Max agent tokens: %s\n", humanize.Comma(m.MaxAgentTokens))
	fmt.Fprintf(&b, "Context usage:    %.2f%%\n", m.ContextWindowUsage)
	fmt.Fprintf(&b, "Input/Output:     %.3f\n", m.InputOutputRatio)
	b.WriteString(rule)

	return b.String()
}

func costString(cost *float64) string {
	if cost == nil || *cost == 0 {
		return "N/A"
	}
	return fmt.Sprintf("$%.6f", *cost)
}

func round2(v float64) float64 { return math.Round(v*1e2) / 1e2 }
func round3(v float64) float64 { return math.Round(v*1e3) / 1e3 }
func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
