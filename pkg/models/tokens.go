package models

// TokenUsage holds the token counts and estimated cost for one LLM call.
// Counts are never negative; Total is Input+Output when the provider does
// not report its own total.
type TokenUsage struct {
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
	TotalTokens  int64  `json:"total_tokens"`
	Model        string `json:"model_name"`
	// EstimatedCostUSD is nil when no pricing could be computed.
	EstimatedCostUSD *float64 `json:"estimated_cost_usd,omitempty"`
}

// AgentTokens attributes one call's token usage to a pipeline agent.
type AgentTokens struct {
	// AgentName is the pipeline role: "PM", "Dev", or "QA".
	AgentName string     `json:"agent_name"`
	Usage     TokenUsage `json:"usage"`
}

// EfficiencyMetrics are the derived teaching metrics attached to a run.
type EfficiencyMetrics struct {
	AvgTokensPerAgent  float64 `json:"average_tokens_per_agent"`
	MaxAgentTokens     int64   `json:"max_agent_tokens"`
	ContextWindowUsage float64 `json:"estimated_context_window_usage_percent"`
	InputOutputRatio   float64 `json:"input_output_ratio"`
	TotalAgents        int     `json:"total_agents"`
	AvgCostPerAgent    float64 `json:"cost_per_agent_avg"`
}

// PipelineTokens is the aggregate token accounting for one pipeline run.
type PipelineTokens struct {
	Agents            []AgentTokens `json:"agents"`
	TotalInputTokens  int64         `json:"total_input_tokens"`
	TotalOutputTokens int64         `json:"total_output_tokens"`
	TotalTokens       int64         `json:"total_tokens"`
	// EstimatedTotalCostUSD is nil when no agent reported a cost.
	EstimatedTotalCostUSD *float64           `json:"estimated_total_cost_usd,omitempty"`
	CostBreakdown         map[string]float64 `json:"cost_breakdown,omitempty"`
	Efficiency            EfficiencyMetrics  `json:"efficiency_metrics"`
}
