package models

import (
	"time"

	"github.com/google/uuid"
)

// RunMetadata describes one pipeline run.
type RunMetadata struct {
	RunID        string `json:"run_id"`
	TimestampUTC string `json:"timestamp_utc"`
	// SourceFile is the path the issue was loaded from, when applicable.
	SourceFile string `json:"source_file,omitempty"`
	// DurationSeconds is the wall-clock pipeline duration.
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	// TokenUsage is nil when no provider reported usage.
	TokenUsage *PipelineTokens `json:"token_usage,omitempty"`
}

// NewRunMetadata creates metadata with a fresh run ID and current timestamp.
func NewRunMetadata() RunMetadata {
	return RunMetadata{
		RunID:        uuid.NewString(),
		TimestampUTC: time.Now().UTC().Format(time.RFC3339),
	}
}

// PipelineResult is the final output contract written to outgoing/.
type PipelineResult struct {
	RunID        string       `json:"run_id"`
	TimestampUTC string       `json:"timestamp_utc"`
	Issue        Issue        `json:"issue"`
	PM           PMOutput     `json:"pm"`
	Dev          DevOutput    `json:"dev"`
	QA           QAOutput     `json:"qa"`
	NextSteps    []string     `json:"next_steps"`
	Metadata     *RunMetadata `json:"metadata,omitempty"`
}

// NewResult assembles a PipelineResult, deriving the recommended next steps
// from the QA verdict.
func NewResult(issue Issue, pm PMOutput, dev DevOutput, qa QAOutput, meta RunMetadata) PipelineResult {
	return PipelineResult{
		RunID:        meta.RunID,
		TimestampUTC: meta.TimestampUTC,
		Issue:        issue,
		PM:           pm,
		Dev:          dev,
		QA:           qa,
		NextSteps:    NextSteps(qa.Verdict),
		Metadata:     &meta,
	}
}

// NextSteps returns the recommended follow-up actions for a verdict.
func NextSteps(v Verdict) []string {
	switch v {
	case VerdictPass:
		return []string{
			"Review the proposed implementation",
			"Create a feature branch",
			"Apply the generated code",
			"Run full test suite",
			"Submit PR for review",
		}
	case VerdictFail:
		return []string{
			"Review QA findings",
			"Address suggested changes",
			"Re-run pipeline or manually fix issues",
		}
	default:
		return []string{
			"Human review required before proceeding",
			"Clarify requirements if needed",
			"Consider breaking into smaller tasks",
		}
	}
}
