package models

// PMOutput is the product-manager agent's analysis of an issue.
type PMOutput struct {
	// Summary is a short statement of what needs to be done.
	Summary string `json:"summary"`
	// AcceptanceCriteria lists the conditions the implementation must meet.
	AcceptanceCriteria []string `json:"acceptance_criteria,omitempty"`
	// Plan is the ordered list of implementation steps.
	Plan []string `json:"plan,omitempty"`
	// Assumptions records what the agent assumed while analyzing.
	Assumptions []string `json:"assumptions,omitempty"`
}

// DevFile is a single file proposed by the developer agent.
type DevFile struct {
	// Path is the relative file path, e.g. "src/utils/helper.py".
	Path string `json:"path"`
	// Content is the proposed file content.
	Content string `json:"content"`
	// Language is the programming language of the file.
	Language string `json:"language,omitempty"`
}

// DevOutput is the developer agent's implementation draft.
type DevOutput struct {
	// Files are the proposed code and test files.
	Files []DevFile `json:"files,omitempty"`
	// Notes carry implementation considerations for the reviewer.
	Notes []string `json:"notes,omitempty"`
}

// Verdict is the QA agent's overall assessment of the implementation.
type Verdict string

const (
	// VerdictPass means the code meets the acceptance criteria.
	VerdictPass Verdict = "pass"
	// VerdictFail means there are clear bugs or missing requirements.
	VerdictFail Verdict = "fail"
	// VerdictNeedsHuman means a human must review before proceeding.
	VerdictNeedsHuman Verdict = "needs-human"
)

// Valid reports whether v is a known verdict.
func (v Verdict) Valid() bool {
	switch v {
	case VerdictPass, VerdictFail, VerdictNeedsHuman:
		return true
	}
	return false
}

// QAOutput is the QA agent's review of the developer's work.
type QAOutput struct {
	Verdict Verdict `json:"verdict"`
	// Findings are specific issues or observations from the review.
	Findings []string `json:"findings,omitempty"`
	// SuggestedChanges are concrete improvements or fixes.
	SuggestedChanges []string `json:"suggested_changes,omitempty"`
}
