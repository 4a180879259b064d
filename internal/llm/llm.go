// Package llm provides the text-generation clients used by the pipeline
// agents. Providers implement Generator and report token usage uniformly.
package llm

import "context"

// Response carries the generated text plus the provider-reported usage.
type Response struct {
	Text string
	// Model is the model that actually served the call.
	Model string
	// InputTokens and OutputTokens are provider-reported counts.
	InputTokens  int64
	OutputTokens int64
	// TotalTokens is zero when the provider does not report a total.
	TotalTokens int64
}

// Generator generates a completion for a system prompt + user prompt pair.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (Response, error)
}

// Closer is implemented by providers holding network resources.
type Closer interface {
	Close() error
}
