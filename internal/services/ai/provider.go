package ai

import (
	"context"
)

// SystemPrompt frames every team generation request
const SystemPrompt = "You are an expert competitive Pokemon team builder with comprehensive knowledge of all Pokemon games, movesets, abilities, and competitive strategies. Always provide complete, legal, and optimized team builds."

// CompletionOptions are the sampling parameters of one completion
type CompletionOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// CompletionProvider sends one system and one user message to a chat model and
// returns the text of the first choice. Errors are *UpstreamError.
type CompletionProvider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts CompletionOptions) (string, error)
}

// CompletionFunc adapts a function to CompletionProvider
type CompletionFunc func(ctx context.Context, systemPrompt, userPrompt string, opts CompletionOptions) (string, error)

// Complete calls f
func (f CompletionFunc) Complete(ctx context.Context, systemPrompt, userPrompt string, opts CompletionOptions) (string, error) {
	return f(ctx, systemPrompt, userPrompt, opts)
}
