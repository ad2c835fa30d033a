// Package llm abstracts the chat-completion providers used by the fact
// generation collaborator. The estimation engine itself never talks to a
// model; providers only produce candidate facts, which are repaired and
// validated before entering the Fact Store.
package llm

import (
	"context"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// MockProvider returns a canned response. Used by tests and by the CLI in
// offline mode.
type MockProvider struct {
	Response string
	Err      error
}

// Ensure interface compliance
var _ Provider = (*MockProvider)(nil)

func (p *MockProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	if p.Err != nil {
		return "", p.Err
	}
	return p.Response, nil
}

func (p *MockProvider) AdaptInstructions(raw string) string {
	return raw
}
