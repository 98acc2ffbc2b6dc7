// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService generates answers from a persona and a prompt.
//
// Implementations may stream tokens from the provider; Generate always
// returns the concatenated text.
//
// Implementations include:
//   - Ollama (local models)
//   - OpenAI (GPT-4o family)
//   - Anthropic (Claude)
type LLMService interface {
	// Generate produces a completion for the request.
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateRequest is a single generation call.
type GenerateRequest struct {
	// System is the persona/system preamble.
	System string

	// Prompt is the user prompt (context plus question).
	Prompt string

	// MaxTokens is the maximum number of tokens to generate. Zero uses the provider default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
