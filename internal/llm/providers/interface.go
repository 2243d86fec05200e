package providers

import "context"

// LLMClient interface for all LLM providers
type LLMClient interface {
	// Generate returns the model's reply to a system and a user prompt
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
