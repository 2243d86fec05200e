package providers

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"change-digest/internal/config"
)

// constructors maps CDG_MODEL_PROVIDER values to their clients
var constructors = map[string]func(*config.Config) LLMClient{
	"claude": func(cfg *config.Config) LLMClient { return NewClaude(cfg) },
	"gemini": func(cfg *config.Config) LLMClient { return NewGemini(cfg) },
	"llama":  func(cfg *config.Config) LLMClient { return NewLlama(cfg) },
}

// NewClient returns the text-generation client named by cfg.ModelProvider
func NewClient(cfg *config.Config) (LLMClient, error) {
	newClient, ok := constructors[cfg.ModelProvider]
	if !ok {
		return nil, fmt.Errorf("unsupported model provider %q, expected one of %v",
			cfg.ModelProvider, slices.Sorted(maps.Keys(constructors)))
	}

	slog.Debug("Using model provider", "provider", cfg.ModelProvider, "model", cfg.ModelID)
	return newClient(cfg), nil
}
