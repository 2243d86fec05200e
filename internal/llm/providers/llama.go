package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"change-digest/internal/config"
)

type LlamaClient struct {
	config     *config.Config
	httpClient *http.Client
}

type LlamaRequest struct {
	MaxTokens   int     `json:"max_tokens"`
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
}

type LlamaResponse struct {
	Choices []LlamaChoice `json:"choices"`
	Usage   OpenAIUsage   `json:"usage"`
}

type LlamaChoice struct {
	Text string `json:"text"`
}

func NewLlama(cfg *config.Config) LLMClient {
	return &LlamaClient{config: cfg, httpClient: newModelHTTPClient(cfg)}
}

// Generate calls a completions endpoint. Llama uses a combined prompt.
func (l *LlamaClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	cfg := l.config

	req := LlamaRequest{
		Model:       cfg.ModelID,
		Prompt:      systemPrompt + "\n\n" + userPrompt,
		MaxTokens:   cfg.ModelMaxResponseTokens,
		Temperature: 0,
	}

	slog.Debug("Sending request to LLM", "provider", "Llama", "model", cfg.ModelID)

	var response LlamaResponse
	if err := postJSON(ctx, l.httpClient, "Llama", cfg.ModelAPI+"/v1/completions", cfg.ModelUserKey, req, &response); err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	slog.Debug("Llama API token usage",
		"input_tokens", response.Usage.PromptTokens,
		"output_tokens", response.Usage.CompletionTokens,
		"total_tokens", response.Usage.TotalTokens)

	return response.Choices[0].Text, nil
}
