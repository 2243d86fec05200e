package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"change-digest/internal/config"
)

type GeminiClient struct {
	config     *config.Config
	httpClient *http.Client
}

type GeminiRequest struct {
	MaxTokens   int             `json:"max_tokens"`
	Messages    []GeminiMessage `json:"messages"`
	Model       string          `json:"model"`
	Temperature float64         `json:"temperature"`
}

type GeminiMessage struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type GeminiResponse struct {
	Choices []GeminiChoice `json:"choices"`
	Usage   OpenAIUsage    `json:"usage"`
}

type GeminiChoice struct {
	Message GeminiMessage `json:"message"`
}

// OpenAIUsage is the usage block of OpenAI-compatible responses
type OpenAIUsage struct {
	CompletionTokens int `json:"completion_tokens"`
	PromptTokens     int `json:"prompt_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func NewGemini(cfg *config.Config) LLMClient {
	return &GeminiClient{config: cfg, httpClient: newModelHTTPClient(cfg)}
}

// Generate calls Gemini through its OpenAI-compatible chat endpoint
func (g *GeminiClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	cfg := g.config

	req := GeminiRequest{
		Model: cfg.ModelID,
		Messages: []GeminiMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   cfg.ModelMaxResponseTokens,
		Temperature: 0,
	}

	slog.Debug("Sending request to LLM", "provider", "Gemini", "model", cfg.ModelID)

	var response GeminiResponse
	if err := postJSON(ctx, g.httpClient, "Gemini", cfg.ModelAPI+"/v1beta/openai/chat/completions", cfg.ModelUserKey, req, &response); err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	slog.Debug("Gemini API token usage",
		"input_tokens", response.Usage.PromptTokens,
		"output_tokens", response.Usage.CompletionTokens,
		"total_tokens", response.Usage.TotalTokens)

	return response.Choices[0].Message.Content, nil
}
