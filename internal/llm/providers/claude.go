package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"change-digest/internal/config"
)

type ClaudeClient struct {
	config     *config.Config
	httpClient *http.Client
}

type ClaudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Messages         []ClaudeMessage `json:"messages"`
	System           string          `json:"system"`
	Temperature      float64         `json:"temperature"`
}

type ClaudeMessage struct {
	Content []ClaudeContent `json:"content"`
	Role    string          `json:"role"`
}

type ClaudeResponse struct {
	Content []ClaudeContent `json:"content"`
	Usage   ClaudeUsage     `json:"usage"`
}

type ClaudeContent struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type ClaudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func NewClaude(cfg *config.Config) LLMClient {
	return &ClaudeClient{config: cfg, httpClient: newModelHTTPClient(cfg)}
}

// Generate calls Claude through the Vertex AI raw predict endpoint
func (c *ClaudeClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	cfg := c.config
	endpoint := fmt.Sprintf("%s/sonnet/models/%s:streamRawPredict", cfg.ModelAPI, cfg.ModelID)

	req := ClaudeRequest{
		AnthropicVersion: "vertex-2023-10-16",
		System:           systemPrompt,
		Messages: []ClaudeMessage{{
			Role: "user",
			Content: []ClaudeContent{{
				Type: "text",
				Text: userPrompt,
			}},
		}},
		MaxTokens:   cfg.ModelMaxResponseTokens,
		Temperature: 0,
	}

	slog.Debug("Sending request to LLM", "provider", "Claude", "model", cfg.ModelID)

	var response ClaudeResponse
	if err := postJSON(ctx, c.httpClient, "Claude", endpoint, cfg.ModelUserKey, req, &response); err != nil {
		return "", err
	}

	if len(response.Content) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	slog.Debug("Claude API token usage",
		"input_tokens", response.Usage.InputTokens,
		"output_tokens", response.Usage.OutputTokens,
		"total_tokens", response.Usage.InputTokens+response.Usage.OutputTokens)

	return response.Content[0].Text, nil
}
