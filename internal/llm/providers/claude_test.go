package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"change-digest/internal/config"
	llmerrors "change-digest/internal/llm/errors"
)

func testModelConfig(serverURL string) *config.Config {
	return &config.Config{
		ModelAPI:               serverURL,
		ModelID:                "test-model",
		ModelUserKey:           "secret",
		ModelMaxResponseTokens: 500,
		ModelTimeoutSeconds:    5,
	}
}

func TestClaudeGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if r.URL.Path != "/sonnet/models/test-model:streamRawPredict" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("Expected bearer token, got %q", r.Header.Get("Authorization"))
		}

		var req ClaudeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("invalid request body: %v", err)
		}
		if req.System != "be brief" {
			t.Errorf("system prompt = %q, want %q", req.System, "be brief")
		}
		if len(req.Messages) != 1 || req.Messages[0].Content[0].Text != "describe this" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if req.MaxTokens != 500 {
			t.Errorf("max tokens = %d, want 500", req.MaxTokens)
		}

		json.NewEncoder(w).Encode(ClaudeResponse{
			Content: []ClaudeContent{{Type: "text", Text: "Adds checkout."}},
			Usage:   ClaudeUsage{InputTokens: 100, OutputTokens: 5},
		})
	}))
	defer server.Close()

	got, err := NewClaude(testModelConfig(server.URL)).Generate(context.Background(), "be brief", "describe this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Adds checkout." {
		t.Errorf("Generate() = %q", got)
	}
}

func TestClaudeGenerate_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content": []}`))
	}))
	defer server.Close()

	_, err := NewClaude(testModelConfig(server.URL)).Generate(context.Background(), "s", "u")
	if err == nil || !strings.Contains(err.Error(), "no content") {
		t.Errorf("expected no content error, got %v", err)
	}
}

func TestClaudeGenerate_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "internal"}`))
	}))
	defer server.Close()

	_, err := NewClaude(testModelConfig(server.URL)).Generate(context.Background(), "s", "u")
	if err == nil || !strings.Contains(err.Error(), "API error 500") {
		t.Errorf("expected API error, got %v", err)
	}
	if _, ok := llmerrors.AsContextWindowError(err); ok {
		t.Error("server error must not be a context window error")
	}
}

func TestClaudeGenerate_ContextWindowError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"type":"error","error":{"message":"prompt is too long"}}`))
	}))
	defer server.Close()

	_, err := NewClaude(testModelConfig(server.URL)).Generate(context.Background(), "s", "u")
	cwErr, ok := llmerrors.AsContextWindowError(err)
	if !ok {
		t.Fatalf("expected ContextWindowError, got %v", err)
	}
	if cwErr.Provider != "Claude" || cwErr.StatusCode != http.StatusBadRequest {
		t.Errorf("unexpected error fields: %+v", cwErr)
	}
}

func TestClaudeGenerate_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := NewClaude(testModelConfig(server.URL)).Generate(context.Background(), "s", "u")
	if err == nil || !strings.Contains(err.Error(), "unmarshal response") {
		t.Errorf("expected unmarshal error, got %v", err)
	}
}

func TestClaudeGenerate_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content": [{"type": "text", "text": "late"}]}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewClaude(testModelConfig(server.URL)).Generate(ctx, "s", "u"); err == nil {
		t.Error("expected error for canceled context")
	}
}
