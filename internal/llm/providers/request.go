package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"change-digest/internal/config"
	httputil "change-digest/internal/http"
	llmerrors "change-digest/internal/llm/errors"
	"change-digest/internal/logger"
)

// newModelHTTPClient builds the HTTP client shared by all providers. Requests
// are not retried: a 429 may be a context window error the caller handles.
func newModelHTTPClient(cfg *config.Config) *http.Client {
	return httputil.NewHTTPClient(httputil.HTTPClientOptions{
		Timeout:       time.Duration(cfg.ModelTimeoutSeconds) * time.Second,
		SkipSSLVerify: cfg.ModelSkipSSLVerify,
	})
}

// postJSON sends payload to endpoint and decodes a 200 response into out.
// Oversized prompts come back as *llmerrors.ContextWindowError.
func postJSON(ctx context.Context, httpClient *http.Client, provider, endpoint, userKey string, payload, out any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	slog.Log(ctx, logger.LevelTrace, provider+" API request", "request", string(jsonData))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+userKey)

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if llmerrors.IsContextWindowError(resp.StatusCode, body) {
			return &llmerrors.ContextWindowError{
				StatusCode: resp.StatusCode,
				Message:    string(body),
				Provider:   provider,
			}
		}
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	slog.Log(ctx, logger.LevelTrace, provider+" API response", "response", string(body))

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
