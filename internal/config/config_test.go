package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"change-digest/internal/digest"
)

var allRequirements = Requirements{Model: true, GitPlatform: true}

// noEnvFile points Load at a .env file that does not exist
func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), ".env")
}

func clearEnv(t *testing.T) {
	for _, kv := range os.Environ() {
		if key, _, _ := strings.Cut(kv, "="); strings.HasPrefix(key, envPrefix+"_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func setModelEnv(t *testing.T) {
	t.Setenv("CDG_MODEL_API", "https://api.example.com")
	t.Setenv("CDG_MODEL_ID", "claude-model")
	t.Setenv("CDG_MODEL_USER_KEY", "api-key")
}

func TestLoad_ValidConfiguration(t *testing.T) {
	clearEnv(t)
	t.Setenv("CDG_GITHUB_TOKEN", "github-token")
	t.Setenv("CDG_GITLAB_BASE_URL", "https://gitlab.example.com")
	t.Setenv("CDG_GITLAB_TOKEN", "gitlab-token")
	t.Setenv("CDG_GITHUB_USE_GRAPHQL", "true")
	setModelEnv(t)

	cfg, err := Load(noEnvFile(t), allRequirements)
	require.NoError(t, err)

	assert.Equal(t, "github-token", cfg.GitHubToken)
	assert.Equal(t, "gitlab-token", cfg.GitLabToken)
	assert.Equal(t, "https://api.example.com", cfg.ModelAPI)
	assert.True(t, cfg.GitHubUseGraphQL)
}

func TestLoad_WithDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CDG_GITHUB_TOKEN", "github-token")
	setModelEnv(t)

	cfg, err := Load(noEnvFile(t), allRequirements)
	require.NoError(t, err)

	assert.Equal(t, "claude", cfg.ModelProvider)
	assert.Equal(t, 2000, cfg.ModelMaxResponseTokens)
	assert.Equal(t, 120, cfg.ModelTimeoutSeconds)
	assert.Equal(t, 4, cfg.FetchConcurrency)
	assert.False(t, cfg.GitHubUseGraphQL)
	assert.False(t, cfg.GitLabSkipSSLVerify)
	assert.False(t, cfg.ModelSkipSSLVerify)
	assert.Equal(t, digest.DefaultBudgets(), cfg.Budgets)
}

func TestLoad_DigestNeedsNothing(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(noEnvFile(t), Requirements{})
	require.NoError(t, err)
	assert.Empty(t, cfg.GitHubToken)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		req      Requirements
		expected string
	}{
		{
			name:     "missing model api",
			env:      map[string]string{"CDG_GITHUB_TOKEN": "t", "CDG_MODEL_ID": "m", "CDG_MODEL_USER_KEY": "k"},
			req:      allRequirements,
			expected: "CDG_MODEL_API environment variable is required",
		},
		{
			name:     "missing model id",
			env:      map[string]string{"CDG_GITHUB_TOKEN": "t", "CDG_MODEL_API": "a", "CDG_MODEL_USER_KEY": "k"},
			req:      allRequirements,
			expected: "CDG_MODEL_ID environment variable is required",
		},
		{
			name:     "missing user key",
			env:      map[string]string{"CDG_GITHUB_TOKEN": "t", "CDG_MODEL_API": "a", "CDG_MODEL_ID": "m"},
			req:      allRequirements,
			expected: "CDG_MODEL_USER_KEY environment variable is required",
		},
		{
			name:     "unknown provider",
			env:      map[string]string{"CDG_GITHUB_TOKEN": "t", "CDG_MODEL_PROVIDER": "gpt"},
			req:      allRequirements,
			expected: "CDG_MODEL_PROVIDER must be one of: [claude gemini llama]; got: gpt",
		},
		{
			name:     "missing both git tokens",
			env:      map[string]string{},
			req:      Requirements{GitPlatform: true},
			expected: "at least one of CDG_GITHUB_TOKEN or CDG_GITLAB_TOKEN is required",
		},
		{
			name:     "gitlab token without base url",
			env:      map[string]string{"CDG_GITLAB_TOKEN": "t"},
			req:      Requirements{},
			expected: "CDG_GITLAB_BASE_URL environment variable is required when CDG_GITLAB_TOKEN is provided",
		},
		{
			name:     "invalid log format",
			env:      map[string]string{"CDG_LOG_FORMAT": "xml"},
			req:      Requirements{},
			expected: "CDG_LOG_FORMAT must be one of: [text json]; got: xml",
		},
		{
			name:     "invalid log level",
			env:      map[string]string{"CDG_LOG_LEVEL": "verbose"},
			req:      Requirements{},
			expected: "CDG_LOG_LEVEL must be one of: [trace debug info warn error]; got: verbose",
		},
		{
			name:     "zero concurrency",
			env:      map[string]string{"CDG_FETCH_CONCURRENCY": "0"},
			req:      Requirements{},
			expected: "CDG_FETCH_CONCURRENCY must be at least 1, got: 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(noEnvFile(t), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestLoad_InvalidInteger(t *testing.T) {
	clearEnv(t)
	t.Setenv("CDG_MODEL_TIMEOUT_SECONDS", "soon")

	_, err := Load(noEnvFile(t), Requirements{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MODEL_TIMEOUT_SECONDS")
}

func TestLoad_CaseInsensitiveLogSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("CDG_LOG_FORMAT", "JSON")
	t.Setenv("CDG_LOG_LEVEL", "Debug")

	_, err := Load(noEnvFile(t), Requirements{})
	assert.NoError(t, err)
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	// Registers a restore for the variable the file is about to set
	t.Setenv("CDG_GITHUB_TOKEN", "")
	os.Unsetenv("CDG_GITHUB_TOKEN")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CDG_GITHUB_TOKEN=from-file\nCDG_MODEL_ID=file-model\n"), 0o600))
	t.Setenv("CDG_MODEL_ID", "from-env")

	cfg, err := Load(envFile, Requirements{})
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.GitHubToken)
	// Variables already in the environment win over the file
	assert.Equal(t, "from-env", cfg.ModelID)
}

func TestLoad_BudgetFile(t *testing.T) {
	clearEnv(t)
	budgetFile := filepath.Join(t.TempDir(), "budgets.yaml")
	require.NoError(t, os.WriteFile(budgetFile, []byte("backend:\n  tokens: 8000\n  line_limit: 80\n"), 0o600))
	t.Setenv("CDG_BUDGET_FILE", budgetFile)

	cfg, err := Load(noEnvFile(t), Requirements{})
	require.NoError(t, err)

	assert.Equal(t, digest.CategoryBudget{Tokens: 8000, LineLimit: 80}, cfg.Budgets[digest.CategoryBackend])
	assert.Equal(t, digest.DefaultBudgets()[digest.CategoryDocs], cfg.Budgets[digest.CategoryDocs])
}

func TestLoad_BudgetFileErrors(t *testing.T) {
	dir := t.TempDir()
	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("docs:\n  tokens: -5\n  line_limit: 1\n"), 0o600))

	for name, path := range map[string]string{
		"missing file":   filepath.Join(dir, "missing.yaml"),
		"invalid budget": invalid,
	} {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("CDG_BUDGET_FILE", path)

			_, err := Load(noEnvFile(t), Requirements{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "CDG_BUDGET_FILE")
		})
	}
}
