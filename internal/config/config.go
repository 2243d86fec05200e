package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"change-digest/internal/digest"
)

// envPrefix is prepended to every variable name, e.g. CDG_GITHUB_TOKEN
const envPrefix = "CDG"

// valid log formats, levels and model providers
var (
	validLogFormats     = []string{"text", "json"}
	validLogLevels      = []string{"trace", "debug", "info", "warn", "error"}
	validModelProviders = []string{"claude", "gemini", "llama"}
)

type Config struct {
	GitHubToken            string `envconfig:"GITHUB_TOKEN"`
	GitHubUseGraphQL       bool   `envconfig:"GITHUB_USE_GRAPHQL" default:"false"`
	GitLabBaseURL          string `envconfig:"GITLAB_BASE_URL"`
	GitLabSkipSSLVerify    bool   `envconfig:"GITLAB_SKIP_SSL_VERIFY" default:"false"`
	GitLabToken            string `envconfig:"GITLAB_TOKEN"`
	LogFormat              string `envconfig:"LOG_FORMAT"`
	LogLevel               string `envconfig:"LOG_LEVEL"`
	ModelAPI               string `envconfig:"MODEL_API"`
	ModelID                string `envconfig:"MODEL_ID"`
	ModelMaxResponseTokens int    `envconfig:"MODEL_MAX_RESPONSE_TOKENS" default:"2000"`
	ModelProvider          string `envconfig:"MODEL_PROVIDER" default:"claude"`
	ModelSkipSSLVerify     bool   `envconfig:"MODEL_SKIP_SSL_VERIFY" default:"false"`
	ModelTimeoutSeconds    int    `envconfig:"MODEL_TIMEOUT_SECONDS" default:"120"`
	ModelUserKey           string `envconfig:"MODEL_USER_KEY"`
	BudgetFile             string `envconfig:"BUDGET_FILE"`
	FetchConcurrency       int    `envconfig:"FETCH_CONCURRENCY" default:"4"`

	// Budgets is the default table merged with BudgetFile, if set
	Budgets digest.Budgets `ignored:"true"`
}

// Requirements selects which optional settings a command needs
type Requirements struct {
	// Model requires a complete text-generation model configuration
	Model bool
	// GitPlatform requires at least one GitHub or GitLab token
	GitPlatform bool
}

// Load reads an optional .env file, then the environment, and validates the
// result against the requirements of the calling command
func Load(envFile string, req Requirements) (*Config, error) {
	if err := LoadDotEnv(envFile); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := &Config{}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.ModelProvider = strings.ToLower(cfg.ModelProvider)

	if err := validateConfig(cfg, req); err != nil {
		return nil, err
	}

	budgets, err := loadBudgets(cfg.BudgetFile)
	if err != nil {
		return nil, err
	}
	cfg.Budgets = budgets

	return cfg, nil
}

// LoadDotEnv loads variables from a .env file without overriding the ones
// already set. An empty path means ".env"; a missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

func loadBudgets(path string) (digest.Budgets, error) {
	if path == "" {
		return digest.DefaultBudgets(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CDG_BUDGET_FILE: %w", err)
	}

	budgets, err := digest.LoadBudgets(data)
	if err != nil {
		return nil, fmt.Errorf("invalid CDG_BUDGET_FILE %s: %w", path, err)
	}
	return budgets, nil
}

// validateConfig performs all validation on the loaded configuration
func validateConfig(cfg *Config, req Requirements) error {

	// Validate Git platform configuration
	if req.GitPlatform && cfg.GitHubToken == "" && cfg.GitLabToken == "" {
		return fmt.Errorf("at least one of CDG_GITHUB_TOKEN or CDG_GITLAB_TOKEN is required")
	}
	if cfg.GitLabToken != "" && cfg.GitLabBaseURL == "" {
		return fmt.Errorf("CDG_GITLAB_BASE_URL environment variable is required when CDG_GITLAB_TOKEN is provided")
	}

	// Validate logging configuration
	if cfg.LogFormat != "" {
		if !slices.Contains(validLogFormats, strings.ToLower(cfg.LogFormat)) {
			return fmt.Errorf("CDG_LOG_FORMAT must be one of: %v; got: %s", validLogFormats, cfg.LogFormat)
		}
	}
	if cfg.LogLevel != "" {
		if !slices.Contains(validLogLevels, strings.ToLower(cfg.LogLevel)) {
			return fmt.Errorf("CDG_LOG_LEVEL must be one of: %v; got: %s", validLogLevels, cfg.LogLevel)
		}
	}

	if cfg.FetchConcurrency < 1 {
		return fmt.Errorf("CDG_FETCH_CONCURRENCY must be at least 1, got: %d", cfg.FetchConcurrency)
	}

	if !req.Model {
		return nil
	}

	// Validate required model configuration
	if !slices.Contains(validModelProviders, cfg.ModelProvider) {
		return fmt.Errorf("CDG_MODEL_PROVIDER must be one of: %v; got: %s", validModelProviders, cfg.ModelProvider)
	}
	if cfg.ModelAPI == "" {
		return fmt.Errorf("CDG_MODEL_API environment variable is required")
	}
	if cfg.ModelID == "" {
		return fmt.Errorf("CDG_MODEL_ID environment variable is required")
	}
	if cfg.ModelUserKey == "" {
		return fmt.Errorf("CDG_MODEL_USER_KEY environment variable is required")
	}
	if cfg.ModelMaxResponseTokens < 1 {
		return fmt.Errorf("CDG_MODEL_MAX_RESPONSE_TOKENS must be at least 1, got: %d", cfg.ModelMaxResponseTokens)
	}
	if cfg.ModelTimeoutSeconds < 1 {
		return fmt.Errorf("CDG_MODEL_TIMEOUT_SECONDS must be at least 1, got: %d", cfg.ModelTimeoutSeconds)
	}

	return nil
}
