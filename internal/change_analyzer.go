package internal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"change-digest/internal/config"
	"change-digest/internal/digest"
	"change-digest/internal/git/github"
	"change-digest/internal/git/gitlab"
	"change-digest/internal/git/types"
	"change-digest/internal/llm"
	"change-digest/internal/llm/providers"
	"change-digest/internal/report"
)

type ChangeAnalyzer struct {
	gitProviders []types.GitProvider
	generator    *llm.Generator
	config       *config.Config
	now          func() time.Time
}

// Options selects which collaborators New wires up
type Options struct {
	// Model creates a text-generation client for Describe
	Model bool
}

func New(cfg *config.Config, opts Options) (*ChangeAnalyzer, error) {
	gitProviders := []types.GitProvider{github.NewProvider(cfg)}

	if cfg.GitLabToken != "" {
		gitlabClient, err := gitlab.NewClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create GitLab client: %w", err)
		}
		gitProviders = append(gitProviders, gitlab.NewFetcher(gitlabClient, cfg))
	}

	var generator *llm.Generator
	if opts.Model {
		llmClient, err := providers.NewClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		generator = llm.NewGenerator(llmClient)
	}

	return NewWithCollaborators(cfg, gitProviders, generator), nil
}

// NewWithCollaborators builds an analyzer around already constructed
// providers and generator. generator may be nil when Describe is not used.
func NewWithCollaborators(cfg *config.Config, gitProviders []types.GitProvider, generator *llm.Generator) *ChangeAnalyzer {
	return &ChangeAnalyzer{
		gitProviders: gitProviders,
		generator:    generator,
		config:       cfg,
		now:          time.Now,
	}
}

// providerFor returns the first provider that recognizes url
func (ca *ChangeAnalyzer) providerFor(url string) (types.GitProvider, error) {
	for _, provider := range ca.gitProviders {
		if provider.IsChangeRequestURL(url) {
			return provider, nil
		}
	}
	return nil, fmt.Errorf("unsupported change request URL: %s", url)
}

// FetchInputs fetches every change request in urls, at most
// CDG_FETCH_CONCURRENCY at a time. Duplicate URLs are fetched once and the
// result keeps the order of first appearance.
func (ca *ChangeAnalyzer) FetchInputs(ctx context.Context, urls []string) ([]*digest.Input, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("no change request URLs provided")
	}

	uniqueURLs := make([]string, 0, len(urls))
	seen := make(map[string]bool)
	for _, url := range urls {
		if !seen[url] {
			seen[url] = true
			uniqueURLs = append(uniqueURLs, url)
		}
	}
	if len(uniqueURLs) < len(urls) {
		slog.Debug("Deduplicated change request URLs", "total", len(urls), "unique", len(uniqueURLs))
	}

	// Resolve providers up front so an unsupported URL fails before any request
	resolved := make([]types.GitProvider, len(uniqueURLs))
	for i, url := range uniqueURLs {
		provider, err := ca.providerFor(url)
		if err != nil {
			return nil, err
		}
		resolved[i] = provider
	}

	inputs := make([]*digest.Input, len(uniqueURLs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(ca.config.FetchConcurrency, 1))

	for i, url := range uniqueURLs {
		g.Go(func() error {
			provider := resolved[i]
			slog.Debug("Fetching change request", "platform", provider.Name(), "url", url)

			input, err := provider.FetchChangeRequest(gCtx, url)
			if err != nil {
				return fmt.Errorf("failed to fetch %s change request %s: %w", provider.Name(), url, err)
			}

			slog.Debug("Fetched change request",
				"platform", provider.Name(),
				"file_count", len(input.Files),
				"commit_count", len(input.Commits))
			inputs[i] = input
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inputs, nil
}

// Digest runs the pipeline with the configured budgets
func (ca *ChangeAnalyzer) Digest(input digest.Input) digest.StructuredDiffOutput {
	return digest.Process(input, ca.config.Budgets)
}

// Describe generates the audience texts for input and renders them as a
// markdown report
func (ca *ChangeAnalyzer) Describe(ctx context.Context, input digest.Input) (string, error) {
	if ca.generator == nil {
		return "", fmt.Errorf("no model client configured")
	}

	start := ca.now()
	generation, err := ca.generator.Generate(ctx, input, ca.config.Budgets)
	if err != nil {
		return "", fmt.Errorf("failed to generate description: %w", err)
	}
	slog.Debug("Generated description",
		"duration", ca.now().Sub(start),
		"budget_scale", generation.BudgetScale)

	reportText, err := report.GenerateReport(&report.ReportConfig{
		Generation:     generation,
		ModelID:        ca.config.ModelID,
		GenerationTime: ca.now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate report: %w", err)
	}
	return reportText, nil
}

// Post adds reportText as a comment on the change request at url
func (ca *ChangeAnalyzer) Post(ctx context.Context, url, reportText string) error {
	provider, err := ca.providerFor(url)
	if err != nil {
		return err
	}
	if err := provider.PostComment(ctx, url, reportText); err != nil {
		return fmt.Errorf("failed to post report to %s: %w", provider.Name(), err)
	}
	slog.Info("Report posted", "platform", provider.Name(), "url", url)
	return nil
}
