package rest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v80/github"
	"golang.org/x/sync/errgroup"

	"change-digest/internal/config"
	"change-digest/internal/digest"
	ghshared "change-digest/internal/git/github/shared"
	httputil "change-digest/internal/http"
)

// Fetcher implements the GitProvider interface using GitHub REST API
type Fetcher struct {
	client *github.Client
	config *config.Config
}

// NewFetcher creates a new GitHub REST-based fetcher
func NewFetcher(cfg *config.Config) *Fetcher {
	httpClient := httputil.NewHTTPClient(httputil.HTTPClientOptions{RetryMax: 3})
	return NewFetcherWithClient(ghshared.NewRESTClient(cfg.GitHubToken, httpClient), cfg)
}

// NewFetcherWithClient creates a fetcher around an existing REST client
func NewFetcherWithClient(client *github.Client, cfg *config.Config) *Fetcher {
	return &Fetcher{
		client: client,
		config: cfg,
	}
}

// Name returns the platform name
func (f *Fetcher) Name() string {
	return "GitHub"
}

// IsChangeRequestURL checks if a URL is a valid GitHub pull request URL
func (f *Fetcher) IsChangeRequestURL(url string) bool {
	return ghshared.PullRequestURLRegex.MatchString(url)
}

// FetchChangeRequest fetches the pull request, its files and its commits concurrently
func (f *Fetcher) FetchChangeRequest(ctx context.Context, prURL string) (*digest.Input, error) {
	slog.Debug("Fetching GitHub pull request via REST", "url", prURL)

	owner, repo, number, err := ghshared.ParsePullRequestURL(prURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GitHub pull request URL: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	var pr *github.PullRequest
	var files []digest.FileDiff
	var commits []*github.RepositoryCommit

	g.Go(func() error {
		var resp *github.Response
		var err error
		pr, resp, err = f.client.PullRequests.Get(gCtx, owner, repo, number)
		if err != nil {
			return fmt.Errorf("failed to get PR #%d: %w", number, err)
		}
		slog.Debug("GitHub API response", "pr", number, "rate_limit_remaining", resp.Rate.Remaining)
		return nil
	})

	g.Go(func() error {
		var err error
		files, err = ghshared.FetchPullRequestFiles(gCtx, f.client, owner, repo, number)
		return err
	})

	g.Go(func() error {
		var err error
		commits, err = ghshared.FetchAllPaginated(gCtx, func(ctx context.Context, opts *github.ListOptions) ([]*github.RepositoryCommit, *github.Response, error) {
			return f.client.PullRequests.ListCommits(ctx, owner, repo, number, opts)
		})
		if err != nil {
			return fmt.Errorf("failed to list commits of PR #%d: %w", number, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	input := &digest.Input{
		URL:     prURL,
		Title:   pr.GetTitle(),
		Body:    pr.GetBody(),
		Files:   files,
		Commits: ghshared.ConvertCommits(commits),
	}

	slog.Debug("Pull request fetched successfully via REST",
		"files", len(input.Files),
		"commits", len(input.Commits))

	return input, nil
}

// PostComment posts a comment on the pull request conversation
func (f *Fetcher) PostComment(ctx context.Context, prURL, body string) error {
	owner, repo, number, err := ghshared.ParsePullRequestURL(prURL)
	if err != nil {
		return fmt.Errorf("failed to parse GitHub pull request URL: %w", err)
	}
	return ghshared.PostIssueComment(ctx, f.client, owner, repo, number, body)
}
