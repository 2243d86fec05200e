package graphql

import (
	"context"
	"fmt"
	"log/slog"

	githubapi "github.com/google/go-github/v80/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/sync/errgroup"

	"change-digest/internal/config"
	"change-digest/internal/digest"
	ghshared "change-digest/internal/git/github/shared"
	"change-digest/internal/git/types"
	httputil "change-digest/internal/http"
)

// Fetcher implements GitProvider using GitHub's GraphQL API where beneficial.
// Uses REST for changed files (no GraphQL equivalent for patches) and GraphQL
// for the pull request itself, its commits and comments.
type Fetcher struct {
	restClient    *githubapi.Client
	graphqlClient *githubv4.Client
	config        *config.Config
}

// NewFetcher creates a new GitHub GraphQL-based fetcher
func NewFetcher(cfg *config.Config) *Fetcher {
	httpClient := httputil.NewHTTPClient(httputil.HTTPClientOptions{RetryMax: 3})
	return NewFetcherWithClients(
		ghshared.NewRESTClient(cfg.GitHubToken, httpClient),
		newClient(cfg.GitHubToken, httpClient),
		cfg,
	)
}

// NewFetcherWithClients creates a fetcher around existing REST and GraphQL clients
func NewFetcherWithClients(restClient *githubapi.Client, graphqlClient *githubv4.Client, cfg *config.Config) *Fetcher {
	return &Fetcher{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		config:        cfg,
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

type pullRequestQuery struct {
	Repository struct {
		PullRequest struct {
			ID      githubv4.ID
			Title   string
			Body    string
			Commits struct {
				PageInfo struct {
					HasNextPage bool
					EndCursor   githubv4.String
				}
				Nodes []struct {
					Commit struct {
						Oid     githubv4.GitObjectID
						Message string
					}
				}
			} `graphql:"commits(first: 100, after: $commitsCursor)"`
		} `graphql:"pullRequest(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $repo)"`
}

type pullRequestIDQuery struct {
	Repository struct {
		PullRequest struct {
			ID githubv4.ID
		} `graphql:"pullRequest(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $repo)"`
}

type addCommentMutation struct {
	AddComment struct {
		Subject struct {
			ID githubv4.ID
		}
	} `graphql:"addComment(input: $input)"`
}

// FetchChangeRequest fetches pull request metadata and commits via GraphQL
// and the changed files via REST, concurrently
func (f *Fetcher) FetchChangeRequest(ctx context.Context, prURL string) (*digest.Input, error) {
	slog.Debug("Fetching GitHub pull request via GraphQL", "url", prURL)

	owner, repo, number, err := ghshared.ParsePullRequestURL(prURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GitHub pull request URL: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	var title, body string
	var commits []digest.Commit
	var files []digest.FileDiff

	g.Go(func() error {
		var err error
		title, body, commits, err = f.fetchPullRequest(gCtx, owner, repo, number)
		if err != nil {
			return fmt.Errorf("failed to query PR #%d: %w", number, err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		files, err = ghshared.FetchPullRequestFiles(gCtx, f.restClient, owner, repo, number)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("Pull request fetched successfully via GraphQL",
		"files", len(files),
		"commits", len(commits))

	return &digest.Input{
		URL:     prURL,
		Title:   title,
		Body:    body,
		Files:   files,
		Commits: commits,
	}, nil
}

// fetchPullRequest walks every page of the commits connection
func (f *Fetcher) fetchPullRequest(ctx context.Context, owner, repo string, number int) (string, string, []digest.Commit, error) {
	variables := map[string]interface{}{
		"owner":         githubv4.String(owner),
		"repo":          githubv4.String(repo),
		"number":        githubv4.Int(number),
		"commitsCursor": (*githubv4.String)(nil),
	}

	var title, body string
	commits := []digest.Commit{}
	for {
		var query pullRequestQuery
		if err := f.graphqlClient.Query(ctx, &query, variables); err != nil {
			return "", "", nil, err
		}

		pr := query.Repository.PullRequest
		title, body = pr.Title, pr.Body
		for _, node := range pr.Commits.Nodes {
			if node.Commit.Oid == "" {
				continue
			}
			commits = append(commits, digest.Commit{
				SHA:     string(node.Commit.Oid),
				Message: types.FirstLine(node.Commit.Message),
			})
		}

		if !pr.Commits.PageInfo.HasNextPage {
			break
		}
		variables["commitsCursor"] = githubv4.NewString(pr.Commits.PageInfo.EndCursor)
	}

	return title, body, commits, nil
}

// PostComment adds a comment to the pull request through the addComment mutation
func (f *Fetcher) PostComment(ctx context.Context, prURL, body string) error {
	owner, repo, number, err := ghshared.ParsePullRequestURL(prURL)
	if err != nil {
		return fmt.Errorf("failed to parse GitHub pull request URL: %w", err)
	}

	var idQuery pullRequestIDQuery
	variables := map[string]interface{}{
		"owner":  githubv4.String(owner),
		"repo":   githubv4.String(repo),
		"number": githubv4.Int(number),
	}
	if err := f.graphqlClient.Query(ctx, &idQuery, variables); err != nil {
		return fmt.Errorf("failed to resolve node ID of PR #%d: %w", number, err)
	}

	var mutation addCommentMutation
	input := githubv4.AddCommentInput{
		SubjectID: idQuery.Repository.PullRequest.ID,
		Body:      githubv4.String(body),
	}
	if err := f.graphqlClient.Mutate(ctx, &mutation, input, nil); err != nil {
		return fmt.Errorf("failed to post comment to %s/%s#%d: %w", owner, repo, number, err)
	}

	slog.Debug("Posted pull request comment via GraphQL", "owner", owner, "repo", repo, "pr", number)
	return nil
}
