package shared

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v80/github"

	"change-digest/internal/digest"
	"change-digest/internal/git/types"
)

// NewRESTClient creates a new GitHub REST API client. A nil httpClient uses
// the go-github default.
func NewRESTClient(token string, httpClient *http.Client) *github.Client {
	return github.NewClient(httpClient).WithAuthToken(token)
}

// FetchPullRequestFiles fetches every changed file of a pull request
func FetchPullRequestFiles(ctx context.Context, client *github.Client, owner, repo string, number int) ([]digest.FileDiff, error) {
	files, err := FetchAllPaginated(ctx, func(ctx context.Context, opts *github.ListOptions) ([]*github.CommitFile, *github.Response, error) {
		return client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files of %s/%s#%d: %w", owner, repo, number, err)
	}

	slog.Debug("Fetched pull request files", "owner", owner, "repo", repo, "pr", number, "files", len(files))
	return ConvertFiles(files), nil
}

// PostIssueComment adds a comment to the conversation tab of a pull request
func PostIssueComment(ctx context.Context, client *github.Client, owner, repo string, number int, body string) error {
	_, _, err := client.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{Body: github.Ptr(body)})
	if err != nil {
		return fmt.Errorf("failed to post comment to %s/%s#%d: %w", owner, repo, number, err)
	}
	return nil
}

// ConvertFiles converts GitHub CommitFiles to digest FileDiffs
func ConvertFiles(files []*github.CommitFile) []digest.FileDiff {
	result := make([]digest.FileDiff, 0, len(files))
	for _, file := range files {
		if file == nil {
			continue
		}
		result = append(result, ConvertFile(file))
	}
	return result
}

// ConvertFile converts a single GitHub CommitFile to a digest FileDiff.
// Binary and very large files come without a patch.
func ConvertFile(file *github.CommitFile) digest.FileDiff {
	if file == nil {
		return digest.FileDiff{}
	}
	return digest.FileDiff{
		Path:         file.GetFilename(),
		PreviousPath: file.GetPreviousFilename(),
		Status:       types.ToFileStatus(file.GetStatus()),
		Additions:    file.GetAdditions(),
		Deletions:    file.GetDeletions(),
		Patch:        file.GetPatch(),
	}
}

// ConvertCommits converts GitHub commits to digest commits, first message line only
func ConvertCommits(commits []*github.RepositoryCommit) []digest.Commit {
	result := make([]digest.Commit, 0, len(commits))
	for _, commit := range commits {
		if commit == nil || commit.GetSHA() == "" {
			continue
		}
		result = append(result, digest.Commit{
			SHA:     commit.GetSHA(),
			Message: types.FirstLine(commit.GetCommit().GetMessage()),
		})
	}
	return result
}

// FetchAllPaginated is a generic helper that fetches all pages of GitHub API results
func FetchAllPaginated[T any](ctx context.Context, fetcher func(context.Context, *github.ListOptions) ([]T, *github.Response, error)) ([]T, error) {
	var allItems []T
	opts := &github.ListOptions{
		PerPage: 100,
		Page:    1,
	}

	for {
		items, resp, err := fetcher(ctx, opts)
		if err != nil {
			return nil, err
		}

		allItems = append(allItems, items...)

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allItems, nil
}
