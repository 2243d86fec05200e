package gitlab

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	gitlabapi "gitlab.com/gitlab-org/api/client-go"
	"golang.org/x/sync/errgroup"

	"change-digest/internal/config"
	"change-digest/internal/digest"
)

// mergeRequestRegex matches GitLab merge request URLs and extracts components
// Format: https://gitlab.com/owner/repo/-/merge_requests/42
// or: https://gitlab.example.com/group/subgroup/repo/-/merge_requests/42/diffs
var mergeRequestRegex = regexp.MustCompile(`^https?://([^/]+)/(.+)/-/merge_requests/(\d+)(?:[/?#].*)?$`)

// Fetcher implements the GitProvider interface for GitLab
type Fetcher struct {
	client *gitlabapi.Client
	config *config.Config
}

// NewFetcher creates a new GitLab data fetcher
func NewFetcher(client *gitlabapi.Client, cfg *config.Config) *Fetcher {
	return &Fetcher{
		client: client,
		config: cfg,
	}
}

// Name returns the platform name
func (f *Fetcher) Name() string {
	return "GitLab"
}

// IsChangeRequestURL checks if a URL is a valid GitLab merge request URL
func (f *Fetcher) IsChangeRequestURL(url string) bool {
	return mergeRequestRegex.MatchString(url)
}

// FetchChangeRequest fetches the merge request, its diffs and its commits concurrently
func (f *Fetcher) FetchChangeRequest(ctx context.Context, mrURL string) (*digest.Input, error) {
	slog.Debug("Fetching GitLab merge request", "url", mrURL)

	host, projectPath, mrIID, err := parseMergeRequestURL(mrURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GitLab merge request URL: %w", err)
	}

	slog.Debug("Parsed merge request URL", "host", host, "project", projectPath, "mr", mrIID)

	g, gCtx := errgroup.WithContext(ctx)

	var mr *gitlabapi.MergeRequest
	var files []digest.FileDiff
	var commits []digest.Commit

	g.Go(func() error {
		var err error
		mr, _, err = f.client.MergeRequests.GetMergeRequest(projectPath, mrIID, nil, gitlabapi.WithContext(gCtx))
		if err != nil {
			return fmt.Errorf("failed to get MR !%d: %w", mrIID, err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		files, err = fetchDiffs(gCtx, f.client, projectPath, mrIID)
		return err
	})

	g.Go(func() error {
		var err error
		commits, err = fetchCommits(gCtx, f.client, projectPath, mrIID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("Merge request fetched successfully",
		"files", len(files),
		"commits", len(commits))

	return &digest.Input{
		URL:     mrURL,
		Title:   mr.Title,
		Body:    mr.Description,
		Files:   files,
		Commits: commits,
	}, nil
}

// PostComment adds a note to the merge request
func (f *Fetcher) PostComment(ctx context.Context, mrURL, body string) error {
	_, projectPath, mrIID, err := parseMergeRequestURL(mrURL)
	if err != nil {
		return fmt.Errorf("failed to parse GitLab merge request URL: %w", err)
	}

	opts := &gitlabapi.CreateMergeRequestNoteOptions{
		Body: &body,
	}
	if _, _, err := f.client.Notes.CreateMergeRequestNote(projectPath, mrIID, opts, gitlabapi.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to post comment to MR !%d: %w", mrIID, err)
	}

	slog.Debug("Posted merge request note", "project", projectPath, "mr", mrIID)
	return nil
}

// parseMergeRequestURL extracts host, project path and MR IID from a GitLab merge request URL
func parseMergeRequestURL(mrURL string) (host, projectPath string, mrIID int64, err error) {
	matches := mergeRequestRegex.FindStringSubmatch(mrURL)
	if len(matches) != 4 {
		return "", "", 0, fmt.Errorf("invalid GitLab merge request URL format: %s", mrURL)
	}

	mrIID, err = strconv.ParseInt(matches[3], 10, 64)
	if err != nil || mrIID <= 0 {
		return "", "", 0, fmt.Errorf("invalid merge request number in URL: %s", mrURL)
	}

	return matches[1], matches[2], mrIID, nil
}
