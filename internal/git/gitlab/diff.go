package gitlab

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"change-digest/internal/digest"
	"change-digest/internal/git/types"
)

// fetchDiffs fetches every file diff of a merge request, following pagination
func fetchDiffs(ctx context.Context, client *gitlab.Client, projectPath string, mrIID int64) ([]digest.FileDiff, error) {
	var allDiffs []*gitlab.MergeRequestDiff
	opts := &gitlab.ListMergeRequestDiffsOptions{}
	opts.PerPage = 100
	opts.Page = 1

	for {
		diffs, resp, err := client.MergeRequests.ListMergeRequestDiffs(projectPath, mrIID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list diffs of MR !%d: %w", mrIID, err)
		}

		allDiffs = append(allDiffs, diffs...)

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	slog.Debug("GitLab API response", "mr_iid", mrIID, "diffs", len(allDiffs))
	return convertDiffs(allDiffs), nil
}

// fetchCommits fetches every commit of a merge request, following pagination
func fetchCommits(ctx context.Context, client *gitlab.Client, projectPath string, mrIID int64) ([]digest.Commit, error) {
	commits := []digest.Commit{}
	opts := &gitlab.GetMergeRequestCommitsOptions{}
	opts.PerPage = 100
	opts.Page = 1

	for {
		page, resp, err := client.MergeRequests.GetMergeRequestCommits(projectPath, mrIID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list commits of MR !%d: %w", mrIID, err)
		}

		for _, commit := range page {
			if entry, ok := convertCommit(commit); ok {
				commits = append(commits, entry)
			}
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	slog.Debug("GitLab API response", "mr_iid", mrIID, "commits", len(commits))
	return commits, nil
}

// convertCommit keeps the first message line, falling back to the title
func convertCommit(commit *gitlab.Commit) (digest.Commit, bool) {
	if commit == nil || commit.ID == "" {
		return digest.Commit{}, false
	}

	message := types.FirstLine(commit.Message)
	if message == "" {
		message = commit.Title
	}
	return digest.Commit{SHA: commit.ID, Message: message}, true
}

// convertDiffs converts GitLab merge request diffs to digest FileDiffs
func convertDiffs(diffs []*gitlab.MergeRequestDiff) []digest.FileDiff {
	result := make([]digest.FileDiff, 0, len(diffs))
	for _, diff := range diffs {
		if diff == nil {
			continue
		}
		result = append(result, convertDiff(diff))
	}
	return result
}

// convertDiff converts a single GitLab diff to a digest FileDiff
func convertDiff(diff *gitlab.MergeRequestDiff) digest.FileDiff {
	if diff == nil {
		return digest.FileDiff{}
	}

	file := digest.FileDiff{
		Path:  diff.NewPath,
		Patch: diff.Diff,
	}

	switch {
	case diff.NewFile:
		file.Status = digest.StatusAdded
	case diff.DeletedFile:
		file.Status = digest.StatusRemoved
		file.Path = diff.OldPath
	case diff.RenamedFile:
		file.Status = digest.StatusRenamed
		file.PreviousPath = diff.OldPath
	default:
		file.Status = digest.StatusModified
	}

	// GitLab doesn't provide line counts, so we parse the diff
	file.Additions, file.Deletions = parsePatchStats(diff.Diff)

	return file
}

// parsePatchStats counts additions and deletions from a unified diff patch
func parsePatchStats(patch string) (additions, deletions int) {
	if patch == "" {
		return 0, 0
	}

	for _, line := range strings.Split(patch, "\n") {
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case '+':
			if !strings.HasPrefix(line, "+++ ") { // Skip "+++ b/file" headers
				additions++
			}
		case '-':
			if !strings.HasPrefix(line, "--- ") { // Skip "--- a/file" headers
				deletions++
			}
		}
	}

	return additions, deletions
}
