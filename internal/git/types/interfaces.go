package types

import (
	"context"

	"change-digest/internal/digest"
)

// GitProvider represents a git hosting platform (GitHub, GitLab, etc.)
type GitProvider interface {
	// IsChangeRequestURL checks if a URL is a pull or merge request URL for this platform
	IsChangeRequestURL(url string) bool

	// FetchChangeRequest fetches title, description, changed files with their
	// patches, and commits of a change request
	FetchChangeRequest(ctx context.Context, url string) (*digest.Input, error)

	// PostComment adds a comment to the change request
	PostComment(ctx context.Context, url, body string) error

	// Name returns the platform name (e.g., "GitHub", "GitLab")
	Name() string
}
