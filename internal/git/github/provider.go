package github

import (
	"log/slog"

	"change-digest/internal/config"
	"change-digest/internal/git/github/graphql"
	"change-digest/internal/git/github/rest"
	"change-digest/internal/git/types"
)

// NewProvider picks the GitHub fetcher for pull request URLs. Titles, bodies
// and commits come from GraphQL when CDG_GITHUB_USE_GRAPHQL is set; files always
// come from REST.
func NewProvider(cfg *config.Config) types.GitProvider {
	if cfg.GitHubToken == "" {
		slog.Warn("CDG_GITHUB_TOKEN is not set, GitHub requests are unauthenticated")
	}

	if cfg.GitHubUseGraphQL {
		slog.Debug("Fetching pull requests through GitHub GraphQL")
		return graphql.NewFetcher(cfg)
	}
	slog.Debug("Fetching pull requests through GitHub REST")
	return rest.NewFetcher(cfg)
}
