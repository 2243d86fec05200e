package gitlab

import (
	"gitlab.com/gitlab-org/api/client-go"

	"change-digest/internal/config"
	httputil "change-digest/internal/http"
)

// NewClient creates a GitLab API client. The library retries rate-limited and
// failed requests on its own, so the HTTP client only carries TLS settings.
func NewClient(cfg *config.Config) (*gitlab.Client, error) {
	if cfg.GitLabSkipSSLVerify {
		httpClient := httputil.NewHTTPClient(httputil.HTTPClientOptions{
			SkipSSLVerify: true,
		})
		return gitlab.NewClient(cfg.GitLabToken, gitlab.WithBaseURL(cfg.GitLabBaseURL), gitlab.WithHTTPClient(httpClient))
	}

	return gitlab.NewClient(cfg.GitLabToken, gitlab.WithBaseURL(cfg.GitLabBaseURL))
}
