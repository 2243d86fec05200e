package http

import (
	"crypto/tls"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// HTTPClientOptions configures HTTP client creation
type HTTPClientOptions struct {
	// Timeout is the request timeout duration (0 means no timeout)
	Timeout time.Duration
	// SkipSSLVerify disables SSL certificate verification (use with caution)
	SkipSSLVerify bool
	// RetryMax is how many times a failed request is retried on connection
	// errors, 429 and 5xx responses (0 disables retries)
	RetryMax int
	// RetryWaitMin and RetryWaitMax bound the backoff between retries. Zero
	// values keep the retryablehttp defaults.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// NewHTTPClient creates an HTTP client with the specified options
func NewHTTPClient(opts HTTPClientOptions) *http.Client {
	transport := cleanhttp.DefaultPooledTransport()
	if opts.SkipSSLVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	if opts.RetryMax <= 0 {
		return &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		}
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &http.Client{Transport: transport}
	retryClient.RetryMax = opts.RetryMax
	retryClient.Logger = slog.Default()
	if opts.RetryWaitMin > 0 {
		retryClient.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		retryClient.RetryWaitMax = opts.RetryWaitMax
	}

	client := retryClient.StandardClient()
	client.Timeout = opts.Timeout
	return client
}
