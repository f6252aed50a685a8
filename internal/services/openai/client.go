package openai

import (
	"errors"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

const (
	defaultBaseURL         = "https://api.openai.com/v1"
	defaultHTTPTimeout     = 60 * time.Second
	defaultRetryAttempts   = 3
	defaultRetryBaseDelay  = 1 * time.Second
	defaultRetryMaxDelay   = 10 * time.Second
	defaultTranslateModel  = "gpt-4o-mini"
	defaultTranscribeModel = goopenai.Whisper1
)

// Config captures the connection settings shared by both adapters.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
	MaxRetries     int
}

// Option customizes an adapter.
type Option func(*options)

type options struct {
	httpClient     *http.Client
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(o *options) {
		o.retryBaseDelay = baseDelay
		o.retryMaxDelay = maxDelay
	}
}

func newClient(cfg Config, opts []Option) (*goopenai.Client, options) {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	o := options{
		httpClient:     &http.Client{Timeout: timeout},
		retryBaseDelay: defaultRetryBaseDelay,
		retryMaxDelay:  defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}

	clientCfg := goopenai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		clientCfg.BaseURL = base
	} else {
		clientCfg.BaseURL = defaultBaseURL
	}
	clientCfg.HTTPClient = o.httpClient
	return goopenai.NewClientWithConfig(clientCfg), o
}

// isPermanent reports whether err is a client error that a retry cannot fix.
// Rate limiting is retried.
func isPermanent(err error) bool {
	status := 0
	var apiErr *goopenai.APIError
	var reqErr *goopenai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	return status >= 400 && status < 500 && status != http.StatusTooManyRequests
}
