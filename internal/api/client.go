package api

import (
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single fetch of the rounds feed.
const DefaultTimeout = 10 * time.Second

// Client provides access to the Express Entry rounds feed.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new feed client for the given endpoint URL.
func NewClient(url string, opts ...ClientOption) *Client {
	c := &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// URL returns the endpoint the client fetches.
func (c *Client) URL() string {
	return c.url
}
