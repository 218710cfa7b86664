package pacer

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Client issues rate-limited, retried HTTP requests through a shared session.
// A Client is safe for concurrent use; its endpoint registry and session are
// shared by all callers, while each endpoint's strategy serializes its own
// waiters.
type Client struct {
	session    *http.Client
	registry   *registry
	factory    StrategyFactory
	logger     *slog.Logger
	classifier ErrorClassifier

	backoffUnit time.Duration
	retries     int

	stats *requestStats
}

// New creates a Client with the given options.
//
// Example:
//
//	client := pacer.New(
//	    pacer.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
//	    pacer.WithRetries(3),
//	)
func New(opts ...Option) *Client {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.StrategyFactory == nil {
		config.StrategyFactory = func(d time.Duration) Strategy { return NewFixedInterval(d) }
	}
	if config.ErrorClassifier == nil {
		config.ErrorClassifier = DefaultErrorClassifier()
	}
	if config.BackoffUnit <= 0 {
		config.BackoffUnit = time.Second
	}
	if config.Retries < 1 {
		config.Retries = 1
	}

	return &Client{
		session:     config.HTTPClient,
		registry:    newRegistry(),
		factory:     config.StrategyFactory,
		logger:      config.Logger,
		classifier:  config.ErrorClassifier,
		backoffUnit: config.BackoffUnit,
		retries:     config.Retries,
		stats:       &requestStats{},
	}
}

// ConfigureLimit registers a rate limit for an endpoint, replacing any prior
// configuration. The limit is either a time.Duration, wrapped in a new
// strategy via the client's strategy factory, or a ready Strategy instance,
// stored as-is. Any other type fails with an error matching
// ErrInvalidRateLimit.
//
// Matching at request time is exact-string on the URL.
func (c *Client) ConfigureLimit(endpoint string, limit any) error {
	switch v := limit.(type) {
	case time.Duration:
		c.registry.configure(endpoint, c.factory(v))
	case Strategy:
		c.registry.configure(endpoint, v)
	default:
		return &InvalidRateLimitError{Endpoint: endpoint, Value: limit}
	}

	c.logger.Debug("configured endpoint rate limit", "endpoint", endpoint)
	return nil
}

// Get issues a GET request through the rate-limit and retry pipeline.
func (c *Client) Get(ctx context.Context, url string, opts ...RequestOption) (*http.Response, error) {
	return c.Request(ctx, http.MethodGet, url, opts...)
}

// Post issues a POST request through the rate-limit and retry pipeline.
func (c *Client) Post(ctx context.Context, url string, opts ...RequestOption) (*http.Response, error) {
	return c.Request(ctx, http.MethodPost, url, opts...)
}

// Put issues a PUT request through the rate-limit and retry pipeline.
func (c *Client) Put(ctx context.Context, url string, opts ...RequestOption) (*http.Response, error) {
	return c.Request(ctx, http.MethodPut, url, opts...)
}

// Delete issues a DELETE request through the rate-limit and retry pipeline.
func (c *Client) Delete(ctx context.Context, url string, opts ...RequestOption) (*http.Response, error) {
	return c.Request(ctx, http.MethodDelete, url, opts...)
}

// resolveStrategy picks exactly one strategy for a request, first match wins:
// registry entry for the URL, then the per-call override, then NoOp.
func (c *Client) resolveStrategy(url string, spec *requestSpec) Strategy {
	if s, ok := c.registry.resolve(url); ok {
		return s
	}
	if spec.strategy != nil {
		return spec.strategy
	}
	if spec.rateLimit != nil {
		return c.factory(*spec.rateLimit)
	}
	return NoOp{}
}
