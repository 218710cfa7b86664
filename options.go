package pacer

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Config holds client configuration options.
type Config struct {
	// HTTPClient is the shared session used for every request issued through
	// the client. Connection pooling, TLS, redirects, and per-call timeouts
	// belong to it.
	// Default: a plain &http.Client{}
	HTTPClient *http.Client

	// Logger for request and retry operations.
	// Default: slog.Default()
	Logger *slog.Logger

	// StrategyFactory builds strategies from plain durations, both for
	// ConfigureLimit and for per-call WithRateLimit overrides.
	// Default: NewFixedInterval
	StrategyFactory StrategyFactory

	// ErrorClassifier determines which transport failures trigger retries.
	// Default: DefaultErrorClassifier()
	ErrorClassifier ErrorClassifier

	// BackoffUnit scales the exponential backoff between retries: the delay
	// before retry N (counting from 1) is BackoffUnit * 2^(N-1).
	// Default: 1 second
	BackoffUnit time.Duration

	// Retries is the default attempt budget per request, including the
	// initial attempt. A value of 1 means no retry. Minimum 1.
	// Default: 1
	Retries int
}

// Option is a functional option for configuring a Client.
type Option func(*Config)

// WithHTTPClient sets the underlying HTTP session.
//
// Example:
//
//	pacer.WithHTTPClient(&http.Client{Timeout: 10 * time.Second})
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = hc
	}
}

// WithLogger sets the logger for request and retry operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithStrategyFactory sets the factory used to build strategies from plain
// durations. Use this to make duration-based limits produce something other
// than FixedInterval.
//
// Example:
//
//	pacer.WithStrategyFactory(func(d time.Duration) pacer.Strategy {
//	    return pacer.NewTokenBucket(rate.Every(d), 1)
//	})
func WithStrategyFactory(f StrategyFactory) Option {
	return func(c *Config) {
		c.StrategyFactory = f
	}
}

// WithErrorClassifier sets a custom classifier for retry decisions.
func WithErrorClassifier(classifier ErrorClassifier) Option {
	return func(c *Config) {
		c.ErrorClassifier = classifier
	}
}

// WithBackoffUnit sets the base unit for exponential backoff between retries.
func WithBackoffUnit(unit time.Duration) Option {
	return func(c *Config) {
		c.BackoffUnit = unit
	}
}

// WithRetries sets the default attempt budget per request, including the
// initial attempt. Values below 1 are treated as 1.
func WithRetries(retries int) Option {
	return func(c *Config) {
		c.Retries = retries
	}
}

// DefaultConfig returns client configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTPClient:      &http.Client{},
		Logger:          slog.Default(),
		StrategyFactory: func(d time.Duration) Strategy { return NewFixedInterval(d) },
		ErrorClassifier: DefaultErrorClassifier(),
		BackoffUnit:     time.Second,
		Retries:         1,
	}
}

// requestSpec holds the per-call parameters of a single logical request.
// It is built from RequestOptions and discarded once the call resolves.
type requestSpec struct {
	strategy  Strategy
	rateLimit *time.Duration
	retries   int
	body      io.Reader
	header    http.Header
}

// RequestOption is a functional option for a single request.
type RequestOption func(*requestSpec)

// WithRateLimit sets an ad-hoc rate limit for this call, used only when the
// endpoint has no registry entry. The strategy is built fresh for the call,
// so its timer starts empty and the first such call never delays.
func WithRateLimit(minInterval time.Duration) RequestOption {
	return func(s *requestSpec) {
		s.rateLimit = &minInterval
	}
}

// WithStrategy sets an ad-hoc strategy instance for this call, used only when
// the endpoint has no registry entry. Unlike WithRateLimit, a caller-held
// instance keeps its state across calls.
func WithStrategy(strategy Strategy) RequestOption {
	return func(s *requestSpec) {
		s.strategy = strategy
	}
}

// WithRequestRetries sets the attempt budget for this call, including the
// initial attempt. Values below 1 are treated as 1.
func WithRequestRetries(retries int) RequestOption {
	return func(s *requestSpec) {
		s.retries = retries
	}
}

// WithBody sets the request body. The body is buffered once so it can be
// replayed on retries.
func WithBody(body io.Reader) RequestOption {
	return func(s *requestSpec) {
		s.body = body
	}
}

// WithBodyString sets the request body from a string.
func WithBodyString(body string) RequestOption {
	return func(s *requestSpec) {
		s.body = strings.NewReader(body)
	}
}

// WithHeader adds a header to the request.
func WithHeader(key, value string) RequestOption {
	return func(s *requestSpec) {
		if s.header == nil {
			s.header = make(http.Header)
		}
		s.header.Add(key, value)
	}
}

// WithContentType sets the Content-Type header.
func WithContentType(contentType string) RequestOption {
	return func(s *requestSpec) {
		if s.header == nil {
			s.header = make(http.Header)
		}
		s.header.Set("Content-Type", contentType)
	}
}
