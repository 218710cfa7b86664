package pacer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

// requestStats tracks request operation statistics.
type requestStats struct {
	mu              sync.RWMutex
	totalAttempts   int64
	totalRetries    int64
	totalSuccesses  int64
	totalFailures   int64
	lastAttemptTime time.Time
	lastError       error
}

// Request performs a single logical request: resolve the strategy for the
// URL, wait per the strategy, attempt the transport send, and retry on
// transport failure with exponential backoff. The strategy wait runs before
// every attempt, so backoff and rate-limit delay compose on retried
// endpoints.
//
// Any *http.Response is a success, whatever its status code; 4xx/5xx
// responses are returned to the caller uninspected. Transport failures are
// retried up to the attempt budget and the last one is returned wrapped in a
// *TransportError.
func (c *Client) Request(ctx context.Context, method, url string, opts ...RequestOption) (*http.Response, error) {
	spec := &requestSpec{retries: c.retries}
	for _, opt := range opts {
		opt(spec)
	}
	if spec.retries < 1 {
		spec.retries = 1
	}

	// Check the context before any attempt or wait.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// Buffer the body once so retries can replay it.
	var payload []byte
	if spec.body != nil {
		var err error
		payload, err = io.ReadAll(spec.body)
		if err != nil {
			return nil, err
		}
	}

	strategy := c.resolveStrategy(url, spec)

	var response *http.Response
	var attempts int

	// retry.Do counts the initial attempt, so the budget maps to retries-1.
	backoff := retry.WithMaxRetries(
		uint64(spec.retries-1),
		retry.NewExponential(c.backoffUnit),
	)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++

		c.stats.mu.Lock()
		c.stats.totalAttempts++
		if attempts > 1 {
			c.stats.totalRetries++
		}
		c.stats.lastAttemptTime = time.Now()
		c.stats.mu.Unlock()

		if err := strategy.Wait(ctx); err != nil {
			return err
		}

		req, err := c.newRequest(ctx, method, url, spec, payload)
		if err != nil {
			return err
		}

		resp, err := c.session.Do(req)
		if err == nil {
			if attempts > 1 {
				c.logger.Info("request succeeded after retry",
					"method", method,
					"url", url,
					"attempts", attempts)
			}
			response = resp
			return nil
		}

		if !c.classifier.IsRetryable(err) {
			c.logger.Debug("non-retryable error, giving up",
				"method", method,
				"url", url,
				"attempts", attempts,
				"error", err)
			return err
		}

		c.logger.Debug("retrying request after backoff",
			"method", method,
			"url", url,
			"attempt", attempts,
			"error", err)
		return retry.RetryableError(err)
	})
	if err != nil {
		c.stats.mu.Lock()
		c.stats.totalFailures++
		c.stats.lastError = err
		c.stats.mu.Unlock()

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		c.logger.Warn("request failed after retries",
			"method", method,
			"url", url,
			"attempts", attempts,
			"error", err)
		return nil, &TransportError{Method: method, URL: url, Attempts: attempts, Err: err}
	}

	c.stats.mu.Lock()
	c.stats.totalSuccesses++
	c.stats.mu.Unlock()

	return response, nil
}

// newRequest builds a fresh *http.Request for one attempt. The body reader is
// recreated from the buffered payload so each attempt sends the full body.
func (c *Client) newRequest(ctx context.Context, method, url string, spec *requestSpec, payload []byte) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	for key, values := range spec.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	return req, nil
}

// Stats holds statistics about requests issued through a Client.
type Stats struct {
	// TotalAttempts is the total number of transport attempts (including
	// initial attempts and retries).
	TotalAttempts int64

	// TotalRetries is the number of retry attempts (not including initial
	// attempts).
	TotalRetries int64

	// TotalSuccesses is the number of requests that returned a response.
	TotalSuccesses int64

	// TotalFailures is the number of requests that failed after all retries.
	TotalFailures int64

	// LastAttemptTime is the time of the last transport attempt.
	LastAttemptTime time.Time

	// LastError is the last failure encountered (if any).
	LastError error
}

// Stats returns a snapshot of the client's request statistics.
// It is safe to call concurrently with requests.
func (c *Client) Stats() Stats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()

	return Stats{
		TotalAttempts:   c.stats.totalAttempts,
		TotalRetries:    c.stats.totalRetries,
		TotalSuccesses:  c.stats.totalSuccesses,
		TotalFailures:   c.stats.totalFailures,
		LastAttemptTime: c.stats.lastAttemptTime,
		LastError:       c.stats.lastError,
	}
}
