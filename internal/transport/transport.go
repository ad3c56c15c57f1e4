package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Defaults applied by effectivePolicy when the caller leaves fields zero.
const (
	DefaultMaxAttempts = 10
	DefaultWait        = 10 * time.Second
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Policy bounds the retry behavior of a Client. Only transport-level
// failures are retried; HTTP statuses and malformed bodies surface to the
// caller on the first attempt.
type Policy struct {
	// MaxAttempts is the total number of tries for one logical fetch,
	// including the first. Values below 1 fall back to DefaultMaxAttempts.
	MaxAttempts int
	// Wait is the fixed interval slept between attempts. There is no
	// jitter and no growth. Zero falls back to DefaultWait; negative
	// values disable the pause.
	Wait time.Duration
	// RequestRate paces outgoing attempts in requests per second.
	// Zero means unlimited.
	RequestRate float64
}

type effectivePolicy struct {
	MaxAttempts int
	Wait        time.Duration
}

func normalizePolicy(p Policy) effectivePolicy {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	wait := p.Wait
	switch {
	case wait == 0:
		wait = DefaultWait
	case wait < 0:
		wait = 0
	}
	return effectivePolicy{MaxAttempts: maxAttempts, Wait: wait}
}

// Logger receives one warning per retried attempt.
type Logger interface {
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any) {}

// StatusError reports a non-success HTTP status from FetchBody. It is never
// retried.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status=%d", e.URL, e.StatusCode)
}

// Client performs GET fetches with bounded fixed-interval retry on
// transport-level failures.
type Client struct {
	httpClient *http.Client
	policy     effectivePolicy
	limiter    *rate.Limiter
	logger     Logger

	// OnRetry, when set, observes every transient failure in attempt order,
	// the exhausted last attempt included.
	OnRetry func(url string, attempt int)
}

// New builds a Client around httpClient. A nil httpClient uses
// http.DefaultClient; a nil logger discards retry warnings.
func New(httpClient *http.Client, policy Policy, logger Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = nopLogger{}
	}
	var limiter *rate.Limiter
	if policy.RequestRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(policy.RequestRate), 1)
	}
	return &Client{
		httpClient: httpClient,
		policy:     normalizePolicy(policy),
		limiter:    limiter,
		logger:     logger,
	}
}

// MaxAttempts reports the normalized attempt bound.
func (c *Client) MaxAttempts() int { return c.policy.MaxAttempts }

// Fetch GETs rawURL, retrying transport-level failures up to the policy
// bound with a fixed wait between attempts. The last error is returned
// verbatim on exhaustion. The response body is already content-decoded;
// the caller owns closing it. extra headers override the defaults.
func (c *Client) Fetch(ctx context.Context, rawURL string, extra http.Header) (*http.Response, error) {
	var lastErr error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		resp, err := c.doAttempt(ctx, rawURL, extra)
		if err == nil {
			return resp, nil
		}
		if !isTransientError(err) {
			return nil, err
		}
		lastErr = err
		c.logger.Warnf("connection error fetching %s, trying again %d of %d after %s",
			rawURL, attempt, c.policy.MaxAttempts, c.policy.Wait)
		if c.OnRetry != nil {
			c.OnRetry(rawURL, attempt)
		}
		if attempt == c.policy.MaxAttempts {
			break
		}
		if err := waitRetry(ctx, c.policy.Wait); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// FetchBody fetches rawURL and returns the full decoded body. Statuses of
// 400 and above become a *StatusError without consuming a retry.
func (c *Client) FetchBody(ctx context.Context, rawURL string, extra http.Header) ([]byte, error) {
	resp, err := c.Fetch(ctx, rawURL, extra)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) doAttempt(ctx context.Context, rawURL string, extra http.Header) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept-Encoding", acceptEncoding)
	for key, values := range extra {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if err := decodeResponseBody(resp); err != nil {
		resp.Body.Close()
		return nil, errNotRetryable(err)
	}
	return resp, nil
}

// notRetryableError marks a post-transport failure (e.g. a malformed
// encoded body) so the retry loop surfaces it immediately.
type notRetryableError struct{ err error }

func (e *notRetryableError) Error() string { return e.err.Error() }
func (e *notRetryableError) Unwrap() error { return e.err }

func errNotRetryable(err error) error { return &notRetryableError{err: err} }

func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var fatal *notRetryableError
	return !errors.As(err, &fatal)
}

func waitRetry(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
