package client

import (
	"context"

	"github.com/famomatic/liv1/internal/resolve"
	"github.com/famomatic/liv1/internal/stitch"
	"github.com/famomatic/liv1/internal/transport"
)

// Client is the high-level LinkedIn stream client.
type Client struct {
	config    Config
	transport *transport.Client
	resolver  *resolve.Resolver
	logger    Logger
}

// New creates a new client.
func New(config Config) *Client {
	if config.HTTPClient == nil {
		config.HTTPClient = defaultHTTPClient()
	}
	if config.CookieJar != nil {
		config.HTTPClient.Jar = config.CookieJar
	}
	if config.HTTPClient.Jar == nil {
		// Session extraction needs cookies set on intermediate redirect
		// responses, which only a jar captures.
		config.HTTPClient.Jar = newCookieJar()
	}
	logger := config.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	tr := transport.New(config.HTTPClient, transport.Policy{
		MaxAttempts: config.MaxAttempts,
		Wait:        config.RetryWait,
		RequestRate: config.RequestRate,
	}, logger)
	if config.OnRetryEvent != nil {
		tr.OnRetry = func(url string, attempt int) {
			config.OnRetryEvent(RetryEvent{URL: url, Attempt: attempt, MaxAttempts: tr.MaxAttempts()})
		}
	}

	c := &Client{config: config, transport: tr, logger: logger}
	c.resolver = &resolve.Resolver{
		Transport: tr,
		Jar:       config.HTTPClient.Jar,
		APIHost:   config.APIHost,
		Notify:    c.emitResolveEvent,
	}
	return c
}

// Resolve walks from the input URL to the terminal fragment-manifest URL
// for the requested bitrate. A quality below 1 means DefaultQuality.
func (c *Client) Resolve(ctx context.Context, input string, quality int) (string, error) {
	pageURL, err := normalizeInput(input)
	if err != nil {
		return "", err
	}
	if quality <= 0 {
		quality = DefaultQuality
	}
	manifestURL, err := c.resolver.Resolve(ctx, pageURL, quality)
	if err != nil {
		return "", mapError(err)
	}
	return manifestURL, nil
}

// ListQualities reports the bitrates advertised by the stream's quality
// manifest, ascending.
func (c *Client) ListQualities(ctx context.Context, input string) ([]int, error) {
	pageURL, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}
	levels, err := c.resolver.Qualities(ctx, pageURL)
	if err != nil {
		return nil, mapError(err)
	}
	return levels, nil
}

func (c *Client) emitResolveEvent(ev resolve.Event) {
	if c.config.OnResolveEvent == nil {
		return
	}
	c.config.OnResolveEvent(ResolveEvent(ev))
}

func (c *Client) emitStitchEvent(ev stitch.Event) {
	if c.config.OnStitchEvent == nil {
		return
	}
	c.config.OnStitchEvent(StitchEvent(ev))
}

func (c *Client) emitDownloadEvent(stage, phase, path, detail string) {
	if c.config.OnDownloadEvent == nil {
		return
	}
	c.config.OnDownloadEvent(DownloadEvent{Stage: stage, Phase: phase, Path: path, Detail: detail})
}

func (c *Client) warnf(format string, args ...any) {
	if c == nil || c.logger == nil {
		return
	}
	c.logger.Warnf(format, args...)
}
