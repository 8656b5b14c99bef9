// Package backend is the REST client for the VibeSync backend service.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"resty.dev/v3"
)

const (
	// DefaultBaseURL is used when no API URL is configured.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout bounds a single request attempt.
	DefaultTimeout = 15 * time.Second

	// DefaultRetryCount matches the three retries the admin screens use.
	DefaultRetryCount = 3

	// DefaultRetryWait is the first exponential backoff step.
	DefaultRetryWait = 100 * time.Millisecond

	// DefaultRetryMaxWait caps the backoff.
	DefaultRetryMaxWait = 2 * time.Second
)

// TokenSource supplies the bearer token for each request. An empty token
// sends the request unauthenticated.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a fixed TokenSource.
type StaticToken string

// Token returns the fixed token.
func (s StaticToken) Token() (string, error) { return string(s), nil }

// Client talks to the VibeSync backend. It is safe for concurrent use.
type Client struct {
	baseURL      string
	userAgent    string
	timeout      time.Duration
	retryCount   int
	retryWait    time.Duration
	retryMaxWait time.Duration
	httpClient   *http.Client
	tokens       TokenSource

	rc *resty.Client
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRetry sets the retry count and backoff bounds. A count of zero
// disables retries.
func WithRetry(count int, wait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.retryCount = count
		c.retryWait = wait
		c.retryMaxWait = maxWait
	}
}

// WithHTTPClient sets the underlying HTTP client (useful for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// New creates a backend client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		timeout:      DefaultTimeout,
		retryCount:   DefaultRetryCount,
		retryWait:    DefaultRetryWait,
		retryMaxWait: DefaultRetryMaxWait,
		tokens:       StaticToken(""),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient != nil {
		c.rc = resty.NewWithClient(c.httpClient)
	} else {
		c.rc = resty.New()
	}
	c.rc.SetBaseURL(c.baseURL).
		SetTimeout(c.timeout).
		SetRetryCount(c.retryCount).
		SetRetryWaitTime(c.retryWait).
		SetRetryMaxWaitTime(c.retryMaxWait).
		SetResponseBodyUnlimitedReads(true).
		SetLogger(zerologAdapter{l: log.Logger.With().Str("component", "backend").Logger()}).
		SetHeader("Accept", "application/json")
	if c.userAgent != "" {
		c.rc.SetHeader("User-Agent", c.userAgent)
	}

	return c
}

// BaseURL returns the backend root URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.rc.Close()
}

// request builds a request bound to ctx with the current bearer token.
func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	req := c.rc.R().SetContext(ctx)
	tok, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	if tok != "" {
		req.SetAuthToken(tok)
	}
	return req, nil
}

// do executes method on path. build may add params or a body. When out is
// non-nil the JSON response is decoded into it.
func (c *Client) do(ctx context.Context, method, path string, build func(*resty.Request), out any) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}
	if build != nil {
		build(req)
	}

	log.Debug().Str("method", method).Str("path", path).Msg("Backend request")

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return newAPIError(method, path, resp.StatusCode(), resp.Bytes())
	}

	if out == nil {
		return nil
	}
	body := resp.Bytes()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, build func(*resty.Request), out any) error {
	return c.do(ctx, http.MethodGet, path, build, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var build func(*resty.Request)
	if body != nil {
		build = func(r *resty.Request) {
			r.SetHeader("Content-Type", "application/json").SetBody(body)
		}
	}
	return c.do(ctx, method, path, build, out)
}

// resource appends escaped id segments to base.
func resource(base string, ids ...string) string {
	for _, id := range ids {
		base += "/" + url.PathEscape(id)
	}
	return base
}

// created is the {id, message} reply of create endpoints.
type created struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}

// zerologAdapter routes resty's logging through zerolog.
type zerologAdapter struct {
	l zerolog.Logger
}

func (a zerologAdapter) Errorf(format string, v ...any) { a.l.Error().Msgf(format, v...) }
func (a zerologAdapter) Warnf(format string, v ...any)  { a.l.Warn().Msgf(format, v...) }
func (a zerologAdapter) Debugf(format string, v ...any) { a.l.Debug().Msgf(format, v...) }
