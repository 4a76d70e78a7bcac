// Package httpbuilder reaches the library builder over HTTP: one JSON POST per build.
package httpbuilder

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"git.home.luguber.info/inful/librarybuilder/internal/build"
	"git.home.luguber.info/inful/librarybuilder/internal/credentials"
	"git.home.luguber.info/inful/librarybuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/librarybuilder/internal/logfields"
	"git.home.luguber.info/inful/librarybuilder/internal/version"
)

// maxReplyBytes bounds how much of a reply body is read.
const maxReplyBytes = 1 << 20

// Client posts build requests to a fixed endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends token as a bearer Authorization header.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout bounds each request. Zero means no limit beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New validates endpoint and returns a Client.
func New(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.ConfigError("invalid library builder endpoint").
			WithCause(err).
			WithContext("endpoint", endpoint).
			Build()
	}
	c := &Client{httpClient: &http.Client{}, endpoint: u.String()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Build sends creds to the builder and waits for its Result.
// A reply with a decodable status is a Result whatever the HTTP status code;
// anything else is a network-category fault.
func (c *Client) Build(ctx context.Context, creds credentials.Credentials) (build.Result, error) {
	body, err := build.EncodeRequest(creds)
	if err != nil {
		return build.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return build.Result{}, errors.WrapError(err, errors.CategoryInternal, "could not create library build request").
			WithContext("endpoint", c.endpoint).
			Build()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "librarybuilder/"+version.Version)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return build.Result{}, errors.WrapError(err, errors.CategoryNetwork, build.ErrUnreachable.Message()).
			Retryable().
			WithContext("endpoint", c.endpoint).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return build.Result{}, errors.WrapError(err, errors.CategoryNetwork, build.ErrUnreachable.Message()).
			Retryable().
			WithContext("endpoint", c.endpoint).
			WithContext("http_status", resp.StatusCode).
			Build()
	}

	slog.Debug("Library builder replied",
		logfields.Transport("http"),
		logfields.Endpoint(c.endpoint),
		logfields.Status(resp.StatusCode),
		logfields.Duration(time.Since(started)))

	result, err := build.DecodeResult(data)
	if err != nil {
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return build.Result{}, errors.WrapError(err, errors.CategoryAuth, build.ErrUnauthorized.Message()).
				UserAction().
				WithContext("endpoint", c.endpoint).
				WithContext("http_status", resp.StatusCode).
				Build()
		}
		if classified, ok := errors.AsClassified(err); ok {
			return build.Result{}, classified.
				WithContext("endpoint", c.endpoint).
				WithContext("http_status", resp.StatusCode).
				WithContext("body", snippet(data))
		}
		return build.Result{}, err
	}
	return result, nil
}

// snippet returns at most the first 256 runes of data on one line.
func snippet(data []byte) string {
	const limit = 256
	s := strings.ToValidUTF8(strings.ReplaceAll(string(data), "\n", " "), "\uFFFD")
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
