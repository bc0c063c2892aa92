// Package api is a JSON-over-HTTP client for the tasks API.
//
// Every request carries JSON headers, every non-2xx response is turned into
// an *Error, and every failure is logged once before it is returned.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is used when New is given an empty base URL.
	DefaultBaseURL = "http://localhost:3001"

	// RequestIDHeader carries the per-request id that also appears in logs.
	RequestIDHeader = "X-Request-ID"

	// maxErrorBody bounds how much of a failed response is read for its message.
	maxErrorBody = 1 << 20
)

// Method is an HTTP method the client is allowed to send.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodPatch  Method = http.MethodPatch
	MethodDelete Method = http.MethodDelete
)

// Client sends requests relative to a base URL.
// A Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger that receives failure diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for baseURL, falling back to DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		logger:     log.New(io.Discard),
		userAgent:  "tasksync",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the URL every endpoint is appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends one request and decodes the JSON response into T.
// A 204 response yields the zero value of T.
func Do[T any](ctx context.Context, c *Client, method Method, endpoint string, body any) (T, error) {
	var out T
	reqID := uuid.NewString()
	if err := c.roundTrip(ctx, method, endpoint, body, reqID, &out); err != nil {
		c.logger.Error("API request failed",
			"method", string(method),
			"endpoint", endpoint,
			"request_id", reqID,
			"err", err,
		)
		var zero T
		return zero, err
	}
	return out, nil
}

// Get sends a GET request.
func Get[T any](ctx context.Context, c *Client, endpoint string) (T, error) {
	return Do[T](ctx, c, MethodGet, endpoint, nil)
}

// Post sends a POST request with a JSON body.
func Post[T any](ctx context.Context, c *Client, endpoint string, body any) (T, error) {
	return Do[T](ctx, c, MethodPost, endpoint, body)
}

// Put sends a PUT request with a JSON body.
func Put[T any](ctx context.Context, c *Client, endpoint string, body any) (T, error) {
	return Do[T](ctx, c, MethodPut, endpoint, body)
}

// Patch sends a PATCH request with a JSON body.
func Patch[T any](ctx context.Context, c *Client, endpoint string, body any) (T, error) {
	return Do[T](ctx, c, MethodPatch, endpoint, body)
}

// Delete sends a DELETE request.
func Delete[T any](ctx context.Context, c *Client, endpoint string) (T, error) {
	return Do[T](ctx, c, MethodDelete, endpoint, nil)
}

func (c *Client) roundTrip(ctx context.Context, method Method, endpoint string, body any, reqID string, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, string(method), c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}

	// DELETE and friends may legitimately answer with nothing.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
