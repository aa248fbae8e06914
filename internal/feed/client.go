package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tinytelemetry/balloonwatch/internal/model"
)

const maxBodyBytes = 16 << 20

// Client fetches telemetry payloads from a single fixed endpoint.
// It implements model.Fetcher.
type Client struct {
	endpoint  string
	http      *http.Client
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request. Zero leaves the transport defaults alone.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.http
			hc.Timeout = d
			c.http = &hc
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a client for endpoint. An empty endpoint falls back to
// model.DefaultEndpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = model.DefaultEndpoint
	}
	c := &Client{
		endpoint:  endpoint,
		http:      &http.Client{},
		userAgent: "balloonwatch",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL the client fetches from.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fetch performs exactly one GET and decodes the envelope. The returned error
// is one of *TransportError, *HTTPStatusError, *DecodeError or *LogicalError.
func (c *Client) Fetch(ctx context.Context) (*model.Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("reading body: %w", err)}
	}

	payload, err := Decode(body)
	if err != nil {
		return nil, err
	}
	if payload.Error.Truthy() {
		return payload, &LogicalError{Message: payload.Error.String()}
	}
	return payload, nil
}

// Decode parses a response body. The body must be a JSON object; every key
// inside it is optional. Other JSON values such as [] or 42 are rejected with
// a DecodeError instead of producing an empty Loaded page.
func Decode(body []byte) (*model.Payload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &DecodeError{Err: errors.New("body is not a JSON object")}
	}
	var payload model.Payload
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &payload, nil
}
