// Package ledger provides an HTTP client for the webcash ledger server's
// replace and health_check endpoints.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	klog "github.com/Klingon-tech/webcash-wallet/internal/log"
)

// DefaultURL is the public webcash ledger server.
const DefaultURL = "https://webcash.org"

// DefaultTimeout bounds a single HTTP round trip.
const DefaultTimeout = 10 * time.Second

// API paths relative to the server URL.
const (
	ReplacePath     = "/api/v1/replace"
	HealthCheckPath = "/api/v1/health_check"
)

// ErrProtocol is returned when the server rejects a request or answers in a
// form the wallet does not understand.
var ErrProtocol = errors.New("ledger protocol error")

// StatusError is returned when the server responds with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Body)
}

// Unwrap makes StatusError match ErrProtocol.
func (e *StatusError) Unwrap() error { return ErrProtocol }

// Client talks to a webcash ledger server over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string) *Client {
	return NewWithTimeout(baseURL, DefaultTimeout)
}

// NewWithTimeout creates a client with a custom HTTP timeout.
func NewWithTimeout(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Replace asks the server to invalidate req.Webcashes and issue
// req.NewWebcashes in their place. Any status other than 200 is an error
// carrying the response body.
func (c *Client) Replace(ctx context.Context, req ReplaceRequest) error {
	klog.Ledger.Debug().
		Int("inputs", len(req.Webcashes)).
		Int("outputs", len(req.NewWebcashes)).
		Msg("Sending replace request")

	_, err := c.post(ctx, ReplacePath, req)
	return err
}

// HealthCheck queries the status of the given token strings. Results are
// keyed by the public form of each token as returned by the server.
func (c *Client) HealthCheck(ctx context.Context, tokens []string) (map[string]Status, error) {
	klog.Ledger.Debug().Int("tokens", len(tokens)).Msg("Sending health check")

	if tokens == nil {
		tokens = []string{}
	}
	data, err := c.post(ctx, HealthCheckPath, tokens)
	if err != nil {
		return nil, err
	}

	var resp healthCheckResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode health check response: %v", ErrProtocol, err)
	}
	if resp.Results == nil {
		return nil, fmt.Errorf("%w: health check response has no results", ErrProtocol)
	}
	return resp.Results, nil
}

// post sends body as JSON and returns the response body of a 200 reply.
func (c *Client) post(ctx context.Context, path string, body interface{}) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		klog.Ledger.Warn().
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("Ledger server returned an error")
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}
