// Package api is a typed client for the scraper dashboard backend. Every
// call is a single JSON-over-HTTP round trip; authenticated calls carry the
// bearer token supplied by a TokenSource.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/apperror"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4096
	userAgent      = "scraper-dashboard-cli/1.0"
)

// TokenSource supplies the bearer token for authenticated requests.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns itself.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Client talks to the backend at baseURL.
type Client struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
}

// New creates a Client with the given options applied.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
		tokens:  StaticToken(""),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	public      bool
}

func jsonRequest(method, path string, payload any) (request, error) {
	req := request{method: method, path: path}
	if payload == nil {
		return req, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return req, apperror.Wrap(apperror.Internal, "encode request", err)
	}
	req.body = bytes.NewReader(b)
	req.contentType = "application/json"
	return req, nil
}

// do sends r and decodes a 2xx JSON response into out (when non-nil).
func (c *Client) do(ctx context.Context, r request, out any) error {
	reqURL := c.baseURL + r.path
	if len(r.query) > 0 {
		reqURL += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, reqURL, r.body)
	if err != nil {
		return apperror.Wrap(apperror.Internal, "build request", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if !r.public {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	res, err := c.client.Do(req) //nolint:gosec // URL built from configured base URL
	if err != nil {
		slog.Debug("api request failed", "method", r.method, "path", r.path, "requestID", requestID, "error", err)
		return apperror.Wrap(apperror.Transport, "request failed", err)
	}
	defer func() { _ = res.Body.Close() }()

	slog.Debug("api request",
		"method", r.method,
		"path", r.path,
		"status", res.StatusCode,
		"duration", time.Since(start).String(),
		"requestID", requestID,
	)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		detail := errorDetail(body)
		if detail == "" && len(body) > 0 {
			slog.Debug("api error body", "path", r.path, "status", res.StatusCode, "requestID", requestID, "body", strings.TrimSpace(string(body)))
		}
		return apperror.FromStatus(res.StatusCode, detail)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return apperror.Wrap(apperror.Decode, fmt.Sprintf("decode %s response", r.path), err)
	}
	return nil
}

// errorDetail extracts the backend's error message. FastAPI reports either
// {"detail": "..."} or a list of validation errors under "detail". Bodies
// that are not JSON, such as proxy error pages, yield "".
func errorDetail(body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	if len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return s
		}
		var list []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &list); err == nil {
			msgs := make([]string, 0, len(list))
			for _, item := range list {
				if item.Msg != "" {
					msgs = append(msgs, item.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
