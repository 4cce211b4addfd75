package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/apperror"
)

// Login exchanges credentials for a bearer token. It does not use the
// client's TokenSource.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*Token, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r, err := jsonRequest(http.MethodPost, "/auth/login", req)
	if err != nil {
		return nil, err
	}
	r.public = true

	var tok Token
	if err := c.do(ctx, r, &tok); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, apperror.New(apperror.Decode, "login: response carried no access token")
	}
	return &tok, nil
}

// Health reports backend liveness.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var raw map[string]any
	if err := c.do(ctx, request{method: http.MethodGet, path: "/health", public: true}, &raw); err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	h := &Health{Raw: raw}
	if s, ok := raw["status"].(string); ok {
		h.Status = s
	}
	return h, nil
}
