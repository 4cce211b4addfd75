// Package session holds the dashboard's bearer token and gates every
// command that talks to the backend.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/ahmethakanbesel/scraper-dashboard/internal/api"
	"github.com/ahmethakanbesel/scraper-dashboard/internal/apperror"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgLoginFailed        = "Login failed. Please try again."
)

// ErrNotAuthenticated is returned by commands run without a stored token.
var ErrNotAuthenticated = apperror.New(apperror.Unauthorized, "not logged in; run `dashboard login` first")

type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type Authenticator interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.Token, error)
}

// Holder owns the current token. It implements api.TokenSource.
type Holder struct {
	store Store
	auth  Authenticator

	mu     sync.RWMutex
	token  string
	resets []func()
}

func NewHolder(store Store, auth Authenticator) *Holder {
	return &Holder{store: store, auth: auth}
}

// SetAuthenticator swaps the login backend. The API client needs the
// holder as its token source, so the two are wired after construction.
func (h *Holder) SetAuthenticator(auth Authenticator) {
	h.auth = auth
}

// OnReset registers fn to run on logout, after the token is cleared.
func (h *Holder) OnReset(fn func()) {
	h.mu.Lock()
	h.resets = append(h.resets, fn)
	h.mu.Unlock()
}

// Restore loads a persisted token and reports whether one was found.
func (h *Holder) Restore(ctx context.Context) (bool, error) {
	token, err := h.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("restore session: %w", err)
	}
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()
	return token != "", nil
}

// Login exchanges credentials for a token and persists it. Failures are
// reported with a generic message; the backend's reason goes to the log.
func (h *Holder) Login(ctx context.Context, username, password string) error {
	req := api.LoginRequest{Username: username, Password: password}
	if err := req.Validate(); err != nil {
		return err
	}
	if h.auth == nil {
		return apperror.New(apperror.Internal, "no authenticator configured")
	}

	tok, err := h.auth.Login(ctx, req)
	if err != nil {
		slog.Warn("login failed", "username", username, "code", apperror.CodeOf(err), "error", err)
		switch apperror.CodeOf(err) {
		case apperror.Transport, apperror.Decode, apperror.Internal:
			return apperror.Wrap(apperror.CodeOf(err), msgLoginFailed, err)
		default:
			return apperror.Wrap(apperror.Unauthorized, msgInvalidCredentials, err)
		}
	}

	if err := h.store.Save(ctx, tok.AccessToken); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	h.mu.Lock()
	h.token = tok.AccessToken
	h.mu.Unlock()

	slog.Info("logged in", "username", username)
	return nil
}

// Logout clears the persisted token and all registered view state.
func (h *Holder) Logout(ctx context.Context) error {
	err := h.store.Clear(ctx)

	h.mu.Lock()
	h.token = ""
	resets := append([]func(){}, h.resets...)
	h.mu.Unlock()

	for _, fn := range resets {
		fn()
	}
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *Holder) Authenticated() bool {
	return h.Token() != ""
}

// Require returns ErrNotAuthenticated when no token is held.
func (h *Holder) Require() error {
	if !h.Authenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

// Claims is the informational view of the held token.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Claims decodes the token without verifying its signature. The backend
// remains the only judge of validity.
func (h *Holder) Claims() (Claims, error) {
	token := h.Token()
	if token == "" {
		return Claims{}, ErrNotAuthenticated
	}

	var rc jwtlib.RegisteredClaims
	if _, _, err := jwtlib.NewParser().ParseUnverified(token, &rc); err != nil {
		return Claims{}, apperror.Wrap(apperror.Decode, "token is not a JWT", err)
	}

	c := Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}

var _ api.TokenSource = (*Holder)(nil)

// IsInvalidCredentials reports whether err is a rejected login.
func IsInvalidCredentials(err error) bool {
	var ae *apperror.AppError
	return errors.As(err, &ae) && ae.Message() == msgInvalidCredentials
}
