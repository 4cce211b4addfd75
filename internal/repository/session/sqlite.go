// Package session persists the dashboard's bearer token between runs.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// tokenKey is the single row the dashboard keeps. Only the token is
// stored, never the credentials.
const tokenKey = "token"

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Load returns the stored token, or "" when none is saved.
func (r *Repository) Load(ctx context.Context) (string, error) {
	const query = `SELECT value FROM session WHERE key = ?`

	var token string
	err := r.db.QueryRowContext(ctx, query, tokenKey).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

func (r *Repository) Save(ctx context.Context, token string) error {
	const query = `INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`

	if _, err := r.db.ExecContext(ctx, query, tokenKey, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an empty store is not an error.
func (r *Repository) Clear(ctx context.Context) error {
	const query = `DELETE FROM session WHERE key = ?`

	if _, err := r.db.ExecContext(ctx, query, tokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
