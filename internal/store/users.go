package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// EnsureUser returns the id of the user with email, creating the user on first use.
func (s *Store) EnsureUser(ctx context.Context, email string) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return 0, fmt.Errorf("user email is required")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, created_at) VALUES (?, ?) ON CONFLICT(email) DO NOTHING`,
		email, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE email = ?`, email).Scan(&id); err != nil {
		return 0, fmt.Errorf("get user: %w", err)
	}

	return id, nil
}
