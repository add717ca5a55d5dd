// Package auth implements registration and credential verification on top
// of the user store. Passwords are stored only as bcrypt hashes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expensed/internal/core"

	"golang.org/x/crypto/bcrypt"
)

// UserStore is the slice of the repository the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (core.User, error)
}

type Service struct {
	store UserStore
	cost  int
}

func NewService(store UserStore, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{store: store, cost: cost}
}

// Register creates a new user with a hashed credential and returns its id.
// The store's unique constraint decides duplicate usernames, so two
// concurrent registrations of the same name yield exactly one success.
func (s *Service) Register(ctx context.Context, username, password string) (int64, error) {
	if username == "" {
		return 0, core.ErrEmptyUsername
	}
	if password == "" {
		return 0, core.ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.store.CreateUser(ctx, username, string(hash))
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "User registered", "user_id", id, "username", username)
	return id, nil
}

// Authenticate verifies a username/password pair and returns the user id.
// Unknown username and wrong password both come back as
// core.ErrInvalidCredentials; callers cannot tell which field was wrong.
func (s *Service) Authenticate(ctx context.Context, username, password string) (int64, error) {
	if username == "" || password == "" {
		return 0, core.ErrInvalidCredentials
	}

	u, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, core.ErrNotFound) {
		// Burn a comparison anyway so the two failure paths cost the same.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B4Vn3sT5S6kQ2bW0a1b2c3d4e5f6"), []byte(password))
		return 0, core.ErrInvalidCredentials
	}
	if err != nil {
		return 0, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return 0, core.ErrInvalidCredentials
	}

	return u.ID, nil
}
