// Package account implements registration and login: the only two
// operations that bypass the authentication gate.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/listd/listd/pkg/api"
	"github.com/listd/listd/pkg/auth/password"
	"github.com/listd/listd/pkg/auth/token"
	"github.com/listd/listd/pkg/storage"
)

// Service creates accounts and exchanges credentials for session tokens.
type Service struct {
	users  storage.UserStore
	hasher *password.Hasher
	tokens *token.Issuer
}

// New creates an account service.
func New(users storage.UserStore, hasher *password.Hasher, tokens *token.Issuer) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens}
}

// Register creates a new account from a validated request and returns a
// session token together with the created user. A duplicate email is a
// Conflict.
func (s *Service) Register(ctx context.Context, req *api.RegisterRequest) (*api.AuthResponse, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &api.User{
		ID:           api.NewUserID(),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, api.NewConflictError("Email already used")
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID)
	return &api.AuthResponse{Token: tok, User: user}, nil
}

// Login verifies credentials and returns a fresh session token. Unknown
// email and wrong password produce the same generic error: the response
// must not reveal whether the email is registered.
func (s *Service) Login(ctx context.Context, req *api.LoginRequest) (*api.AuthResponse, error) {
	user, err := s.users.UserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewUnauthorizedError("Invalid credentials")
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, api.NewUnauthorizedError("Invalid credentials")
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	slog.Debug("user logged in", "user_id", user.ID)
	return &api.AuthResponse{Token: tok, User: user}, nil
}
