package auth

import (
	"context"
	"time"

	"bookcatalog/internal/platform/crypto"
)

type Service struct {
	secret   string
	tokenTTL time.Duration
	users    Store
}

func NewService(secret string, tokenTTL time.Duration, users Store) *Service {
	return &Service{secret: secret, tokenTTL: tokenTTL, users: users}
}

func (s *Service) Register(ctx context.Context, username, password string) (User, error) {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return User{}, err
	}

	u := &User{Username: username, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return User{}, err
	}
	return *u, nil
}

// Login verifies the credentials and issues a bearer token. The same
// ErrUnauthorized comes back for unknown users and bad passwords.
func (s *Service) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil || !crypto.VerifyPassword(u.PasswordHash, password) {
		return "", time.Time{}, ErrUnauthorized
	}
	return crypto.GenerateToken(s.secret, u.Username, s.tokenTTL)
}
