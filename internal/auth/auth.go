package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUnauthorized = errors.New("unauthorized")
)

// User is an API account that may query and trigger ingestion.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store defines the contract for user persistence. Create must enforce
// username uniqueness and return ErrUserExists on violation.
type Store interface {
	Create(ctx context.Context, u *User) error
	GetByUsername(ctx context.Context, username string) (User, error)
}
