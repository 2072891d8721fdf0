package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory user Store for tests and memory-backed runs.
type MemoryRepo struct {
	mu     sync.RWMutex
	users  map[string]*User
	nextID int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]*User), nextID: 1}
}

func (r *MemoryRepo) Create(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.Username]; ok {
		return ErrUserExists
	}
	stored := *u
	stored.ID = r.nextID
	r.nextID++
	stored.CreatedAt = time.Now()
	r.users[stored.Username] = &stored
	u.ID = stored.ID
	u.CreatedAt = stored.CreatedAt
	return nil
}

func (r *MemoryRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return User{}, ErrUnauthorized
	}
	return *u, nil
}
