package memory

import (
	"context"
	"sync"

	"baraholka/internal/domain/user"
)

// UserRepository is an in-memory implementation for dev mode and tests.
type UserRepository struct {
	mu    sync.RWMutex
	items map[user.ID]user.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{items: make(map[user.ID]user.User)}
}

func (r *UserRepository) ByID(ctx context.Context, id user.ID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.items[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	copied := stored
	return &copied, nil
}

func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[u.ID] = *u
	return nil
}
