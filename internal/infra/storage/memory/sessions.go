package memory

import (
	"context"
	"sync"

	"baraholka/internal/domain/user"
	"baraholka/internal/flow"
)

// SessionStore holds live conversation contexts in process memory.
// Sessions are transient, so a restart simply returns everyone to idle.
type SessionStore struct {
	mu    sync.RWMutex
	items map[user.ID]flow.Context
}

func NewSessionStore() *SessionStore {
	return &SessionStore{items: make(map[user.ID]flow.Context)}
}

func (s *SessionStore) Get(ctx context.Context, id user.ID) (*flow.Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	copied := stored
	copied.Photos = append([]string(nil), stored.Photos...)
	if stored.Chat != nil {
		key := *stored.Chat
		copied.Chat = &key
	}
	return &copied, nil
}

func (s *SessionStore) Put(ctx context.Context, id user.ID, c *flow.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *c
	copied.Photos = append([]string(nil), c.Photos...)
	if c.Chat != nil {
		key := *c.Chat
		copied.Chat = &key
	}
	s.items[id] = copied
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id user.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}
