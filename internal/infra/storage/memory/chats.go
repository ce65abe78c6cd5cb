package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"baraholka/internal/domain/chat"
	"baraholka/internal/domain/user"
)

type chatRecord struct {
	chat     chat.Chat
	messages []chat.Message
}

// ChatRepository keeps conversations and their message logs in memory.
type ChatRepository struct {
	mu    sync.RWMutex
	items map[chat.Key]*chatRecord
}

func NewChatRepository() *ChatRepository {
	return &ChatRepository{items: make(map[chat.Key]*chatRecord)}
}

func (r *ChatRepository) Ensure(ctx context.Context, key chat.Key, now time.Time) (*chat.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.items[key]; ok {
		copied := rec.chat
		return &copied, nil
	}
	if now.IsZero() {
		now = time.Now()
	}
	rec := &chatRecord{chat: chat.Chat{Key: key, CreatedAt: now.UTC()}}
	r.items[key] = rec
	copied := rec.chat
	return &copied, nil
}

func (r *ChatRepository) ByKey(ctx context.Context, key chat.Key) (*chat.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.items[key]
	if !ok {
		return nil, chat.ErrNotFound
	}
	copied := rec.chat
	return &copied, nil
}

func (r *ChatRepository) Append(ctx context.Context, msg *chat.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.items[msg.Chat]
	if !ok {
		return chat.ErrNotFound
	}
	// Replying implies the sender has seen everything addressed to them.
	for i := range rec.messages {
		if rec.messages[i].Receiver == msg.Sender {
			rec.messages[i].Read = true
		}
	}
	rec.messages = append(rec.messages, *msg)
	rec.chat.LastMessageAt = msg.CreatedAt
	return nil
}

func (r *ChatRepository) Window(ctx context.Context, key chat.Key, offset, limit int, dir chat.Direction) ([]chat.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.items[key]
	if !ok {
		return nil, chat.ErrNotFound
	}
	total := len(rec.messages)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || offset >= total {
		return nil, nil
	}
	var lo, hi int
	switch dir {
	case chat.Oldest:
		lo = offset
		hi = lo + limit
		if hi > total {
			hi = total
		}
	default:
		hi = total - offset
		lo = hi - limit
		if lo < 0 {
			lo = 0
		}
	}
	return append([]chat.Message(nil), rec.messages[lo:hi]...), nil
}

func (r *ChatRepository) ListByUser(ctx context.Context, id user.ID, offset, limit int) ([]chat.Chat, error) {
	r.mu.RLock()
	var chats []chat.Chat
	for _, rec := range r.items {
		if rec.chat.Key.Has(id) {
			chats = append(chats, rec.chat)
		}
	}
	r.mu.RUnlock()

	sort.Slice(chats, func(i, j int) bool {
		return chats[i].LastMessageAt.After(chats[j].LastMessageAt)
	})
	if offset >= len(chats) {
		return nil, nil
	}
	chats = chats[offset:]
	if limit > 0 && limit < len(chats) {
		chats = chats[:limit]
	}
	return chats, nil
}
