package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baraholka/internal/domain/chat"
	"baraholka/internal/domain/user"
)

func testKey(t *testing.T) chat.Key {
	t.Helper()
	key, err := chat.NewKey(1, 2, "lst-1")
	require.NoError(t, err)
	return key
}

func appendText(t *testing.T, repo *ChatRepository, key chat.Key, sender user.ID, text string, at time.Time) {
	t.Helper()
	require.NoError(t, repo.Append(context.Background(), &chat.Message{
		ID:        text,
		Chat:      key,
		Sender:    sender,
		Receiver:  key.Partner(sender),
		Text:      text,
		CreatedAt: at,
	}))
}

func TestEnsureIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository()
	key := testKey(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	first, err := repo.Ensure(ctx, key, now)
	require.NoError(t, err)
	assert.Equal(t, now, first.CreatedAt)

	appendText(t, repo, key, 1, "привет", now.Add(time.Minute))

	again, err := repo.Ensure(ctx, key, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, again.CreatedAt)
	assert.Equal(t, now.Add(time.Minute), again.LastMessageAt, "re-ensure does not touch last activity")
}

func TestAppendFlipsUnreadOnReply(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository()
	key := testKey(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err := repo.Ensure(ctx, key, now)
	require.NoError(t, err)

	appendText(t, repo, key, 1, "вопрос", now.Add(1*time.Minute))
	appendText(t, repo, key, 1, "ещё вопрос", now.Add(2*time.Minute))

	window, err := repo.Window(ctx, key, 0, 10, chat.Newest)
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.False(t, window[0].Read)
	assert.False(t, window[1].Read)

	// The reply marks everything addressed to user 2 as read.
	appendText(t, repo, key, 2, "ответ", now.Add(3*time.Minute))

	window, err = repo.Window(ctx, key, 0, 10, chat.Newest)
	require.NoError(t, err)
	require.Len(t, window, 3)
	assert.True(t, window[0].Read)
	assert.True(t, window[1].Read)
	assert.False(t, window[2].Read, "the reply itself stays unread")
}

func TestAppendUnknownChat(t *testing.T) {
	repo := NewChatRepository()
	key := testKey(t)
	err := repo.Append(context.Background(), &chat.Message{Chat: key, Sender: 1, Receiver: 2})
	assert.ErrorIs(t, err, chat.ErrNotFound)
}

func TestWindowDirections(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository()
	key := testKey(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err := repo.Ensure(ctx, key, now)
	require.NoError(t, err)

	for i, text := range []string{"m1", "m2", "m3", "m4", "m5"} {
		appendText(t, repo, key, 1, text, now.Add(time.Duration(i)*time.Minute))
	}

	newest, err := repo.Window(ctx, key, 0, 2, chat.Newest)
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, "m4", newest[0].Text, "newest window is still chronological")
	assert.Equal(t, "m5", newest[1].Text)

	older, err := repo.Window(ctx, key, 2, 2, chat.Newest)
	require.NoError(t, err)
	require.Len(t, older, 2)
	assert.Equal(t, "m2", older[0].Text)
	assert.Equal(t, "m3", older[1].Text)

	oldest, err := repo.Window(ctx, key, 0, 3, chat.Oldest)
	require.NoError(t, err)
	require.Len(t, oldest, 3)
	assert.Equal(t, "m1", oldest[0].Text)
	assert.Equal(t, "m3", oldest[2].Text)

	past, err := repo.Window(ctx, key, 10, 5, chat.Newest)
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestListByUserOrdersByActivity(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	first, err := chat.NewKey(1, 2, "lst-1")
	require.NoError(t, err)
	second, err := chat.NewKey(1, 3, "lst-2")
	require.NoError(t, err)
	_, err = repo.Ensure(ctx, first, now)
	require.NoError(t, err)
	_, err = repo.Ensure(ctx, second, now)
	require.NoError(t, err)

	appendText(t, repo, first, 1, "a", now.Add(1*time.Minute))
	appendText(t, repo, second, 1, "b", now.Add(2*time.Minute))

	chats, err := repo.ListByUser(ctx, 1, 0, 10)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, second, chats[0].Key, "most recently active chat first")

	chats, err = repo.ListByUser(ctx, 3, 0, 10)
	require.NoError(t, err)
	require.Len(t, chats, 1)

	chats, err = repo.ListByUser(ctx, 9, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, chats)
}
