package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baraholka/internal/domain/chat"
	"baraholka/internal/domain/user"
	"baraholka/internal/infra/storage/memory"
	"baraholka/internal/transport"
)

type fakeSink struct {
	notified  []user.ID
	notifyErr error
}

func (s *fakeSink) Send(context.Context, user.ID, string, transport.Keyboard) (transport.SurfaceID, error) {
	return "s1", nil
}
func (s *fakeSink) Edit(context.Context, user.ID, transport.SurfaceID, string, transport.Keyboard) error {
	return nil
}
func (s *fakeSink) Delete(context.Context, user.ID, transport.SurfaceID) error { return nil }
func (s *fakeSink) SendMediaGroup(context.Context, user.ID, []transport.Media) (transport.SurfaceID, error) {
	return "s1", nil
}
func (s *fakeSink) Notify(_ context.Context, to user.ID, _ string) error {
	if s.notifyErr != nil {
		return s.notifyErr
	}
	s.notified = append(s.notified, to)
	return nil
}

type capturedEvents struct {
	stored []chat.Message
}

func (c *capturedEvents) MessageStored(_ context.Context, msg chat.Message) {
	c.stored = append(c.stored, msg)
}

func newTestRelay(t *testing.T, muted bool) (*Relay, *fakeSink, *capturedEvents) {
	t.Helper()
	users := memory.NewUserRepository()
	for _, id := range []user.ID{1, 2} {
		u, err := user.New(user.CreateParams{ID: id, City: "Москва"})
		require.NoError(t, err)
		if id == 2 && muted {
			u.SetMuted(true, time.Time{})
		}
		require.NoError(t, users.Save(context.Background(), u))
	}
	sink := &fakeSink{}
	events := &capturedEvents{}
	return &Relay{
		Chats:  memory.NewChatRepository(),
		Users:  users,
		Sink:   sink,
		Events: events,
	}, sink, events
}

func TestOpenIdempotent(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRelay(t, false)

	key, err := r.Open(ctx, 1, 2, "lst-1")
	require.NoError(t, err)
	again, err := r.Open(ctx, 2, 1, "lst-1")
	require.NoError(t, err)
	assert.Equal(t, key, again)

	_, err = r.Open(ctx, 1, 1, "lst-1")
	assert.ErrorIs(t, err, chat.ErrSelfChat)
}

func TestSendStoresAndNotifies(t *testing.T) {
	ctx := context.Background()
	r, sink, events := newTestRelay(t, false)
	key, err := r.Open(ctx, 1, 2, "lst-1")
	require.NoError(t, err)

	msg, err := r.Send(ctx, key, 1, "  Привет!  ")
	require.NoError(t, err)
	assert.Equal(t, "Привет!", msg.Text)
	assert.Equal(t, user.ID(2), msg.Receiver)
	assert.NotEmpty(t, msg.ID)

	assert.Equal(t, []user.ID{2}, sink.notified)
	require.Len(t, events.stored, 1)
	assert.Equal(t, msg.ID, events.stored[0].ID)

	window, err := r.Window(ctx, key, 0, 10, chat.Newest)
	require.NoError(t, err)
	require.Len(t, window, 1)
}

func TestSendRejectsEmptyText(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRelay(t, false)
	key, err := r.Open(ctx, 1, 2, "lst-1")
	require.NoError(t, err)

	_, err = r.Send(ctx, key, 1, "   ")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestSendMutedReceiverSuppressed(t *testing.T) {
	ctx := context.Background()
	r, sink, _ := newTestRelay(t, true)
	key, err := r.Open(ctx, 1, 2, "lst-1")
	require.NoError(t, err)

	msg, err := r.Send(ctx, key, 1, "привет")
	require.NoError(t, err)
	assert.Empty(t, sink.notified, "muted receiver gets no notification")

	window, err := r.Window(ctx, key, 0, 10, chat.Newest)
	require.NoError(t, err)
	require.Len(t, window, 1, "the message is stored regardless")
	assert.Equal(t, msg.ID, window[0].ID)
}

func TestSendNotifyFailureNonFatal(t *testing.T) {
	ctx := context.Background()
	r, sink, _ := newTestRelay(t, false)
	sink.notifyErr = errors.New("gateway down")
	key, err := r.Open(ctx, 1, 2, "lst-1")
	require.NoError(t, err)

	_, err = r.Send(ctx, key, 1, "привет")
	assert.NoError(t, err, "delivery failure never rolls back the stored message")
}

func TestReplyMarksBacklogRead(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRelay(t, false)
	key, err := r.Open(ctx, 1, 2, "lst-1")
	require.NoError(t, err)

	_, err = r.Send(ctx, key, 1, "вопрос")
	require.NoError(t, err)
	_, err = r.Send(ctx, key, 2, "ответ")
	require.NoError(t, err)

	window, err := r.Window(ctx, key, 0, 10, chat.Newest)
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.True(t, window[0].Read, "replying marks the backlog as seen")
	assert.False(t, window[1].Read)
}
