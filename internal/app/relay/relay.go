// Package relay forwards anonymous messages between two participants of
// a listing conversation through the service.
package relay

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"baraholka/internal/domain/chat"
	"baraholka/internal/domain/listing"
	"baraholka/internal/domain/user"
	"baraholka/internal/transport"
)

var ErrEmptyText = errors.New("relay: message text is required")

// EventPublisher emits lifecycle events; failures are logged, never
// propagated.
type EventPublisher interface {
	MessageStored(ctx context.Context, msg chat.Message)
}

// Relay stores messages durably and forwards a notification to the
// receiver. Delivery is fire-and-forget: a failed or muted notification
// never rolls back the stored message.
type Relay struct {
	Chats  chat.Repository
	Users  user.Repository
	Sink   transport.Sink
	Events EventPublisher
	Logger *slog.Logger
	Clock  func() time.Time
}

// Open derives the conversation identity and lazily creates the chat
// record. Calling it repeatedly is safe.
func (r *Relay) Open(ctx context.Context, a, b user.ID, listingID listing.ID) (chat.Key, error) {
	key, err := chat.NewKey(a, b, listingID)
	if err != nil {
		return chat.Key{}, err
	}
	if _, err := r.Chats.Ensure(ctx, key, r.now()); err != nil {
		return chat.Key{}, err
	}
	return key, nil
}

// Send appends one message to the log and notifies the receiver unless
// muted. The append also marks the receiver's earlier messages to the
// sender as read: replying means the backlog was seen.
func (r *Relay) Send(ctx context.Context, key chat.Key, sender user.ID, text string) (*chat.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	msg := &chat.Message{
		ID:        uuid.NewString(),
		Chat:      key,
		Sender:    sender,
		Receiver:  key.Partner(sender),
		Text:      text,
		CreatedAt: r.now(),
	}
	if err := r.Chats.Append(ctx, msg); err != nil {
		return nil, err
	}
	if r.Events != nil {
		r.Events.MessageStored(ctx, *msg)
	}
	r.forward(ctx, msg)
	return msg, nil
}

// Window returns a chronological slice of the log.
func (r *Relay) Window(ctx context.Context, key chat.Key, offset, limit int, dir chat.Direction) ([]chat.Message, error) {
	return r.Chats.Window(ctx, key, offset, limit, dir)
}

func (r *Relay) forward(ctx context.Context, msg *chat.Message) {
	receiver, err := r.Users.ByID(ctx, msg.Receiver)
	if err != nil {
		if r.Logger != nil {
			r.Logger.Warn("receiver lookup failed, notification skipped", "receiver", msg.Receiver, "error", err)
		}
		return
	}
	if receiver.Muted {
		return
	}
	if err := r.Sink.Notify(ctx, msg.Receiver, "Новое сообщение от пользователя. Чтобы ответить, найдите чат в разделе «Чаты»."); err != nil {
		if r.Logger != nil {
			r.Logger.Warn("message notification failed", "receiver", msg.Receiver, "error", err)
		}
	}
}

func (r *Relay) now() time.Time {
	if r.Clock != nil {
		return r.Clock().UTC()
	}
	return time.Now().UTC()
}
