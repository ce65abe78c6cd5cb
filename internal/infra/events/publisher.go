// Package events publishes domain lifecycle events to the broker.
// Publishing is best effort: the conversation must not stall because
// the event stream is down, so failures are logged and swallowed.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"baraholka/internal/domain/chat"
	"baraholka/internal/domain/listing"
)

const (
	TopicListings = "baraholka.listings"
	TopicMessages = "baraholka.messages"
)

// Broker is the slice of the Kafka producer the publisher needs.
type Broker interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

type Publisher struct {
	broker Broker
	logger *slog.Logger
}

func NewPublisher(broker Broker, logger *slog.Logger) *Publisher {
	return &Publisher{broker: broker, logger: logger}
}

type envelope struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	OccurredAt time.Time       `json:"occurred_at"`
	Aggregate  string          `json:"aggregate"`
	Data       json.RawMessage `json:"data"`
}

func (p *Publisher) ListingSubmitted(ctx context.Context, l listing.Listing) {
	p.emit(ctx, TopicListings, "listing.submitted", string(l.ID), listingPayload(l))
}

func (p *Publisher) ListingModerated(ctx context.Context, l listing.Listing) {
	p.emit(ctx, TopicListings, "listing."+string(l.Status), string(l.ID), listingPayload(l))
}

func (p *Publisher) MessageStored(ctx context.Context, msg chat.Message) {
	key := fmt.Sprintf("%d:%d:%s", msg.Chat.Low, msg.Chat.High, msg.Chat.Listing)
	p.emit(ctx, TopicMessages, "message.stored", key, map[string]any{
		"id":       msg.ID,
		"listing":  msg.Chat.Listing,
		"sender":   msg.Sender,
		"receiver": msg.Receiver,
		"sent_at":  msg.CreatedAt,
	})
}

func (p *Publisher) emit(ctx context.Context, topic, name, key string, data any) {
	if p.broker == nil {
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		p.warn("event payload marshal failed", name, key, err)
		return
	}
	env := envelope{
		ID:         uuid.NewString(),
		Name:       name,
		OccurredAt: time.Now().UTC(),
		Aggregate:  key,
		Data:       raw,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		p.warn("event envelope marshal failed", name, key, err)
		return
	}
	headers := map[string]string{"event_name": name}
	if err := p.broker.Publish(ctx, topic, key, payload, headers); err != nil {
		p.warn("event publish failed", name, key, err)
	}
}

func (p *Publisher) warn(msg, name, key string, err error) {
	if p.logger != nil {
		p.logger.Warn(msg, "event", name, "key", key, "error", err)
	}
}

func listingPayload(l listing.Listing) map[string]any {
	return map[string]any{
		"id":       l.ID,
		"owner":    l.Owner,
		"city":     l.City,
		"category": l.Category,
		"price":    l.Price,
		"status":   l.Status,
	}
}
