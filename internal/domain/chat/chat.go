package chat

import (
	"context"
	"errors"
	"time"

	"baraholka/internal/domain/listing"
	"baraholka/internal/domain/user"
)

var (
	ErrSelfChat        = errors.New("chat: participants must differ")
	ErrListingRequired = errors.New("chat: listing is required")
	ErrEmptyText       = errors.New("chat: message text is required")
	ErrNotFound        = errors.New("chat: not found")
)

// Key identifies a conversation by its unordered participant pair and
// the listing it concerns. The pair is stored sorted, so the key is
// identical regardless of which side initiates.
type Key struct {
	Low     user.ID
	High    user.ID
	Listing listing.ID
}

// NewKey derives the symmetric conversation identity:
// NewKey(a, b, l) == NewKey(b, a, l) for all a, b.
func NewKey(a, b user.ID, listingID listing.ID) (Key, error) {
	if a == b {
		return Key{}, ErrSelfChat
	}
	if listingID == "" {
		return Key{}, ErrListingRequired
	}
	if a > b {
		a, b = b, a
	}
	return Key{Low: a, High: b, Listing: listingID}, nil
}

// Partner returns the other participant for a given member id.
func (k Key) Partner(me user.ID) user.ID {
	if me == k.Low {
		return k.High
	}
	return k.Low
}

// Has reports membership.
func (k Key) Has(id user.ID) bool {
	return id == k.Low || id == k.High
}

type Chat struct {
	Key           Key
	CreatedAt     time.Time
	LastMessageAt time.Time
}

type Message struct {
	ID        string
	Chat      Key
	Sender    user.ID
	Receiver  user.ID
	Text      string
	CreatedAt time.Time
	Read      bool
}

// Direction selects which end of the log a window is taken from.
type Direction int

const (
	// Newest pages backwards from the most recent message.
	Newest Direction = iota
	// Oldest pages forwards from the start of the log.
	Oldest
)

// Repository persists conversations and their append-only message logs.
//
// Ensure is idempotent: any number of calls with the same key leaves
// exactly one conversation record, and does not touch last-activity.
// Append stores one message, bumps the chat's last-activity, and marks
// every prior unread message addressed to the new sender as read.
// Window returns messages in chronological order regardless of the
// retrieval direction.
type Repository interface {
	Ensure(ctx context.Context, key Key, now time.Time) (*Chat, error)
	ByKey(ctx context.Context, key Key) (*Chat, error)
	Append(ctx context.Context, msg *Message) error
	Window(ctx context.Context, key Key, offset, limit int, dir Direction) ([]Message, error)
	ListByUser(ctx context.Context, id user.ID, offset, limit int) ([]Chat, error)
}
