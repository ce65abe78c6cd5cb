package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"baraholka/internal/domain/chat"
	"baraholka/internal/domain/listing"
	"baraholka/internal/domain/user"
)

// ChatRepository keeps conversations in "chats" and their append-only
// logs in "chat_messages". The chat _id is derived from the key, which
// is already symmetric, so both sides address the same document.
type ChatRepository struct {
	chats    *mongo.Collection
	messages *mongo.Collection
}

func NewChatRepository(db *mongo.Database) *ChatRepository {
	return &ChatRepository{
		chats:    db.Collection("chats"),
		messages: db.Collection("chat_messages"),
	}
}

func chatID(key chat.Key) string {
	return fmt.Sprintf("%d:%d:%s", key.Low, key.High, key.Listing)
}

func (r *ChatRepository) Ensure(ctx context.Context, key chat.Key, now time.Time) (*chat.Chat, error) {
	if now.IsZero() {
		now = time.Now()
	}
	doc := chatDocument{
		ID:        chatID(key),
		Low:       int64(key.Low),
		High:      int64(key.High),
		Listing:   string(key.Listing),
		CreatedAt: now.UTC().UnixMilli(),
	}
	// $setOnInsert keeps an existing conversation untouched.
	opts := options.Update().SetUpsert(true)
	if _, err := r.chats.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$setOnInsert": doc}, opts); err != nil {
		return nil, err
	}
	return r.ByKey(ctx, key)
}

func (r *ChatRepository) ByKey(ctx context.Context, key chat.Key) (*chat.Chat, error) {
	var doc chatDocument
	if err := r.chats.FindOne(ctx, bson.M{"_id": chatID(key)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, chat.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ChatRepository) Append(ctx context.Context, msg *chat.Message) error {
	id := chatID(msg.Chat)
	res, err := r.chats.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_message_at": msg.CreatedAt.UnixMilli()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return chat.ErrNotFound
	}
	// Replying implies the sender has seen everything addressed to them.
	if _, err := r.messages.UpdateMany(ctx,
		bson.M{"chat": id, "receiver": int64(msg.Sender), "read": false},
		bson.M{"$set": bson.M{"read": true}},
	); err != nil {
		return err
	}
	_, err = r.messages.InsertOne(ctx, newMessageDocument(id, msg))
	return err
}

func (r *ChatRepository) Window(ctx context.Context, key chat.Key, offset, limit int, dir chat.Direction) ([]chat.Message, error) {
	if limit <= 0 {
		return nil, nil
	}
	sortOrder := 1
	if dir == chat.Newest {
		sortOrder = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: sortOrder}, {Key: "_id", Value: sortOrder}})
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	opts.SetLimit(int64(limit))

	cur, err := r.messages.Find(ctx, bson.M{"chat": chatID(key)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []chat.Message
	for cur.Next(ctx) {
		var doc messageDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toMessage(key))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	if dir == chat.Newest {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (r *ChatRepository) ListByUser(ctx context.Context, id user.ID, offset, limit int) ([]chat.Chat, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"low": int64(id)},
		bson.M{"high": int64(id)},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "last_message_at", Value: -1}})
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.chats.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []chat.Chat
	for cur.Next(ctx) {
		var doc chatDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, *doc.toAggregate())
	}
	return out, cur.Err()
}

type chatDocument struct {
	ID            string `bson:"_id"`
	Low           int64  `bson:"low"`
	High          int64  `bson:"high"`
	Listing       string `bson:"listing"`
	CreatedAt     int64  `bson:"created_at"`
	LastMessageAt int64  `bson:"last_message_at,omitempty"`
}

func (d chatDocument) toAggregate() *chat.Chat {
	c := &chat.Chat{
		Key: chat.Key{
			Low:     user.ID(d.Low),
			High:    user.ID(d.High),
			Listing: listing.ID(d.Listing),
		},
		CreatedAt: timestampToTime(d.CreatedAt),
	}
	if d.LastMessageAt != 0 {
		c.LastMessageAt = timestampToTime(d.LastMessageAt)
	}
	return c
}

type messageDocument struct {
	ID        string `bson:"_id"`
	Chat      string `bson:"chat"`
	Sender    int64  `bson:"sender"`
	Receiver  int64  `bson:"receiver"`
	Text      string `bson:"text"`
	CreatedAt int64  `bson:"created_at"`
	Read      bool   `bson:"read"`
}

func newMessageDocument(chatID string, msg *chat.Message) messageDocument {
	return messageDocument{
		ID:        msg.ID,
		Chat:      chatID,
		Sender:    int64(msg.Sender),
		Receiver:  int64(msg.Receiver),
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt.UnixMilli(),
		Read:      msg.Read,
	}
}

func (d messageDocument) toMessage(key chat.Key) chat.Message {
	return chat.Message{
		ID:        d.ID,
		Chat:      key,
		Sender:    user.ID(d.Sender),
		Receiver:  user.ID(d.Receiver),
		Text:      d.Text,
		CreatedAt: timestampToTime(d.CreatedAt),
		Read:      d.Read,
	}
}
