package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"baraholka/internal/domain/listing"
	"baraholka/internal/domain/user"
)

// FavouriteRepository stores one document per (user, listing) pair. The
// composite _id makes Add naturally idempotent.
type FavouriteRepository struct {
	col *mongo.Collection
}

func NewFavouriteRepository(db *mongo.Database) *FavouriteRepository {
	return &FavouriteRepository{col: db.Collection("favourites")}
}

func favouriteID(userID user.ID, listingID listing.ID) string {
	return fmt.Sprintf("%d:%s", userID, listingID)
}

func (r *FavouriteRepository) Add(ctx context.Context, userID user.ID, listingID listing.ID) error {
	doc := favouriteDocument{
		ID:      favouriteID(userID, listingID),
		User:    int64(userID),
		Listing: string(listingID),
		AddedAt: time.Now().UnixMilli(),
	}
	_, err := r.col.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (r *FavouriteRepository) Remove(ctx context.Context, userID user.ID, listingID listing.ID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": favouriteID(userID, listingID)})
	return err
}

func (r *FavouriteRepository) Has(ctx context.Context, userID user.ID, listingID listing.ID) (bool, error) {
	err := r.col.FindOne(ctx, bson.M{"_id": favouriteID(userID, listingID)}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *FavouriteRepository) ListByUser(ctx context.Context, userID user.ID, offset, limit int) ([]listing.ID, error) {
	opts := options.Find().SetSort(bson.D{{Key: "added_at", Value: 1}, {Key: "_id", Value: 1}})
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, bson.M{"user": int64(userID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []listing.ID
	for cur.Next(ctx) {
		var doc favouriteDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, listing.ID(doc.Listing))
	}
	return ids, cur.Err()
}

type favouriteDocument struct {
	ID      string `bson:"_id"`
	User    int64  `bson:"user"`
	Listing string `bson:"listing"`
	AddedAt int64  `bson:"added_at"`
}
