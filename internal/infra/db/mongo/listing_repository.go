package mongo

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"baraholka/internal/domain/listing"
	"baraholka/internal/domain/user"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("listings")}
}

func (r *ListingRepository) ByID(ctx context.Context, id listing.ID) (*listing.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, listing.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Save(ctx context.Context, l *listing.Listing) error {
	doc := newListingDocument(l)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

func (r *ListingRepository) ByOwner(ctx context.Context, owner user.ID, offset, limit int) ([]*listing.Listing, error) {
	return r.find(ctx, bson.M{"owner": int64(owner)}, offset, limit)
}

func (r *ListingRepository) Pending(ctx context.Context, offset, limit int) ([]*listing.Listing, error) {
	return r.find(ctx, bson.M{"status": string(listing.StatusPending)}, offset, limit)
}

// Search filters approved listings by city and optional category and
// condition in the query; term matching happens in process because the
// terms must match title or description interchangeably.
func (r *ListingRepository) Search(ctx context.Context, params listing.SearchParams) ([]*listing.Listing, error) {
	params = params.Normalized()
	filter := bson.M{
		"status": string(listing.StatusApproved),
		"city":   bson.M{"$regex": "^" + escapeRegex(params.City) + "$", "$options": "i"},
	}
	if params.Category != "" {
		filter["category"] = params.Category
	}
	if params.Condition != "" {
		filter["condition"] = params.Condition
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var matched []*listing.Listing
	skipped := 0
	for cur.Next(ctx) {
		var doc listingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		agg := doc.toAggregate()
		if !agg.MatchesTerms(params.Terms) {
			continue
		}
		if skipped < params.Offset {
			skipped++
			continue
		}
		matched = append(matched, agg)
		if len(matched) == params.Limit {
			break
		}
	}
	return matched, cur.Err()
}

func (r *ListingRepository) find(ctx context.Context, filter bson.M, offset, limit int) ([]*listing.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*listing.Listing
	for cur.Next(ctx) {
		var doc listingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

func escapeRegex(s string) string {
	return regexp.QuoteMeta(s)
}

type listingDocument struct {
	ID            string   `bson:"_id"`
	Owner         int64    `bson:"owner"`
	City          string   `bson:"city"`
	Microdistrict string   `bson:"microdistrict"`
	Category      string   `bson:"category"`
	Condition     string   `bson:"condition"`
	Title         string   `bson:"title"`
	Description   string   `bson:"description"`
	Price         int64    `bson:"price"`
	Status        string   `bson:"status"`
	Photos        []string `bson:"photos"`
	CreatedAt     int64    `bson:"created_at"`
	UpdatedAt     int64    `bson:"updated_at"`
}

func newListingDocument(l *listing.Listing) listingDocument {
	return listingDocument{
		ID:            string(l.ID),
		Owner:         int64(l.Owner),
		City:          l.City,
		Microdistrict: l.Microdistrict,
		Category:      l.Category,
		Condition:     l.Condition,
		Title:         l.Title,
		Description:   l.Description,
		Price:         l.Price,
		Status:        string(l.Status),
		Photos:        append([]string(nil), l.Photos...),
		CreatedAt:     l.CreatedAt.UnixMilli(),
		UpdatedAt:     l.UpdatedAt.UnixMilli(),
	}
}

func (d listingDocument) toAggregate() *listing.Listing {
	return &listing.Listing{
		ID:            listing.ID(d.ID),
		Owner:         user.ID(d.Owner),
		City:          d.City,
		Microdistrict: d.Microdistrict,
		Category:      d.Category,
		Condition:     d.Condition,
		Title:         d.Title,
		Description:   d.Description,
		Price:         d.Price,
		Status:        listing.Status(d.Status),
		Photos:        append([]string(nil), d.Photos...),
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
	}
}
