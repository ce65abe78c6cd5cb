package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"baraholka/internal/domain/listing"
	"baraholka/internal/domain/user"
)

// ListingRepository is an in-memory implementation for dev mode and tests.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[listing.ID]listing.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{items: make(map[listing.ID]listing.Listing)}
}

func (r *ListingRepository) ByID(ctx context.Context, id listing.ID) (*listing.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.items[id]
	if !ok {
		return nil, listing.ErrNotFound
	}
	return cloneListing(stored), nil
}

func (r *ListingRepository) Save(ctx context.Context, l *listing.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *l
	copied.Photos = append([]string(nil), l.Photos...)
	r.items[l.ID] = copied
	return nil
}

func (r *ListingRepository) ByOwner(ctx context.Context, owner user.ID, offset, limit int) ([]*listing.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []*listing.Listing
	for _, stored := range r.items {
		if stored.Owner == owner {
			matched = append(matched, cloneListing(stored))
		}
	}
	sortNewestFirst(matched)
	return page(matched, offset, limit), nil
}

func (r *ListingRepository) Pending(ctx context.Context, offset, limit int) ([]*listing.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []*listing.Listing
	for _, stored := range r.items {
		if stored.Status == listing.StatusPending {
			matched = append(matched, cloneListing(stored))
		}
	}
	sortNewestFirst(matched)
	return page(matched, offset, limit), nil
}

// Search returns approved listings in the given city, newest first.
func (r *ListingRepository) Search(ctx context.Context, params listing.SearchParams) ([]*listing.Listing, error) {
	params = params.Normalized()
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []*listing.Listing
	for _, stored := range r.items {
		if stored.Status != listing.StatusApproved {
			continue
		}
		if !strings.EqualFold(stored.City, params.City) {
			continue
		}
		if params.Category != "" && stored.Category != params.Category {
			continue
		}
		if params.Condition != "" && stored.Condition != params.Condition {
			continue
		}
		if !stored.MatchesTerms(params.Terms) {
			continue
		}
		matched = append(matched, cloneListing(stored))
	}
	sortNewestFirst(matched)
	return page(matched, params.Offset, params.Limit), nil
}

func cloneListing(stored listing.Listing) *listing.Listing {
	copied := stored
	copied.Photos = append([]string(nil), stored.Photos...)
	return &copied
}

func sortNewestFirst(items []*listing.Listing) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

func page(items []*listing.Listing, offset, limit int) []*listing.Listing {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
