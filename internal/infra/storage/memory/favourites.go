package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"baraholka/internal/domain/listing"
	"baraholka/internal/domain/user"
)

type favouriteKey struct {
	user    user.ID
	listing listing.ID
}

// FavouriteRepository keeps unique (user, listing) pairs in memory.
type FavouriteRepository struct {
	mu    sync.RWMutex
	items map[favouriteKey]time.Time
}

func NewFavouriteRepository() *FavouriteRepository {
	return &FavouriteRepository{items: make(map[favouriteKey]time.Time)}
}

func (r *FavouriteRepository) Add(ctx context.Context, userID user.ID, listingID listing.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := favouriteKey{user: userID, listing: listingID}
	if _, ok := r.items[key]; ok {
		return nil
	}
	r.items[key] = time.Now().UTC()
	return nil
}

func (r *FavouriteRepository) Remove(ctx context.Context, userID user.ID, listingID listing.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, favouriteKey{user: userID, listing: listingID})
	return nil
}

func (r *FavouriteRepository) Has(ctx context.Context, userID user.ID, listingID listing.ID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[favouriteKey{user: userID, listing: listingID}]
	return ok, nil
}

func (r *FavouriteRepository) ListByUser(ctx context.Context, userID user.ID, offset, limit int) ([]listing.ID, error) {
	r.mu.RLock()
	type entry struct {
		id    listing.ID
		added time.Time
	}
	var entries []entry
	for key, added := range r.items {
		if key.user == userID {
			entries = append(entries, entry{id: key.listing, added: added})
		}
	}
	r.mu.RUnlock()

	// Oldest first keeps ordering stable as new favourites are added.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].added.Equal(entries[j].added) {
			return entries[i].id < entries[j].id
		}
		return entries[i].added.Before(entries[j].added)
	})
	ids := make([]listing.ID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.id)
	}
	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	return ids, nil
}
