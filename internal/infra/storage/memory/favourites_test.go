package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baraholka/internal/domain/listing"
)

func TestFavouriteAddIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewFavouriteRepository()

	require.NoError(t, repo.Add(ctx, 1, "lst-1"))
	require.NoError(t, repo.Add(ctx, 1, "lst-1"))
	require.NoError(t, repo.Add(ctx, 1, "lst-1"))

	ids, err := repo.ListByUser(ctx, 1, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []listing.ID{"lst-1"}, ids, "repeated add keeps a single record")

	has, err := repo.Has(ctx, 1, "lst-1")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestFavouriteRemove(t *testing.T) {
	ctx := context.Background()
	repo := NewFavouriteRepository()
	require.NoError(t, repo.Add(ctx, 1, "lst-1"))

	require.NoError(t, repo.Remove(ctx, 1, "lst-1"))
	has, err := repo.Has(ctx, 1, "lst-1")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, repo.Remove(ctx, 1, "lst-1"), "removing a missing pair is not an error")
}

func TestFavouriteScopedPerUser(t *testing.T) {
	ctx := context.Background()
	repo := NewFavouriteRepository()
	require.NoError(t, repo.Add(ctx, 1, "lst-1"))
	require.NoError(t, repo.Add(ctx, 2, "lst-1"))
	require.NoError(t, repo.Add(ctx, 2, "lst-2"))

	ids, err := repo.ListByUser(ctx, 2, 0, 10)
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	has, err := repo.Has(ctx, 1, "lst-2")
	require.NoError(t, err)
	assert.False(t, has)
}
