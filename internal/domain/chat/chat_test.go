package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeySymmetric(t *testing.T) {
	a, err := NewKey(10, 20, "lst-1")
	require.NoError(t, err)
	b, err := NewKey(20, 10, "lst-1")
	require.NoError(t, err)
	assert.Equal(t, a, b, "both initiators derive the same key")
	assert.Less(t, int64(a.Low), int64(a.High), "pair stored sorted")
}

func TestNewKeyValidation(t *testing.T) {
	_, err := NewKey(10, 10, "lst-1")
	assert.ErrorIs(t, err, ErrSelfChat)

	_, err = NewKey(10, 20, "")
	assert.ErrorIs(t, err, ErrListingRequired)
}

func TestKeyDistinctPerListing(t *testing.T) {
	a, err := NewKey(10, 20, "lst-1")
	require.NoError(t, err)
	b, err := NewKey(10, 20, "lst-2")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "same pair, different listing is a different conversation")
}

func TestKeyPartnerAndHas(t *testing.T) {
	k, err := NewKey(30, 7, "lst-9")
	require.NoError(t, err)
	assert.Equal(t, k.High, k.Partner(k.Low))
	assert.Equal(t, k.Low, k.Partner(k.High))
	assert.True(t, k.Has(7))
	assert.True(t, k.Has(30))
	assert.False(t, k.Has(99))
}
