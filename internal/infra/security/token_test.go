package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	h := TokenHasher{Cost: 4}

	digest, err := h.Hash("s3cret-admin-token")
	require.NoError(t, err)
	require.NotEmpty(t, digest)

	assert.NoError(t, h.Compare(digest, "s3cret-admin-token"))
	assert.Error(t, h.Compare(digest, "wrong-token"))
}
