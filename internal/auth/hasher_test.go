package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	hasher := NewHasher(4)

	digest, err := hasher.Hash("pw1")
	require.NoError(t, err)
	require.NotEmpty(t, digest)
	require.NotEqual(t, "pw1", digest)

	assert.True(t, hasher.Verify("pw1", digest))
	assert.False(t, hasher.Verify("pw2", digest))
}

func TestHashIsSalted(t *testing.T) {
	t.Parallel()

	hasher := NewHasher(4)

	first, err := hasher.Hash("same-password")
	require.NoError(t, err)
	second, err := hasher.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "per-call salt must make digests differ")
	assert.True(t, hasher.Verify("same-password", first))
	assert.True(t, hasher.Verify("same-password", second))
}

func TestNewHasherClampsInvalidCost(t *testing.T) {
	t.Parallel()

	hasher := NewHasher(-1)

	digest, err := hasher.Hash("pw1")
	require.NoError(t, err)
	assert.True(t, hasher.Verify("pw1", digest))
}
