package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRegistryMembership(t *testing.T) {
	t.Parallel()

	registry := NewMemoryRegistry()
	ctx := context.Background()
	expiresAt := time.Now().UTC().Add(time.Hour)

	active, err := registry.IsActive(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, registry.Register(ctx, "tok-1", "user-1", expiresAt))

	active, err = registry.IsActive(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, active)

	revoked, err := registry.Revoke(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	active, err = registry.IsActive(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, active)

	revoked, err = registry.Revoke(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, revoked, "second revoke must report the token as gone")
}

func TestMemoryRegistryExpiry(t *testing.T) {
	t.Parallel()

	registry := NewMemoryRegistry()
	ctx := context.Background()

	require.NoError(t, registry.Register(ctx, "tok-1", "user-1", time.Now().UTC().Add(-time.Second)))

	active, err := registry.IsActive(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, active, "expired tokens must not be active")
}

func TestMemoryRegistryConcurrent(t *testing.T) {
	t.Parallel()

	registry := NewMemoryRegistry()
	ctx := context.Background()
	expiresAt := time.Now().UTC().Add(time.Hour)

	const workers = 32

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			token := fmt.Sprintf("tok-%d", n)
			if err := registry.Register(ctx, token, "user-1", expiresAt); err != nil {
				t.Error(err)
				return
			}
			active, err := registry.IsActive(ctx, token)
			if err != nil || !active {
				t.Errorf("token %s should be active, err=%v", token, err)
				return
			}
			if n%2 == 0 {
				if _, err := registry.Revoke(ctx, token); err != nil {
					t.Error(err)
				}
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		token := fmt.Sprintf("tok-%d", i)
		active, err := registry.IsActive(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, i%2 != 0, active, token)
	}
}
