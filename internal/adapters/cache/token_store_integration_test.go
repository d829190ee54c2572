//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/parrainage/matching-service/internal/adapters/cache"
	"github.com/AchilleasB/parrainage/matching-service/internal/testutil/containers"
)

func TestTokenStore_Redis(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	store := cache.NewTokenStore(rc.Client)

	require.NoError(t, store.Revoke(ctx, "abc", time.Minute))

	revoked, err := store.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := rc.Client.TTL(ctx, "revoked:abc").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	revoked, err = store.IsRevoked(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, revoked)
}
