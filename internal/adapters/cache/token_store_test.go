package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/parrainage/matching-service/internal/adapters/cache"
	"github.com/AchilleasB/parrainage/matching-service/internal/testutil/mocks"
)

func TestTokenStore_RevokeAndCheck(t *testing.T) {
	ctx := context.Background()
	client := mocks.NewMockRedisClient()
	store := cache.NewTokenStore(client)

	require.NoError(t, store.Revoke(ctx, "abc", time.Hour))
	assert.True(t, client.HasKey("revoked:abc"))
	assert.WithinDuration(t, time.Now().Add(time.Hour), client.Expiry("revoked:abc"), 5*time.Second)

	revoked, err := store.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "def")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenStore_ExpiredEntryIsForgotten(t *testing.T) {
	ctx := context.Background()
	client := mocks.NewMockRedisClient()
	store := cache.NewTokenStore(client)

	client.SetKey("revoked:old", "1", time.Nanosecond)
	time.Sleep(time.Millisecond)

	revoked, err := store.IsRevoked(ctx, "old")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenStore_Errors(t *testing.T) {
	ctx := context.Background()
	client := mocks.NewMockRedisClient()
	store := cache.NewTokenStore(client)

	client.SetError = errors.New("READONLY")
	client.ExistsError = errors.New("LOADING")

	err := store.Revoke(ctx, "abc", time.Minute)
	assert.ErrorIs(t, err, client.SetError)

	_, err = store.IsRevoked(ctx, "abc")
	assert.ErrorIs(t, err, client.ExistsError)
}
