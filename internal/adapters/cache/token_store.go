package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/parrainage/matching-service/internal/config"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/ports"
)

const revokedKeyPrefix = "revoked:"

// RedisClient is the subset of *redis.Client the token store needs.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// TokenStore keeps revoked token hashes in Redis until the token would have
// expired anyway.
type TokenStore struct {
	client RedisClient
	cb     *gobreaker.CircuitBreaker
}

var _ ports.TokenStore = (*TokenStore)(nil)

func NewTokenStore(client RedisClient) *TokenStore {
	return &TokenStore{
		client: client,
		cb:     config.NewCircuitBreaker("Redis-Auth"),
	}
}

func (s *TokenStore) Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.client.Set(ctx, revokedKeyPrefix+tokenHash, "1", ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *TokenStore) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	n, err := s.cb.Execute(func() (interface{}, error) {
		return s.client.Exists(ctx, revokedKeyPrefix+tokenHash).Result()
	})
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n.(int64) > 0, nil
}
