package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/ports"
)

// MockTokenStore implements ports.TokenStore with an in-memory set of
// revoked token hashes.
type MockTokenStore struct {
	mu sync.RWMutex

	Revoked map[string]time.Duration

	RevokeError    error
	IsRevokedError error
}

var _ ports.TokenStore = (*MockTokenStore)(nil)

func NewMockTokenStore() *MockTokenStore {
	return &MockTokenStore{
		Revoked: make(map[string]time.Duration),
	}
}

func (m *MockTokenStore) Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RevokeError != nil {
		return m.RevokeError
	}
	m.Revoked[tokenHash] = ttl
	return nil
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.IsRevokedError != nil {
		return false, m.IsRevokedError
	}
	_, ok := m.Revoked[tokenHash]
	return ok, nil
}

// TTL reports the expiry recorded for tokenHash.
func (m *MockTokenStore) TTL(tokenHash string) (time.Duration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ttl, ok := m.Revoked[tokenHash]
	return ttl, ok
}
