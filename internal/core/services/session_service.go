package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/ports"
)

// SessionService revokes bearer tokens issued by the identity provider.
// Only the token hash is stored, for as long as the token would stay valid.
type SessionService struct {
	tokens ports.TokenStore
	opts   serviceOptions
}

var _ ports.SessionService = (*SessionService)(nil)

func NewSessionService(tokens ports.TokenStore, opts ...Option) *SessionService {
	return &SessionService{
		tokens: tokens,
		opts:   buildOptions(opts),
	}
}

func (s *SessionService) Logout(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.opts.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.tokens.Revoke(ctx, HashToken(token), ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *SessionService) IsRevoked(ctx context.Context, token string) (bool, error) {
	return s.tokens.IsRevoked(ctx, HashToken(token))
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
