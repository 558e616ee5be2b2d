package auth

import (
	"context"
	"time"

	"complianceadvisor/internal/cache"
)

const revokedKeyPrefix = "session:revoked:"

// SessionStore tracks revoked session tokens.
type SessionStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisSessionStore keeps revocations in redis until the token would have expired anyway.
type RedisSessionStore struct {
	cache *cache.Client
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewSessionStore creates a redis-backed session store.
func NewSessionStore(cache *cache.Client) *RedisSessionStore {
	return &RedisSessionStore{cache: cache}
}

// Revoke marks the token as logged out for ttl.
func (s *RedisSessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsRevoked checks if a token has been revoked. An unreachable cache reads as not revoked.
func (s *RedisSessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	data, _ := s.cache.Get(ctx, revokedKeyPrefix+tokenID)
	return data != nil, nil
}
