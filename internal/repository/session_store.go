package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/exproctor-backend/internal/config"
)

// SessionStore keeps the active token ID of each user in Redis.
type SessionStore struct {
	rdb *redis.Client
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

// Set registers jti as the only valid token of the user, replacing any other.
func (s *SessionStore) Set(ctx context.Context, userID int64, jti string, ttl time.Duration) error {
	return s.rdb.Set(ctx, config.CacheKey.UserSessionKey(userID), jti, ttl).Err()
}

// Get returns the active token ID, or ErrNotFound.
func (s *SessionStore) Get(ctx context.Context, userID int64) (string, error) {
	jti, err := s.rdb.Get(ctx, config.CacheKey.UserSessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return jti, err
}

// Delete ends the user's session.
func (s *SessionStore) Delete(ctx context.Context, userID int64) error {
	return s.rdb.Del(ctx, config.CacheKey.UserSessionKey(userID)).Err()
}
