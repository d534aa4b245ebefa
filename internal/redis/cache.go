package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProfileCache holds rendered carrier profile views in Redis, keyed by
// the owning user. Every registry write invalidates the entry, so the
// TTL only bounds staleness of reads that race an external moderation
// action.
type ProfileCache struct {
	client *redis.Client
}

// NewProfileCache creates a new ProfileCache.
func NewProfileCache(client *redis.Client) *ProfileCache {
	return &ProfileCache{client: client}
}

// ProfileCacheTTL bounds how long a cached view can outlive an external
// mutation (e.g. a moderation action setting bannedAt).
const ProfileCacheTTL = 30 * time.Second

const profileCachePrefix = "cache:carrier:profile:"

// Get retrieves a cached profile view. A cache miss returns nil, nil.
func (s *ProfileCache) Get(ctx context.Context, userID string) ([]byte, error) {
	data, err := s.client.Get(ctx, profileCachePrefix+userID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Set stores a rendered profile view.
func (s *ProfileCache) Set(ctx context.Context, userID string, view []byte) error {
	return s.client.Set(ctx, profileCachePrefix+userID, view, ProfileCacheTTL).Err()
}

// Invalidate removes a user's cached view.
func (s *ProfileCache) Invalidate(ctx context.Context, userID string) error {
	return s.client.Del(ctx, profileCachePrefix+userID).Err()
}
