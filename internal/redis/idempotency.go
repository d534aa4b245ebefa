package redis

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResponseStore persists replayable write responses in Redis. Keys are
// scoped by the authenticated user: an Idempotency-Key is chosen by the
// client, so without the scope one carrier's stored response could be
// replayed to another carrier presenting the same key.
type ResponseStore struct {
	client *redis.Client
}

// NewResponseStore creates a new ResponseStore.
func NewResponseStore(client *redis.Client) *ResponseStore {
	return &ResponseStore{client: client}
}

// ResponseTTL bounds how long a stored write response stays replayable.
const ResponseTTL = 24 * time.Hour

const responsePrefix = "carrier:idempotency:"

func responseKey(userID, key string) string {
	return responsePrefix + userID + ":" + key
}

// Get retrieves a user's stored response for a key. A miss returns nil, nil.
func (s *ResponseStore) Get(ctx context.Context, userID, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, responseKey(userID, key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Set stores a user's response for a key.
func (s *ResponseStore) Set(ctx context.Context, userID, key string, data []byte) error {
	return s.client.Set(ctx, responseKey(userID, key), data, ResponseTTL).Err()
}

// Collection names the logical collection behind a redis key, for
// datastore instrumentation.
func Collection(key string) string {
	switch {
	case strings.HasPrefix(key, profileCachePrefix):
		return "profile_cache"
	case strings.HasPrefix(key, responsePrefix):
		return "idempotency"
	default:
		return "redis"
	}
}
