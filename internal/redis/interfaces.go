package redis

import "context"

// ProfileCacheInterface defines the cache operations the registry uses.
type ProfileCacheInterface interface {
	Get(ctx context.Context, userID string) ([]byte, error)
	Set(ctx context.Context, userID string, view []byte) error
	Invalidate(ctx context.Context, userID string) error
}

// ResponseStoreInterface defines the replay-store operations the
// idempotency middleware uses.
type ResponseStoreInterface interface {
	Get(ctx context.Context, userID, key string) ([]byte, error)
	Set(ctx context.Context, userID, key string, data []byte) error
}

// Ensure concrete types implement interfaces.
var (
	_ ProfileCacheInterface  = (*ProfileCache)(nil)
	_ ResponseStoreInterface = (*ResponseStore)(nil)
)
