package ports

import (
	"context"
	"time"
)

// Port: a byte cache for derived read models (insights, dashboard rollups).
// Get reports a miss with ok=false; a nil Cache dependency means no caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
