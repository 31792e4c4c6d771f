package cache

import (
	"context"
	"time"
)

// Store is a small key-value cache used for the gateway's duplicate-event
// fast path and for scheduler stats snapshots. The database remains the
// authority; a cache miss or failure only costs an extra query.
type Store interface {
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
}
