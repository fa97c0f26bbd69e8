package shared

import (
	"context"
	"time"
)

// IdempotencyStore claims keys so that a request is only acted on once
type IdempotencyStore interface {
	// MarkProcessed claims a key for ttl.
	// Returns true if the key was newly claimed, false if it was already held.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether the key is currently held
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release drops a claim so the request can be retried
	Release(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}
