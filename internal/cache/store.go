package cache

import (
	"context"
	"time"
)

// Store abstracts ephemeral key-value state.
// Implementations: Redis (production) or in-memory (local dev / single instance).
// Get returns (nil, nil) for a missing or expired key.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
