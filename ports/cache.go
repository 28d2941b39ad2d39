package ports

import (
	"context"
	"time"
)

// Cache is the shared TTL-bearing key-value store backing revocation,
// refresh-token and rate-limit state.
type Cache interface {
	// Get retrieves a value by key. Returns core.ErrCacheMiss for absent keys.
	Get(ctx context.Context, key string) (string, error)

	// SetWithTTL stores a value under key, expiring after ttl.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// CompareAndReplace atomically replaces the value under key with next
	// if and only if the current value equals expected, resetting the TTL.
	// Returns false when the current value differs or the key is absent.
	CompareAndReplace(ctx context.Context, key, expected, next string, ttl time.Duration) (bool, error)

	// IncrementWithCap atomically increments the counter under key, setting
	// TTL on first use within a window. The stored counter never grows past
	// cap+1; saturated windows keep returning cap+1.
	IncrementWithCap(ctx context.Context, key string, cap int64, ttlIfNew time.Duration) (int64, error)
}
