package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/heimdall-auth/heimdall/core"
	"github.com/heimdall-auth/heimdall/ports"
)

type entry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// MemoryCache implements the Cache port with an in-process map.
// Intended for tests and single-node development; entries expire lazily
// on access, which is enough because TTL expiry only ever has to hide
// entries, never free memory promptly.
type MemoryCache struct {
	mu    sync.Mutex
	data  map[string]entry
	clock ports.Clock
}

// NewMemoryCache creates a new MemoryCache
func NewMemoryCache(clock ports.Clock) *MemoryCache {
	return &MemoryCache{
		data:  make(map[string]entry),
		clock: clock,
	}
}

// Get retrieves a value by key
func (c *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.live(key)
	if !ok {
		return "", core.ErrCacheMiss
	}
	return e.value, nil
}

// SetWithTTL stores a value under key with an expiration
func (c *MemoryCache) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = entry{value: value, expiresAt: c.clock.Now().Add(ttl)}
	return nil
}

// Delete removes a key
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
	return nil
}

// CompareAndReplace atomically replaces the value under key when it equals expected
func (c *MemoryCache) CompareAndReplace(ctx context.Context, key, expected, next string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.live(key)
	if !ok || e.value != expected {
		return false, nil
	}
	c.data[key] = entry{value: next, expiresAt: c.clock.Now().Add(ttl)}
	return true, nil
}

// IncrementWithCap atomically increments the counter under key, bounded at cap+1
func (c *MemoryCache) IncrementWithCap(ctx context.Context, key string, cap int64, ttlIfNew time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.live(key)
	if !ok {
		c.data[key] = entry{value: "1", expiresAt: c.clock.Now().Add(ttlIfNew)}
		return 1, nil
	}

	count, _ := strconv.ParseInt(e.value, 10, 64)
	if count > cap {
		return count, nil
	}
	count++
	c.data[key] = entry{value: strconv.FormatInt(count, 10), expiresAt: e.expiresAt}
	return count, nil
}

// live returns the entry for key, dropping it when expired.
// Callers must hold the mutex.
func (c *MemoryCache) live(key string) (entry, bool) {
	e, ok := c.data[key]
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !c.clock.Now().Before(e.expiresAt) {
		delete(c.data, key)
		return entry{}, false
	}
	return e, true
}
