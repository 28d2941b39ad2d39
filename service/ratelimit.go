package service

import (
	"context"
	"fmt"
	"time"

	"github.com/heimdall-auth/heimdall/core"
	"github.com/heimdall-auth/heimdall/ports"
)

// RateLimiter bounds attempts per identifier within a fixed window aligned
// to first use. The counter increment is atomic in the cache: racing
// requests may overcount by one, never undercount.
type RateLimiter struct {
	cache ports.Cache
}

// NewRateLimiter creates a new RateLimiter
func NewRateLimiter(cache ports.Cache) *RateLimiter {
	return &RateLimiter{cache: cache}
}

// Consume charges one attempt against identifier. Returns
// core.ErrRateLimited once more than limit attempts land inside the same
// window. The stored counter stays bounded at limit+1.
func (l *RateLimiter) Consume(ctx context.Context, identifier string, limit int64, window time.Duration) error {
	count, err := l.cache.IncrementWithCap(ctx, rateLimitKey(identifier), limit, window)
	if err != nil {
		return fmt.Errorf("failed to consume rate limit: %w", err)
	}
	if count > limit {
		return core.ErrRateLimited
	}
	return nil
}
