package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/heimdall-auth/heimdall/core"
)

// compareAndReplaceScript swaps the stored value only when it still equals
// the expected one. Running it server-side closes the race where two
// requests present the same refresh token concurrently.
const compareAndReplaceScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
  return 1
end
return 0
`

// incrementWithCapScript counts attempts within a fixed window. The first
// hit arms the window TTL; a saturated counter is returned as-is so it
// never grows past cap+1.
const incrementWithCapScript = `
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current > tonumber(ARGV[1]) then
  return current
end
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return count
`

var (
	compareAndReplaceLua = redis.NewScript(compareAndReplaceScript)
	incrementWithCapLua  = redis.NewScript(incrementWithCapScript)
)

// RedisCache is the Redis implementation of the Cache port
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache creates a new Redis cache adapter
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

// Get retrieves a value by key
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", core.ErrCacheMiss
		}
		return "", fmt.Errorf("%w: %v", core.ErrInfrastructure, err)
	}
	return value, nil
}

// SetWithTTL stores a value under key with an expiration
func (c *RedisCache) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInfrastructure, err)
	}
	return nil
}

// Delete removes a key
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInfrastructure, err)
	}
	return nil
}

// CompareAndReplace atomically replaces the value under key when it equals expected
func (c *RedisCache) CompareAndReplace(ctx context.Context, key, expected, next string, ttl time.Duration) (bool, error) {
	res, err := compareAndReplaceLua.Run(ctx, c.client, []string{key}, expected, next, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", core.ErrInfrastructure, err)
	}
	return res == 1, nil
}

// IncrementWithCap atomically increments the counter under key, bounded at cap+1
func (c *RedisCache) IncrementWithCap(ctx context.Context, key string, cap int64, ttlIfNew time.Duration) (int64, error) {
	count, err := incrementWithCapLua.Run(ctx, c.client, []string{key}, cap, ttlIfNew.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrInfrastructure, err)
	}
	return count, nil
}
