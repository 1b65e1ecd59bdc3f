package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces rate limit counters in Redis.
const KeyPrefix = "knotic:rl:"

// fixedWindowScript increments the counter and starts its TTL on the first
// hit of a window. Returns {count, ttl}.
const fixedWindowScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

type evaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

// RedisLimiter counts requests in fixed windows shared by every server
// instance. Burst is ignored; Limit requests are allowed per Window.
type RedisLimiter struct {
	client evaler
	config *Config
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter creates a RedisLimiter. A nil config uses DefaultConfig.
func NewRedisLimiter(client *redis.Client, config *Config) *RedisLimiter {
	return newRedisLimiter(client, config)
}

func newRedisLimiter(client evaler, config *Config) *RedisLimiter {
	if config == nil {
		config = DefaultConfig()
	}
	return &RedisLimiter{client: client, config: config}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, clientID, endpoint, method string) (bool, Info, error) {
	ec := l.config.resolve(endpoint, method)
	if ec == nil {
		return true, Info{Allowed: true}, nil
	}

	windowSeconds := max(int(ec.Window.Seconds()), 1)
	key := KeyPrefix + bucketKey(clientID, endpoint, method)

	res, err := l.client.Eval(ctx, fixedWindowScript, []string{key}, windowSeconds).Result()
	if err != nil {
		return true, Info{Allowed: true}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}
	arr, ok := res.([]any)
	if !ok || len(arr) < 2 {
		return true, Info{Allowed: true}, fmt.Errorf("unexpected redis rate limit result %T", res)
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)
	if ttl < 0 {
		ttl = int64(windowSeconds)
	}

	resetTime := time.Now().Add(time.Duration(ttl) * time.Second)
	info := Info{
		Allowed:   int(count) <= ec.Limit,
		Limit:     ec.Limit,
		Remaining: max(ec.Limit-int(count), 0),
		ResetTime: resetTime,
	}
	if !info.Allowed {
		info.RetryAfter = max(time.Until(resetTime), time.Second)
	}
	return info.Allowed, info, nil
}

// Stop is a no-op; the Redis client is owned by the caller.
func (l *RedisLimiter) Stop() {}
