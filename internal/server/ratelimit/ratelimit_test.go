package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket_Take(t *testing.T) {
	bucket := newTokenBucket(10, 1.0)

	for i := 0; i < 10; i++ {
		allowed, remaining, _ := bucket.take()
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 9-i, remaining)
	}

	allowed, remaining, reset := bucket.take()
	assert.False(t, allowed)
	assert.Zero(t, remaining)
	assert.True(t, reset.After(time.Now()))
}

func TestTokenBucket_Refill(t *testing.T) {
	bucket := newTokenBucket(2, 1.0)
	bucket.take()
	bucket.take()

	bucket.mu.Lock()
	bucket.lastRefill = bucket.lastRefill.Add(-1100 * time.Millisecond)
	bucket.mu.Unlock()

	allowed, _, _ := bucket.take()
	assert.True(t, allowed)
	allowed, _, _ = bucket.take()
	assert.False(t, allowed)
}

func testConfig(limit int) *Config {
	return &Config{Enabled: true, DefaultLimit: limit, DefaultWindow: time.Minute}
}

func TestMemoryLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	limiter := NewMemoryLimiter(testConfig(10))
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info, err := limiter.Allow(ctx, "127.0.0.1", "/jobs", "GET")
		require.NoError(t, err)
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info, err := limiter.Allow(ctx, "127.0.0.1", "/jobs", "GET")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, info.Remaining)
	assert.Positive(t, info.RetryAfter)

	allowed, _, _ = limiter.Allow(ctx, "10.0.0.2", "/jobs", "GET")
	assert.True(t, allowed, "clients are limited independently")
}

func TestMemoryLimiter_Disabled(t *testing.T) {
	limiter := NewMemoryLimiter(NewConfig(0, time.Minute))
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		allowed, info, _ := limiter.Allow(context.Background(), "127.0.0.1", "/jobs", "GET")
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
}

func TestMemoryLimiter_EndpointSpecific(t *testing.T) {
	ctx := context.Background()
	limiter := NewMemoryLimiter(NewConfig(1000, time.Minute))
	defer limiter.Stop()

	allowed, info, _ := limiter.Allow(ctx, "127.0.0.1", "/jobs/analyze-all", "POST")
	require.True(t, allowed)
	assert.Equal(t, 5, info.Limit)

	allowed, _, _ = limiter.Allow(ctx, "127.0.0.1", "/jobs/analyze-all", "POST")
	assert.False(t, allowed, "burst of one")

	allowed, info, _ = limiter.Allow(ctx, "127.0.0.1", "/jobs/"+"abc"+"/analyze", "POST")
	assert.True(t, allowed)
	assert.Equal(t, 60, info.Limit)

	allowed, info, _ = limiter.Allow(ctx, "127.0.0.1", "/health", "GET")
	assert.True(t, allowed)
	assert.Zero(t, info.Limit)
}

func TestMemoryLimiter_Concurrent(t *testing.T) {
	limiter := NewMemoryLimiter(testConfig(100))
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, _, _ := limiter.Allow(context.Background(), "127.0.0.1", "/jobs", "GET")
			if allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, allowedCount, 100)
	assert.LessOrEqual(t, allowedCount, 101)
}

func TestMemoryLimiter_EvictIdle(t *testing.T) {
	limiter := NewMemoryLimiter(testConfig(10))
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		_, _, _ = limiter.Allow(context.Background(), fmt.Sprintf("10.0.0.%d", i), "/jobs", "GET")
	}
	limiter.evictIdle(time.Now().Add(time.Minute))

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Empty(t, limiter.buckets)
	assert.Empty(t, limiter.lastAccess)
}

func TestMemoryLimiter_StopTwice(t *testing.T) {
	limiter := NewMemoryLimiter(nil)
	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()
	tests := []struct {
		name      string
		path      string
		method    string
		wantLimit int
		wantNil   bool
	}{
		{"exact wins over prefix", "/jobs/import", "POST", 30, false},
		{"prefix", "/jobs/123/analyze", "POST", 60, false},
		{"exact collection path", "/jobs", "POST", 100, false},
		{"health unlimited", "/health", "GET", 0, false},
		{"reads use default", "/jobs", "GET", 0, true},
		{"method must match", "/resumes/1", "GET", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantLimit, got.Limit)
		})
	}
}

type fakeRedis struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
	keys   []string
}

func (f *fakeRedis) Eval(ctx context.Context, _ string, keys []string, _ ...any) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.keys = append(f.keys, keys[0])
	f.counts[keys[0]]++
	cmd.SetVal([]any{f.counts[keys[0]], int64(42)})
	return cmd
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRedis{}
	limiter := newRedisLimiter(fake, testConfig(3))

	for i := 0; i < 3; i++ {
		allowed, info, err := limiter.Allow(ctx, "127.0.0.1", "/jobs", "GET")
		require.NoError(t, err)
		require.True(t, allowed)
		assert.Equal(t, 2-i, info.Remaining)
	}

	allowed, info, err := limiter.Allow(ctx, "127.0.0.1", "/jobs", "GET")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, info.Remaining)
	assert.GreaterOrEqual(t, info.RetryAfter, time.Second)
	assert.Equal(t, KeyPrefix+"127.0.0.1:/jobs:GET", fake.keys[0])
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	limiter := newRedisLimiter(&fakeRedis{err: errors.New("connection refused")}, testConfig(1))

	allowed, _, err := limiter.Allow(context.Background(), "127.0.0.1", "/jobs", "GET")
	assert.True(t, allowed)
	assert.Error(t, err)
}

func TestRedisLimiter_UnlimitedSkipsRedis(t *testing.T) {
	fake := &fakeRedis{}
	limiter := newRedisLimiter(fake, testConfig(1))

	allowed, _, err := limiter.Allow(context.Background(), "127.0.0.1", "/health", "GET")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Empty(t, fake.keys)
}
