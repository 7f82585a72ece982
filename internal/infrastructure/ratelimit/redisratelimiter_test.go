package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	client.FlushDB(ctx)

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})

	return client
}

func TestRedisRateLimiter_Allow_PerMinute(t *testing.T) {
	limiter := NewRedisRateLimiter(setupTestRedis(t))
	ctx := context.Background()
	limit := Limit{PerMinute: 5}

	for i := 0; i < 5; i++ {
		allowed, err := limiter.Allow(ctx, "confirm:1", limit)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := limiter.Allow(ctx, "confirm:1", limit)
	require.NoError(t, err)
	assert.False(t, allowed, "6th request should be denied")
}

func TestRedisRateLimiter_Allow_DifferentKeys(t *testing.T) {
	limiter := NewRedisRateLimiter(setupTestRedis(t))
	ctx := context.Background()
	limit := Limit{PerMinute: 2}

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, "confirm:1", limit)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, "confirm:1", limit)
	require.NoError(t, err)
	assert.False(t, allowed, "first key should be limited")

	allowed, err = limiter.Allow(ctx, "confirm:2", limit)
	require.NoError(t, err)
	assert.True(t, allowed, "second key should not be affected")
}

func TestRedisRateLimiter_CountAndReset(t *testing.T) {
	limiter := NewRedisRateLimiter(setupTestRedis(t))
	ctx := context.Background()
	limit := Limit{PerMinute: 2}

	count, err := limiter.Count(ctx, "confirm:3", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	for i := 0; i < 3; i++ {
		_, err := limiter.Allow(ctx, "confirm:3", limit)
		require.NoError(t, err)
	}

	count, err = limiter.Count(ctx, "confirm:3", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.NoError(t, limiter.Reset(ctx, "confirm:3"))

	allowed, err := limiter.Allow(ctx, "confirm:3", limit)
	require.NoError(t, err)
	assert.True(t, allowed, "should be allowed after reset")
}

func TestRedisRateLimiter_ZeroLimits(t *testing.T) {
	limiter := NewRedisRateLimiter(setupTestRedis(t))

	allowed, err := limiter.Allow(context.Background(), "confirm:4", Limit{})
	require.NoError(t, err)
	assert.True(t, allowed, "zero limits should allow all requests")
}
