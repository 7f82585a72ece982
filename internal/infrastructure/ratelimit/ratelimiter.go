package ratelimit

import (
	"context"
	"time"
)

// Limit caps requests per sliding window. A zero field disables that window.
type Limit struct {
	PerMinute int
	PerHour   int
}

// RateLimiter counts requests per key.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit Limit) (bool, error)
	Count(ctx context.Context, key string, window time.Duration) (int64, error)
	Reset(ctx context.Context, key string) error
}
