package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bizcard/internal/application/payment/paymentgateway"
	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/shared/logger"
)

const (
	intentStatusKeyPrefix  = "payment:intent_status:"
	defaultIntentStatusTTL = 2 * time.Second
)

type cachedIntentStatus struct {
	IntentRef     string            `json:"intent_ref"`
	GatewayStatus string            `json:"gateway_status"`
	Outcome       vo.Outcome        `json:"outcome"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// RedisIntentStatusCache keeps recently fetched gateway intent statuses so
// clients polling the same payment share one gateway call per TTL.
type RedisIntentStatusCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger logger.Interface
}

func NewRedisIntentStatusCache(client redis.UniversalClient, ttl time.Duration, log logger.Interface) *RedisIntentStatusCache {
	if ttl <= 0 {
		ttl = defaultIntentStatusTTL
	}
	return &RedisIntentStatusCache{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

// Get returns nil without error on a miss.
func (c *RedisIntentStatusCache) Get(ctx context.Context, intentRef string) (*paymentgateway.IntentStatus, error) {
	data, err := c.client.Get(ctx, c.buildKey(intentRef)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read intent status from redis: %w", err)
	}

	var cached cachedIntentStatus
	if err := json.Unmarshal(data, &cached); err != nil {
		c.logger.Warnw("dropping unreadable intent status cache entry", "intent_ref", intentRef, "error", err)
		_ = c.client.Del(ctx, c.buildKey(intentRef)).Err()
		return nil, nil
	}

	return &paymentgateway.IntentStatus{
		IntentRef:     cached.IntentRef,
		GatewayStatus: cached.GatewayStatus,
		Outcome:       cached.Outcome,
		FailureReason: cached.FailureReason,
		Metadata:      cached.Metadata,
	}, nil
}

func (c *RedisIntentStatusCache) Set(ctx context.Context, status *paymentgateway.IntentStatus) error {
	data, err := json.Marshal(cachedIntentStatus{
		IntentRef:     status.IntentRef,
		GatewayStatus: status.GatewayStatus,
		Outcome:       status.Outcome,
		FailureReason: status.FailureReason,
		Metadata:      status.Metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal intent status: %w", err)
	}

	if err := c.client.Set(ctx, c.buildKey(status.IntentRef), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store intent status in redis: %w", err)
	}
	return nil
}

func (c *RedisIntentStatusCache) Invalidate(ctx context.Context, intentRef string) error {
	return c.client.Del(ctx, c.buildKey(intentRef)).Err()
}

func (c *RedisIntentStatusCache) buildKey(intentRef string) string {
	return intentStatusKeyPrefix + intentRef
}
