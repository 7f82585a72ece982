package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizcard/internal/application/payment/paymentgateway"
	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/shared/logger"
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

func TestRedisIntentStatusCache_SetGet(t *testing.T) {
	c := NewRedisIntentStatusCache(setupTestRedis(t), time.Minute, logger.NewNopLogger())
	ctx := context.Background()

	got, err := c.Get(ctx, "pi_missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	status := &paymentgateway.IntentStatus{
		IntentRef:     "pi_1",
		GatewayStatus: "succeeded",
		Outcome:       vo.OutcomeSucceeded,
		Metadata:      map[string]string{paymentgateway.MetadataPaymentRecordID: "42"},
	}
	require.NoError(t, c.Set(ctx, status))

	got, err = c.Get(ctx, "pi_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, status, got)

	require.NoError(t, c.Invalidate(ctx, "pi_1"))
	got, err = c.Get(ctx, "pi_1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisIntentStatusCache_Expires(t *testing.T) {
	c := NewRedisIntentStatusCache(setupTestRedis(t), 100*time.Millisecond, logger.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &paymentgateway.IntentStatus{IntentRef: "pi_2", Outcome: vo.OutcomePending}))
	time.Sleep(300 * time.Millisecond)

	got, err := c.Get(ctx, "pi_2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisIntentStatusCache_DropsCorruptEntry(t *testing.T) {
	client := setupTestRedis(t)
	c := NewRedisIntentStatusCache(client, time.Minute, logger.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, intentStatusKeyPrefix+"pi_3", "not-json", time.Minute).Err())

	got, err := c.Get(ctx, "pi_3")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, int64(0), client.Exists(ctx, intentStatusKeyPrefix+"pi_3").Val())
}
