package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/vaporhaus/storefront-backend/pkg/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	return NewFromClient(raw), mr
}

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)

	allowed, count, err := client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	require.True(t, allowed)
	require.EqualValues(t, 1, count)
	require.True(t, mr.TTL(client.RateLimitKey("login:ip:1.2.3.4")) > 0)

	allowed, count, err = client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	require.True(t, allowed)
	require.EqualValues(t, 2, count)

	allowed, _, err = client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	require.False(t, allowed)

	mr.FastForward(2 * time.Minute)
	allowed, count, err = client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	require.True(t, allowed)
	require.EqualValues(t, 1, count)
}

func TestCartKeyRoundTripWithTTL(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)
	key := client.CartKey("cart-1")
	require.Equal(t, "sf:cart:cart-1", key)

	require.NoError(t, client.Set(ctx, key, []byte(`{"items":[]}`), time.Hour))
	raw, err := client.GetBytes(ctx, key)
	require.NoError(t, err)
	require.JSONEq(t, `{"items":[]}`, string(raw))

	ok, err := client.Expire(ctx, key, 2*time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2*time.Hour, mr.TTL(key))

	require.NoError(t, client.Del(ctx, key))
	_, err = client.GetBytes(ctx, key)
	require.True(t, errors.Is(err, Nil))

	exists, err := client.Exists(ctx, key)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestSetNXOnlyOnce(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)
	key := client.IdempotencyKey("checkout", "abc")

	first, err := client.SetNX(ctx, key, "1", time.Minute)
	require.NoError(t, err)
	require.True(t, first)

	second, err := client.SetNX(ctx, key, "1", time.Minute)
	require.NoError(t, err)
	require.False(t, second)
}

func TestZeroClientReturnsNotInitialized(t *testing.T) {
	var client *Client
	require.ErrorIs(t, client.Ping(context.Background()), ErrNotInitialized)
	require.NoError(t, client.Close())
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/3", PoolSize: 7})
	require.NoError(t, err)
	require.Equal(t, 3, opts.DB)
	require.Equal(t, 7, opts.PoolSize)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6379", DB: 2})
	require.NoError(t, err)
	require.Equal(t, "cache:6379", opts.Addr)
	require.Equal(t, 2, opts.DB)
}

func TestCompareAndDeleteOnlyMatchingValue(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)
	require.NoError(t, client.Set(ctx, "sf:lock", "holder-a", time.Minute))

	deleted, err := client.CompareAndDelete(ctx, "sf:lock", "holder-b")
	require.NoError(t, err)
	require.False(t, deleted)
	require.True(t, mr.Exists("sf:lock"))

	deleted, err = client.CompareAndDelete(ctx, "sf:lock", "holder-a")
	require.NoError(t, err)
	require.True(t, deleted)
	require.False(t, mr.Exists("sf:lock"))

	deleted, err = client.CompareAndDelete(ctx, "sf:lock", "holder-a")
	require.NoError(t, err)
	require.False(t, deleted)
}
