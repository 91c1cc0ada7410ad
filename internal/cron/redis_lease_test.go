package cron

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/vaporhaus/storefront-backend/pkg/redis"
)

func newMiniStore(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	return mr, redis.NewFromClient(raw)
}

func TestRedisLockOnlyOwnerReleases(t *testing.T) {
	ctx := context.Background()
	mr, store := newMiniStore(t)
	const key = "sf:cron-worker:lock:test"

	first, err := NewRedisLock(store, key, 0)
	require.NoError(t, err)
	second, err := NewRedisLock(store, key, 0)
	require.NoError(t, err)

	won, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, won)
	require.Equal(t, defaultLockTTL, mr.TTL(key))

	won, err = second.Acquire(ctx)
	require.NoError(t, err)
	require.False(t, won)

	require.NoError(t, second.Release(ctx))
	require.True(t, mr.Exists(key))

	require.NoError(t, first.Release(ctx))
	require.False(t, mr.Exists(key))
}

func TestRedisLockExpiredKeyTakenByOther(t *testing.T) {
	ctx := context.Background()
	mr, store := newMiniStore(t)
	const key = "sf:cron-worker:lock:test"

	stale, err := NewRedisLock(store, key, time.Minute)
	require.NoError(t, err)
	fresh, err := NewRedisLock(store, key, time.Minute)
	require.NoError(t, err)

	won, err := stale.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, won)

	mr.FastForward(2 * time.Minute)
	won, err = fresh.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, won)

	// The stale holder must not delete the new owner's key.
	require.NoError(t, stale.Release(ctx))
	require.True(t, mr.Exists(key))
}

func TestNewRedisLockValidation(t *testing.T) {
	_, err := NewRedisLock(nil, "k", 0)
	require.Error(t, err)

	_, store := newMiniStore(t)
	_, err = NewRedisLock(store, "", 0)
	require.Error(t, err)
}

func TestRedisGateClaimsOncePerCadence(t *testing.T) {
	ctx := context.Background()
	mr, store := newMiniStore(t)
	gate, err := NewRedisGate(store, "sf:cron-worker:ran:test:")
	require.NoError(t, err)

	claimed, err := gate.Claim(ctx, "outbox-retention", time.Hour)
	require.NoError(t, err)
	require.True(t, claimed)
	require.Equal(t, time.Hour, mr.TTL("sf:cron-worker:ran:test:outbox-retention"))

	claimed, err = gate.Claim(ctx, "outbox-retention", time.Hour)
	require.NoError(t, err)
	require.False(t, claimed)

	mr.FastForward(time.Hour + time.Second)
	claimed, err = gate.Claim(ctx, "outbox-retention", time.Hour)
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, gate.Forget(ctx, "outbox-retention"))
	claimed, err = gate.Claim(ctx, "outbox-retention", time.Hour)
	require.NoError(t, err)
	require.True(t, claimed)
}
