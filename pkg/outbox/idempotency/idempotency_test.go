package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/vaporhaus/storefront-backend/pkg/redis"
)

func newManager(t *testing.T, ttl time.Duration) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	m, err := NewManager(redis.NewFromClient(raw), ttl)
	require.NoError(t, err)
	return m, mr
}

func TestCheckAndMarkProcessed(t *testing.T) {
	ctx := context.Background()
	m, mr := newManager(t, 24*time.Hour)
	eventID := uuid.New()

	already, err := m.CheckAndMarkProcessed(ctx, "order-notifications", eventID)
	require.NoError(t, err)
	require.False(t, already)

	key := "sf:idempotency:evt:order-notifications:" + eventID.String()
	require.True(t, mr.Exists(key))
	require.Equal(t, 24*time.Hour, mr.TTL(key))

	already, err = m.CheckAndMarkProcessed(ctx, "order-notifications", eventID)
	require.NoError(t, err)
	require.True(t, already)

	other, err := m.CheckAndMarkProcessed(ctx, "another-consumer", eventID)
	require.NoError(t, err)
	require.False(t, other)
}

func TestReleaseAllowsRetry(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t, time.Hour)
	eventID := uuid.New()

	_, err := m.CheckAndMarkProcessed(ctx, "c", eventID)
	require.NoError(t, err)
	require.NoError(t, m.Release(ctx, "c", eventID))

	already, err := m.CheckAndMarkProcessed(ctx, "c", eventID)
	require.NoError(t, err)
	require.False(t, already)
}

func TestValidation(t *testing.T) {
	m, _ := newManager(t, time.Hour)
	_, err := m.CheckAndMarkProcessed(context.Background(), "", uuid.New())
	require.Error(t, err)
	_, err = m.CheckAndMarkProcessed(context.Background(), "c", uuid.Nil)
	require.Error(t, err)

	_, err = NewManager(nil, time.Hour)
	require.Error(t, err)
}
