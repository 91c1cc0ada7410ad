package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
	"github.com/vaporhaus/storefront-backend/pkg/redis"
)

type stubLookup struct {
	products map[uuid.UUID]models.Product
}

func (s stubLookup) Lookup(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &p, nil
}

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	store, err := NewStore(redis.NewFromClient(raw), time.Hour)
	require.NoError(t, err)
	return store, mr
}

func TestStoreRoundTripAndSlidingTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	c, err := store.Create(ctx)
	require.NoError(t, err)
	key := "sf:cart:" + c.ID
	require.True(t, mr.Exists(key))

	mr.FastForward(50 * time.Minute)
	c.AddToCart(plainProduct(500, nil), Selection{})
	require.NoError(t, store.Save(ctx, c))
	require.Equal(t, time.Hour, mr.TTL(key))

	loaded, err := store.Load(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	require.Equal(t, 500, loaded.Total())

	mr.FastForward(2 * time.Hour)
	_, err = store.Load(ctx, c.ID)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	_, err = store.Load(ctx, "not-a-uuid")
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestNewStoreValidates(t *testing.T) {
	_, err := NewStore(nil, time.Hour)
	require.Error(t, err)
	store, _ := newTestStore(t)
	_, err = NewStore(store.redis, 0)
	require.Error(t, err)
}

func TestServiceFlow(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	pod := plainProduct(1799, nil)
	salt := plainProduct(999, nil)
	svc, err := NewService(store, stubLookup{products: map[uuid.UUID]models.Product{pod.ID: pod, salt.ID: salt}}, nil, nil)
	require.NoError(t, err)

	view, err := svc.Create(ctx)
	require.NoError(t, err)
	require.Zero(t, view.Total)

	_, err = svc.AddItem(ctx, view.ID, AddItemInput{ProductID: pod.ID})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, view.ID, AddItemInput{ProductID: pod.ID})
	require.NoError(t, err)
	view, err = svc.AddItem(ctx, view.ID, AddItemInput{ProductID: salt.ID})
	require.NoError(t, err)
	require.Equal(t, 4597, view.Total)
	require.Equal(t, 3, view.ItemCount)

	_, err = svc.AddItem(ctx, view.ID, AddItemInput{ProductID: uuid.New()})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	lineID := view.Items[0].LineID
	view, err = svc.UpdateItem(ctx, view.ID, lineID, 1)
	require.NoError(t, err)
	require.Equal(t, 1799+999, view.Total)

	_, err = svc.UpdateItem(ctx, view.ID, lineID, 0)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	view, err = svc.RemoveItem(ctx, view.ID, lineID)
	require.NoError(t, err)
	require.Equal(t, 999, view.Total)

	view, err = svc.Clear(ctx, view.ID)
	require.NoError(t, err)
	require.Zero(t, view.ItemCount)

	got, err := svc.Get(ctx, view.ID)
	require.NoError(t, err)
	require.Empty(t, got.Items)
}

func TestNewServiceRequiresDeps(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := NewService(nil, stubLookup{}, nil, nil)
	require.Error(t, err)
	_, err = NewService(store, nil, nil, nil)
	require.Error(t, err)
}
