package banners

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vaporhaus/storefront-backend/pkg/db/dbtest"
	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
)

func TestBannerLifecycle(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewService(client.DB())
	require.NoError(t, err)
	ctx := context.Background()

	hero, err := svc.Create(ctx, Input{Title: "Summer sale", ImageURL: "https://cdn.example/hero.jpg", Active: true, Position: 1})
	require.NoError(t, err)
	draft, err := svc.Create(ctx, Input{Title: "Draft", ImageURL: "https://cdn.example/draft.jpg", Active: false})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Input{Title: "First", ImageURL: "https://cdn.example/first.jpg", Active: true, Position: 0})
	require.NoError(t, err)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, "First", active[0].Title)

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 3)

	updated, err := svc.Update(ctx, draft.ID, Input{Title: "Live now", ImageURL: "https://cdn.example/draft.jpg", Active: true, Position: 2})
	require.NoError(t, err)
	require.True(t, updated.Active)

	got, err := svc.Get(ctx, hero.ID)
	require.NoError(t, err)
	require.Equal(t, "Summer sale", got.Title)

	require.NoError(t, svc.Delete(ctx, hero.ID))
	require.True(t, pkgerrors.Is(svc.Delete(ctx, hero.ID), pkgerrors.CodeNotFound))
	_, err = svc.Update(ctx, uuid.New(), Input{Title: "x", ImageURL: "https://x.io/a.png"})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}
