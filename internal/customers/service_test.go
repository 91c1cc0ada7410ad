package customers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vaporhaus/storefront-backend/pkg/db/dbtest"
	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
)

func TestCustomerLifecycle(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()))
	require.NoError(t, err)
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Name: " Asha ", Email: "ASHA@example.com", Phone: "999"})
	require.NoError(t, err)
	require.Equal(t, "Asha", created.Name)
	require.Equal(t, "asha@example.com", created.Email)

	_, err = svc.Create(ctx, Input{Name: "Other", Email: "asha@example.com"})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict))

	updated, err := svc.Update(ctx, created.ID, Input{Name: "Asha R", Email: "asha@example.com", TotalOrders: 2, TotalSpent: 4597})
	require.NoError(t, err)
	require.Equal(t, 4597, updated.TotalSpent)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Asha R", got.Name)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.True(t, pkgerrors.Is(svc.Delete(ctx, created.ID), pkgerrors.CodeNotFound))
	_, err = svc.Get(ctx, created.ID)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
	_, err = svc.Update(ctx, uuid.New(), Input{Name: "x", Email: "x@y.io"})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestListSearchesNewestFirst(t *testing.T) {
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()))
	require.NoError(t, err)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"Asha", "Ravi", "Meera"} {
		require.NoError(t, client.DB().Create(&models.Customer{
			Name:      name,
			Email:     name + "@x.io",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}).Error)
	}

	page, err := svc.List(context.Background(), ListParams{})
	require.NoError(t, err)
	require.EqualValues(t, 3, page.Total)
	require.Equal(t, "Meera", page.Items[0].Name)

	page, err = svc.List(context.Background(), ListParams{Search: "ravi"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
}
