package profile

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopstate/internal/models"
	"github.com/Skotchmaster/shopstate/internal/store"
)

func TestProfile_SaveAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := &ProfileService{Store: store.New(store.NewMemoryBackend())}

	u, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	saved, err := svc.Save(ctx, models.User{ID: "u1", Name: " Grace ", Email: "grace@example.com", Bio: "compilers"})
	require.NoError(t, err)
	assert.Equal(t, "Grace", saved.Name)
	assert.Equal(t, "user", saved.Role)

	u, err = svc.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, saved, *u)
}

func TestProfile_SaveRequiresName(t *testing.T) {
	t.Parallel()
	svc := &ProfileService{Store: store.New(store.NewMemoryBackend())}

	_, err := svc.Save(context.Background(), models.User{Email: "x@y.z"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProfile_Stats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := store.New(store.NewMemoryBackend())
	svc := &ProfileService{Store: st}

	require.NoError(t, store.WriteList(ctx, st, store.KeyLikes, []models.WishlistItem{{ID: "a"}, {ID: "b"}}))
	require.NoError(t, store.WriteList(ctx, st, store.KeyOrders, []models.Order{
		{OrderNumber: "ORD-1", Status: models.OrderStatusProcessing, TotalAmount: decimal.RequireFromString("53.2")},
		{OrderNumber: "ORD-2", Status: models.OrderStatusCancelled, TotalAmount: decimal.RequireFromString("10")},
	}))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Liked)
	assert.Equal(t, 0, stats.Saved)
	assert.Equal(t, 2, stats.Orders)
	assert.Equal(t, "53.2", stats.TotalSpent.String())
}
