package app

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopstate/internal/models"
	"github.com/Skotchmaster/shopstate/internal/notify"
	"github.com/Skotchmaster/shopstate/internal/store"
)

func TestTabsShareStateThroughHub(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := store.NewMemoryBackend()
	hub := notify.NewHub()

	tabA, err := New(Options{Backend: backend, Broadcaster: hub, ShippingCost: decimal.NewFromInt(10)})
	require.NoError(t, err)
	defer tabA.Close()
	tabB, err := New(Options{Backend: backend, Broadcaster: hub, ShippingCost: decimal.NewFromInt(10)})
	require.NoError(t, err)
	defer tabB.Close()

	badge := 0
	tabB.Notifier.OnChange(notify.CartUpdated, func() {
		n, err := tabB.Cart.Count(ctx)
		require.NoError(t, err)
		badge = n
	})

	p, err := tabA.Catalog.FindByID(ctx, "1")
	require.NoError(t, err)
	_, err = tabA.Cart.AddItem(ctx, *p, 3, "M", "White")
	require.NoError(t, err)

	assert.Equal(t, 3, badge)
}

func TestReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s, err := New(Options{})
	require.NoError(t, err)

	p, err := s.Catalog.FindByID(ctx, "2")
	require.NoError(t, err)
	_, err = s.Wishlist.ToggleLike(ctx, *p)
	require.NoError(t, err)
	_, err = s.Cart.AddItem(ctx, *p, 1, "", "")
	require.NoError(t, err)

	likesEvents := 0
	s.Notifier.OnChange(notify.LikesUpdated, func() { likesEvents++ })

	require.NoError(t, s.Reset(ctx))
	assert.Equal(t, 1, likesEvents)

	likes, err := s.Wishlist.Likes(ctx)
	require.NoError(t, err)
	assert.Empty(t, likes)

	n, err := s.Cart.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "cart is not part of the default reset")

	require.NoError(t, s.Reset(ctx, store.KeyCart))
	n, err = s.Cart.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	s, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, "100", s.CartPricing.FreeShippingThreshold.String())
	assert.Equal(t, "0.08", s.CartPricing.TaxRate.String())
	assert.NotEmpty(t, s.Catalog.Static)
	assert.NotEmpty(t, s.Notifier.Origin())

	s, err = New(Options{Origin: "tab-a"})
	require.NoError(t, err)
	assert.Equal(t, "tab-a", s.Notifier.Origin())
}

func TestNew_ExplicitZeroPricingIsKept(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	zero := decimal.Zero
	s, err := New(Options{ShippingCost: decimal.NewFromInt(10), FreeShippingThreshold: &zero, TaxRate: &zero})
	require.NoError(t, err)
	assert.True(t, s.CartPricing.TaxRate.IsZero())
	assert.True(t, s.CartPricing.FreeShippingThreshold.IsZero())

	_, err = s.Cart.AddItem(ctx, models.Product{ID: "p", Name: "Pin", Price: decimal.NewFromInt(5)}, 1, "", "")
	require.NoError(t, err)
	totals, err := s.Cart.Totals(ctx, s.CartPricing, "")
	require.NoError(t, err)
	assert.True(t, totals.Tax.IsZero(), "tax-free deployment charges no tax")
	assert.True(t, totals.Shipping.IsZero(), "threshold 0 ships everything free")
	assert.Equal(t, "5", totals.Total.String())
}
