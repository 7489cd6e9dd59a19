package notify

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopstate/internal/models"
	"github.com/Skotchmaster/shopstate/internal/store"
)

func TestEventForKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  store.Key
		want Event
		ok   bool
	}{
		{store.KeyCart, CartUpdated, true},
		{store.KeyLikes, LikesUpdated, true},
		{store.KeySaved, SavesUpdated, true},
		{store.KeyOrders, "", false},
		{store.KeyUser, "", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.key), func(t *testing.T) {
			t.Parallel()
			got, ok := EventForKey(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			if ok {
				assert.Equal(t, tt.key, got.Key())
			}
		})
	}
}

func TestNotifier_EmitAndUnsubscribe(t *testing.T) {
	t.Parallel()

	n := New()
	var order []string
	unsubA := n.OnChange(CartUpdated, func() { order = append(order, "a") })
	n.OnChange(CartUpdated, func() { order = append(order, "b") })
	n.OnChange(LikesUpdated, func() { order = append(order, "likes") })

	n.Emit(CartUpdated)
	assert.Equal(t, []string{"a", "b"}, order)

	unsubA()
	unsubA()
	order = nil
	n.Emit(CartUpdated)
	assert.Equal(t, []string{"b"}, order)

	order = nil
	n.Emit(SavesUpdated)
	assert.Empty(t, order)
}

func TestNotifier_IgnoresOwnOrigin(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	n := NewWithOrigin("tab-a")
	n.Attach(hub)

	calls := 0
	n.OnChange(CartUpdated, func() { calls++ })

	n.StorageChanged(context.Background(), store.KeyCart)
	assert.Zero(t, calls)

	require.NoError(t, hub.Publish(context.Background(), StorageChange{Key: store.KeyCart, Origin: "tab-b"}))
	assert.Equal(t, 1, calls)
}

func TestNotifier_StorageHandlersSeeUnmappedKeys(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	n := New()
	n.Attach(hub)

	var keys []store.Key
	n.OnStorage(func(k store.Key) { keys = append(keys, k) })

	require.NoError(t, hub.Publish(context.Background(), StorageChange{Key: store.KeyOrders, Origin: "other"}))
	assert.Equal(t, []store.Key{store.KeyOrders}, keys)
}

func TestNotifier_Detach(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	n := New()
	n.Attach(hub)

	calls := 0
	n.OnChange(LikesUpdated, func() { calls++ })
	n.Detach()

	require.NoError(t, hub.Publish(context.Background(), StorageChange{Key: store.KeyLikes, Origin: "other"}))
	assert.Zero(t, calls)
}

func TestTwoTabsConverge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := store.NewMemoryBackend()
	hub := NewHub()

	tabA, tabB := New(), New()
	tabA.Attach(hub)
	tabB.Attach(hub)

	storeA := store.New(backend)
	storeA.Sink = tabA
	storeB := store.New(backend)
	storeB.Sink = tabB

	var seen []models.CartLine
	tabB.OnChange(CartUpdated, func() {
		lines, err := store.ReadList[models.CartLine](ctx, storeB, store.KeyCart)
		require.NoError(t, err)
		seen = lines
	})

	line := models.CartLine{ID: "p1", Name: "Tee", Price: decimal.NewFromInt(20), Quantity: 2}
	require.NoError(t, store.WriteList(ctx, storeA, store.KeyCart, []models.CartLine{line}))
	tabA.Emit(CartUpdated)

	require.Len(t, seen, 1)
	assert.Equal(t, "p1", seen[0].ID)
	assert.Equal(t, 2, seen[0].Quantity)
	assert.True(t, seen[0].Price.Equal(decimal.NewFromInt(20)))
}
