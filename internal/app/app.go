// Package app assembles the services of one tab around a shared store and
// notifier.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shopstate/internal/cart"
	"github.com/Skotchmaster/shopstate/internal/catalog"
	"github.com/Skotchmaster/shopstate/internal/metrics"
	"github.com/Skotchmaster/shopstate/internal/notify"
	"github.com/Skotchmaster/shopstate/internal/order"
	"github.com/Skotchmaster/shopstate/internal/profile"
	"github.com/Skotchmaster/shopstate/internal/store"
	"github.com/Skotchmaster/shopstate/internal/wishlist"
)

type Options struct {
	// Origin identifies this instance on the cross-tab channel; a random
	// one is used when empty.
	Origin      string
	Backend     store.Backend
	Broadcaster notify.Broadcaster

	Indexer     catalog.Indexer
	Publisher   order.EventPublisher
	EventsTopic string
	Gateway     order.PaymentGateway
	Metrics     *metrics.Metrics

	// ShippingCost is the flat cart-page shipping; checkout uses the
	// delivery option's cost instead.
	ShippingCost decimal.Decimal
	// FreeShippingThreshold and TaxRate fall back to the storefront
	// defaults when nil; an explicit zero is kept.
	FreeShippingThreshold *decimal.Decimal
	TaxRate               *decimal.Decimal
	CancelMode            order.CancelMode
}

type State struct {
	Store    *store.Store
	Notifier *notify.Notifier
	Metrics  *metrics.Metrics

	Cart     *cart.CartService
	Wishlist *wishlist.WishlistService
	Catalog  *catalog.CatalogService
	Orders   *order.OrderService
	Profile  *profile.ProfileService

	CartPricing cart.TotalsOptions
}

func New(opt Options) (*State, error) {
	if opt.Backend == nil {
		opt.Backend = store.NewMemoryBackend()
	}
	threshold := cart.DefaultFreeShippingThreshold
	if opt.FreeShippingThreshold != nil {
		threshold = *opt.FreeShippingThreshold
	}
	taxRate := cart.DefaultTaxRate
	if opt.TaxRate != nil {
		taxRate = *opt.TaxRate
	}

	n := notify.New()
	if opt.Origin != "" {
		n = notify.NewWithOrigin(opt.Origin)
	}
	st := store.New(opt.Backend)
	st.Sink = n
	st.OnCorrupt = func(k store.Key) { opt.Metrics.CorruptValue(string(k)) }

	if opt.Broadcaster != nil {
		n.Attach(opt.Broadcaster)
		n.OnStorage(func(k store.Key) { opt.Metrics.StorageChangeReceived(string(k)) })
	}

	cat, err := catalog.New(st)
	if err != nil {
		return nil, err
	}
	cat.Indexer = opt.Indexer

	pricing := cart.TotalsOptions{
		FreeShippingThreshold: threshold,
		BaseShippingCost:      opt.ShippingCost,
		TaxRate:               taxRate,
	}

	return &State{
		Store:    st,
		Notifier: n,
		Metrics:  opt.Metrics,
		Cart:     &cart.CartService{Store: st, Events: n, Metrics: opt.Metrics},
		Wishlist: &wishlist.WishlistService{Store: st, Events: n},
		Catalog:  cat,
		Orders: &order.OrderService{
			Store:       st,
			Events:      n,
			Gateway:     opt.Gateway,
			Publisher:   opt.Publisher,
			EventsTopic: opt.EventsTopic,
			Metrics:     opt.Metrics,
			Pricing:     pricing,
			CancelMode:  opt.CancelMode,
		},
		Profile:     &profile.ProfileService{Store: st},
		CartPricing: pricing,
	}, nil
}

// ResettableKeys are the collections the reset dialog offers.
var ResettableKeys = []store.Key{store.KeyProducts, store.KeyLikes, store.KeySaved, store.KeyOrders}

// Reset clears keys, or every resettable key when none are given, and emits
// the events of the cleared collections.
func (s *State) Reset(ctx context.Context, keys ...store.Key) error {
	if len(keys) == 0 {
		keys = ResettableKeys
	}
	if err := s.Store.Reset(ctx, keys...); err != nil {
		return err
	}
	for _, k := range keys {
		if e, ok := notify.EventForKey(k); ok {
			s.Notifier.Emit(e)
		}
	}
	return nil
}

// Close detaches the tab from the cross-tab channel.
func (s *State) Close() {
	s.Notifier.Detach()
}
