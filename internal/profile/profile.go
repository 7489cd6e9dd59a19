package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shopstate/internal/models"
	"github.com/Skotchmaster/shopstate/internal/store"
)

var ErrValidation = errors.New("validation")

type ProfileService struct {
	Store *store.Store
}

// Get returns the stored user, or nil when none has been saved.
func (s *ProfileService) Get(ctx context.Context) (*models.User, error) {
	return store.ReadRecord[models.User](ctx, s.Store, store.KeyUser)
}

func (s *ProfileService) Save(ctx context.Context, u models.User) (models.User, error) {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(u.Email)
	if u.Name == "" {
		return u, fmt.Errorf("name required: %w", ErrValidation)
	}
	if u.Role == "" {
		u.Role = "user"
	}
	if err := store.WriteRecord(ctx, s.Store, store.KeyUser, u); err != nil {
		return u, err
	}
	return u, nil
}

// Stats are the counters shown next to the profile.
type Stats struct {
	Liked      int             `json:"liked"`
	Saved      int             `json:"saved"`
	Orders     int             `json:"orders"`
	Products   int             `json:"products"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

func (s *ProfileService) Stats(ctx context.Context) (Stats, error) {
	liked, err := store.ReadList[models.WishlistItem](ctx, s.Store, store.KeyLikes)
	if err != nil {
		return Stats{}, err
	}
	saved, err := store.ReadList[models.WishlistItem](ctx, s.Store, store.KeySaved)
	if err != nil {
		return Stats{}, err
	}
	orders, err := store.ReadList[models.Order](ctx, s.Store, store.KeyOrders)
	if err != nil {
		return Stats{}, err
	}
	products, err := store.ReadList[models.Product](ctx, s.Store, store.KeyProducts)
	if err != nil {
		return Stats{}, err
	}

	spent := decimal.Zero
	for _, o := range orders {
		if o.Status != models.OrderStatusCancelled {
			spent = spent.Add(o.TotalAmount)
		}
	}
	return Stats{
		Liked:      len(liked),
		Saved:      len(saved),
		Orders:     len(orders),
		Products:   len(products),
		TotalSpent: spent,
	}, nil
}
