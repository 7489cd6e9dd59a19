// Package wishlist manages the liked and saved-for-later collections.
// Each is unique by product id; moving an item is remove-then-add.
package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/shopstate/internal/cart"
	"github.com/Skotchmaster/shopstate/internal/models"
	"github.com/Skotchmaster/shopstate/internal/notify"
	"github.com/Skotchmaster/shopstate/internal/store"
	"github.com/Skotchmaster/shopstate/pkg/logging"
)

var ErrNotFound = errors.New("not found")

type WishlistService struct {
	Store  *store.Store
	Events cart.Emitter
}

type collection struct {
	key   store.Key
	event notify.Event
}

var (
	likes = collection{store.KeyLikes, notify.LikesUpdated}
	saved = collection{store.KeySaved, notify.SavesUpdated}
)

func (s *WishlistService) Likes(ctx context.Context) ([]models.WishlistItem, error) {
	return s.list(ctx, likes)
}

func (s *WishlistService) Saved(ctx context.Context) ([]models.WishlistItem, error) {
	return s.list(ctx, saved)
}

func (s *WishlistService) IsLiked(ctx context.Context, id string) (bool, error) {
	return s.contains(ctx, likes, id)
}

func (s *WishlistService) IsSaved(ctx context.Context, id string) (bool, error) {
	return s.contains(ctx, saved, id)
}

// ToggleLike adds p to the likes, or removes it when already there.
// It reports whether p is liked afterwards.
func (s *WishlistService) ToggleLike(ctx context.Context, p models.Product) (bool, error) {
	return s.toggle(ctx, likes, p)
}

func (s *WishlistService) ToggleSave(ctx context.Context, p models.Product) (bool, error) {
	return s.toggle(ctx, saved, p)
}

func (s *WishlistService) RemoveLike(ctx context.Context, id string) error {
	_, err := s.remove(ctx, likes, id)
	return err
}

func (s *WishlistService) RemoveSave(ctx context.Context, id string) error {
	_, err := s.remove(ctx, saved, id)
	return err
}

// MoveToWishlist moves a liked item to the saved collection.
func (s *WishlistService) MoveToWishlist(ctx context.Context, id string) error {
	return s.move(ctx, likes, saved, id)
}

// MoveToLikes moves a saved item to the liked collection.
func (s *WishlistService) MoveToLikes(ctx context.Context, id string) error {
	return s.move(ctx, saved, likes, id)
}

func (s *WishlistService) list(ctx context.Context, c collection) ([]models.WishlistItem, error) {
	return store.ReadList[models.WishlistItem](ctx, s.Store, c.key)
}

func (s *WishlistService) contains(ctx context.Context, c collection, id string) (bool, error) {
	items, err := s.list(ctx, c)
	if err != nil {
		return false, err
	}
	return indexOf(items, id) >= 0, nil
}

func (s *WishlistService) toggle(ctx context.Context, c collection, p models.Product) (bool, error) {
	on := false
	err := s.update(ctx, c, func(items []models.WishlistItem) ([]models.WishlistItem, error) {
		if i := indexOf(items, p.ID); i >= 0 {
			return append(items[:i], items[i+1:]...), nil
		}
		on = true
		return append(items, models.NewWishlistItem(p)), nil
	})
	if err != nil {
		return false, err
	}
	return on, nil
}

func (s *WishlistService) remove(ctx context.Context, c collection, id string) (*models.WishlistItem, error) {
	var item models.WishlistItem
	err := s.update(ctx, c, func(items []models.WishlistItem) ([]models.WishlistItem, error) {
		i := indexOf(items, id)
		if i < 0 {
			return nil, fmt.Errorf("%s %q: %w", c.key, id, ErrNotFound)
		}
		item = items[i]
		return append(items[:i], items[i+1:]...), nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// move holds both collection locks so a concurrent toggle cannot slip in
// between the remove and the add.
func (s *WishlistService) move(ctx context.Context, from, to collection, id string) error {
	l := logging.FromContext(ctx).With("svc", "wishlist.move")

	unlock := s.Store.Lock(from.key, to.key)
	removed, err := s.moveLocked(ctx, from, to, id)
	unlock()

	if removed {
		s.emit(from)
	}
	if err != nil {
		if removed {
			l.Error("move_item_error", "from", string(from.key), "to", string(to.key), "id", id, "error", err)
		}
		return err
	}
	s.emit(to)
	return nil
}

func (s *WishlistService) moveLocked(ctx context.Context, from, to collection, id string) (removed bool, err error) {
	src, err := s.list(ctx, from)
	if err != nil {
		return false, err
	}
	i := indexOf(src, id)
	if i < 0 {
		return false, fmt.Errorf("%s %q: %w", from.key, id, ErrNotFound)
	}
	item := src[i]
	if err := store.WriteList(ctx, s.Store, from.key, append(src[:i], src[i+1:]...)); err != nil {
		return false, err
	}

	dst, err := s.list(ctx, to)
	if err != nil {
		return true, err
	}
	return true, store.WriteList(ctx, s.Store, to.key, append(filterOut(dst, id), item))
}

// update rewrites one collection under its lock and emits its event after.
func (s *WishlistService) update(ctx context.Context, c collection, fn func([]models.WishlistItem) ([]models.WishlistItem, error)) error {
	_, err := store.UpdateList(ctx, s.Store, c.key, func(items []models.WishlistItem) ([]models.WishlistItem, bool, error) {
		out, err := fn(items)
		return out, err == nil, err
	})
	if err != nil {
		return err
	}
	s.emit(c)
	return nil
}

func (s *WishlistService) emit(c collection) {
	if s.Events != nil {
		s.Events.Emit(c.event)
	}
}

func indexOf(items []models.WishlistItem, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func filterOut(items []models.WishlistItem, id string) []models.WishlistItem {
	out := items[:0]
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}
