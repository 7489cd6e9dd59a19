package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/shopstate/internal/metrics"
	"github.com/Skotchmaster/shopstate/internal/models"
	"github.com/Skotchmaster/shopstate/internal/notify"
	"github.com/Skotchmaster/shopstate/internal/store"
	"github.com/Skotchmaster/shopstate/pkg/logging"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
)

// Emitter is the same-tab half of the notifier.
type Emitter interface {
	Emit(e notify.Event)
}

type CartService struct {
	Store   *store.Store
	Events  Emitter
	Metrics *metrics.Metrics
}

func (s *CartService) Lines(ctx context.Context) ([]models.CartLine, error) {
	return store.ReadList[models.CartLine](ctx, s.Store, store.KeyCart)
}

// Count is the number of units in the cart, not the number of lines.
func (s *CartService) Count(ctx context.Context) (int, error) {
	lines, err := s.Lines(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n, nil
}

// AddItem merges into the line with the same (id, size, color) or appends a
// new line priced at the product's current display price.
func (s *CartService) AddItem(ctx context.Context, p models.Product, quantity int, size, color string) ([]models.CartLine, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add_item")

	if p.ID == "" {
		return nil, fmt.Errorf("product id required: %w", ErrValidation)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be more than zero: %w", ErrValidation)
	}

	merged := false
	lines, err := s.update(ctx, func(lines []models.CartLine) ([]models.CartLine, bool, error) {
		for i := range lines {
			if lines[i].Matches(p.ID, size, color) {
				lines[i].Quantity += quantity
				merged = true
				return lines, true, nil
			}
		}
		return append(lines, models.CartLine{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.DisplayPrice(),
			Quantity: quantity,
			Size:     size,
			Color:    color,
			Image:    p.FirstImage(),
		}), true, nil
	})
	if err != nil {
		l.Error("add_item_error", "product_id", p.ID, "error", err)
		return nil, err
	}
	s.Metrics.CartAdded()
	l.Debug("item_added", "product_id", p.ID, "quantity", quantity, "merged", merged)
	return lines, nil
}

// SetQuantity ignores non-positive quantities.
func (s *CartService) SetQuantity(ctx context.Context, index, quantity int) ([]models.CartLine, error) {
	return s.update(ctx, func(lines []models.CartLine) ([]models.CartLine, bool, error) {
		if err := checkIndex(lines, index); err != nil {
			return nil, false, err
		}
		if quantity <= 0 {
			return lines, false, nil
		}
		lines[index].Quantity = quantity
		return lines, true, nil
	})
}

func (s *CartService) Increment(ctx context.Context, index int) ([]models.CartLine, error) {
	return s.step(ctx, index, 1)
}

// Decrement never takes a line below one unit; use RemoveLine for that.
func (s *CartService) Decrement(ctx context.Context, index int) ([]models.CartLine, error) {
	return s.step(ctx, index, -1)
}

func (s *CartService) step(ctx context.Context, index, delta int) ([]models.CartLine, error) {
	return s.update(ctx, func(lines []models.CartLine) ([]models.CartLine, bool, error) {
		if err := checkIndex(lines, index); err != nil {
			return nil, false, err
		}
		lines[index].Quantity = max(1, lines[index].Quantity+delta)
		return lines, true, nil
	})
}

func (s *CartService) RemoveLine(ctx context.Context, index int) ([]models.CartLine, error) {
	return s.update(ctx, func(lines []models.CartLine) ([]models.CartLine, bool, error) {
		if err := checkIndex(lines, index); err != nil {
			return nil, false, err
		}
		return append(lines[:index], lines[index+1:]...), true, nil
	})
}

func (s *CartService) Clear(ctx context.Context) error {
	unlock := s.Store.Lock(store.KeyCart)
	err := s.Store.Clear(ctx, store.KeyCart)
	unlock()
	if err != nil {
		return err
	}
	s.emit()
	return nil
}

func (s *CartService) Totals(ctx context.Context, opt TotalsOptions, promo string) (Totals, error) {
	lines, err := s.Lines(ctx)
	if err != nil {
		return Totals{}, err
	}
	return TotalsWithPromo(lines, opt, promo)
}

// update runs fn under the cart lock and emits cartUpdated once the lock is
// released, when fn changed the cart.
func (s *CartService) update(ctx context.Context, fn func([]models.CartLine) ([]models.CartLine, bool, error)) ([]models.CartLine, error) {
	wrote := false
	lines, err := store.UpdateList(ctx, s.Store, store.KeyCart, func(lines []models.CartLine) ([]models.CartLine, bool, error) {
		out, changed, err := fn(lines)
		wrote = changed
		return out, changed, err
	})
	if err != nil {
		return nil, err
	}
	if wrote {
		s.emit()
	}
	return lines, nil
}

func checkIndex(lines []models.CartLine, index int) error {
	if index < 0 || index >= len(lines) {
		return fmt.Errorf("line %d: %w", index, ErrNotFound)
	}
	return nil
}

func (s *CartService) emit() {
	if s.Events != nil {
		s.Events.Emit(notify.CartUpdated)
	}
}
