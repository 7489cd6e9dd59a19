// Package order turns a cart snapshot into a frozen order record and manages
// the order's lifecycle afterwards.
package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shopstate/internal/cart"
	"github.com/Skotchmaster/shopstate/internal/metrics"
	"github.com/Skotchmaster/shopstate/internal/models"
	"github.com/Skotchmaster/shopstate/internal/notify"
	"github.com/Skotchmaster/shopstate/internal/store"
	"github.com/Skotchmaster/shopstate/pkg/logging"
)

// CancelMode selects what cancelling an order does to the record.
type CancelMode int

const (
	// CancelDelete removes the order from the history.
	CancelDelete CancelMode = iota
	// CancelMarkStatus keeps the order with status cancelled.
	CancelMarkStatus
)

func ParseCancelMode(s string) (CancelMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "delete":
		return CancelDelete, nil
	case "status":
		return CancelMarkStatus, nil
	}
	return CancelDelete, fmt.Errorf("unknown cancel mode %q: %w", s, ErrValidation)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type Event struct {
	Type        string             `json:"type"`
	OrderNumber string             `json:"order_number"`
	Status      models.OrderStatus `json:"status"`
	Total       decimal.Decimal    `json:"total_amount"`
	At          time.Time          `json:"at"`
}

const (
	EventCreated       = "order_created"
	EventCancelled     = "order_cancelled"
	EventStatusChanged = "order_status_changed"
)

type CreateOrderRequest struct {
	// Lines is the cart snapshot. When nil the persisted cart is used.
	Lines         []models.CartLine
	Customer      models.CustomerInfo
	PaymentMethod models.PaymentMethod
	Delivery      DeliveryOption
	PromoCode     string
}

type OrderService struct {
	Store   *store.Store
	Events  cart.Emitter
	Gateway PaymentGateway

	Publisher   EventPublisher
	EventsTopic string
	Metrics     *metrics.Metrics

	// Pricing supplies the threshold and tax rate; base shipping comes from
	// the chosen delivery option.
	Pricing    cart.TotalsOptions
	CancelMode CancelMode
	Now        func() time.Time
}

func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return store.ReadList[models.Order](ctx, s.Store, store.KeyOrders)
}

func (s *OrderService) GetOrder(ctx context.Context, number string) (*models.Order, error) {
	orders, err := s.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(orders, number)
	if i < 0 {
		return nil, fmt.Errorf("order %q: %w", number, ErrNotFound)
	}
	return &orders[i], nil
}

// CreateOrder validates the request, takes payment, appends the order to the
// history and clears the cart. Nothing is persisted when validation or
// payment fails.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create")

	o, err := s.place(ctx, l, req)
	if err != nil {
		return nil, err
	}
	if s.Events != nil {
		s.Events.Emit(notify.CartUpdated)
	}

	s.Metrics.OrderCreated(string(o.PaymentMethod))
	s.publish(ctx, EventCreated, *o)
	l.Info("order_created", "order_number", o.OrderNumber, "total", o.TotalAmount.StringFixed(2))
	return o, nil
}

// place holds the cart and order locks from reading the cart until it is
// cleared, so checkouts and status updates in the same process serialize.
func (s *OrderService) place(ctx context.Context, l *slog.Logger, req CreateOrderRequest) (*models.Order, error) {
	defer s.Store.Lock(store.KeyCart, store.KeyOrders)()

	lines := req.Lines
	if lines == nil {
		var err error
		lines, err = store.ReadList[models.CartLine](ctx, s.Store, store.KeyCart)
		if err != nil {
			return nil, err
		}
	}

	customer, fields := s.validate(req, lines)
	delivery := req.Delivery
	if delivery.ID == "" && delivery.Name == "" {
		delivery = DeliveryStandard
	}

	pricing := s.Pricing
	pricing.BaseShippingCost = delivery.Cost
	discount, err := cart.ResolvePromo(req.PromoCode, lines, pricing)
	if errors.Is(err, cart.ErrInvalidPromo) {
		fields["promo_code"] = "Invalid promo code. Try SAVE10 or FREESHIP."
	}
	if len(fields) > 0 {
		verr := &ValidationError{Fields: fields}
		l.Warn("create_order_invalid", "error", verr)
		return nil, verr
	}
	pricing.Discount = discount
	totals := cart.ComputeTotals(lines, pricing)

	orders, err := s.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	o := models.Order{
		OrderNumber:       uniqueNumber(orders, now),
		Items:             snapshotItems(lines),
		Subtotal:          totals.Subtotal,
		ShippingCost:      totals.Shipping,
		Tax:               totals.Tax,
		Discount:          totals.Discount,
		TotalAmount:       totals.Total,
		CustomerInfo:      customer,
		Status:            models.OrderStatusPending,
		PaymentMethod:     req.PaymentMethod,
		PaymentStatus:     "pending",
		PromoCode:         cart.NormalizePromo(req.PromoCode),
		OrderDate:         now,
		EstimatedDelivery: EstimatedDelivery(now, delivery.Days),
		ShippingMethod:    delivery.Name,
	}

	auth, err := s.pay(ctx, o)
	if err != nil {
		l.Warn("payment_declined", "order_number", o.OrderNumber, "error", err)
		return nil, err
	}
	o.PaymentReference = auth.Reference
	o.PaymentStatus = models.PaymentStatusPaid
	o.Status = models.OrderStatusProcessing

	orders = append(orders, o)
	if err := store.WriteList(ctx, s.Store, store.KeyOrders, orders); err != nil {
		if ferr := s.gateway().Fail(ctx, auth, "order not stored"); ferr != nil {
			l.Error("payment_release_error", "order_number", o.OrderNumber, "error", ferr)
		}
		l.Error("create_order_error", "order_number", o.OrderNumber, "error", err)
		return nil, err
	}

	// The order is stored; a failure here leaves a stale cart behind.
	if err := s.Store.Clear(ctx, store.KeyCart); err != nil {
		l.Error("clear_cart_error", "order_number", o.OrderNumber, "error", err)
	}
	return &o, nil
}

func (s *OrderService) validate(req CreateOrderRequest, lines []models.CartLine) (models.CustomerInfo, map[string]string) {
	fields := map[string]string{}

	customer, err := ValidateCustomer(req.Customer)
	var verr *ValidationError
	if errors.As(err, &verr) {
		for k, v := range verr.Fields {
			fields[k] = v
		}
	}
	if !req.PaymentMethod.Valid() {
		fields["payment_method"] = "Payment method is invalid"
	}
	if len(lines) == 0 {
		fields["items"] = "Cart is empty"
	}
	for _, line := range lines {
		if line.Quantity < 1 || line.Price.IsNegative() {
			fields["items"] = "Cart contains an invalid line"
			break
		}
	}
	return customer, fields
}

func (s *OrderService) pay(ctx context.Context, o models.Order) (Authorization, error) {
	gw := s.gateway()
	auth, err := gw.Authorize(ctx, PaymentRequest{
		OrderNumber: o.OrderNumber,
		Method:      o.PaymentMethod,
		Amount:      o.TotalAmount,
	})
	if err != nil {
		return Authorization{}, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}
	if err := gw.Capture(ctx, auth); err != nil {
		_ = gw.Fail(ctx, auth, err.Error())
		return Authorization{}, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}
	return auth, nil
}

// CancelOrder reports false with no error when the order does not exist.
// Delivered orders cannot be cancelled.
func (s *OrderService) CancelOrder(ctx context.Context, number string) (bool, error) {
	l := logging.FromContext(ctx).With("svc", "order.cancel")

	found := false
	var cancelled *models.Order
	_, err := store.UpdateList(ctx, s.Store, store.KeyOrders, func(orders []models.Order) ([]models.Order, bool, error) {
		i := indexOf(orders, number)
		if i < 0 {
			return orders, false, nil
		}
		found = true

		o := orders[i]
		switch o.Status {
		case models.OrderStatusDelivered:
			return nil, false, fmt.Errorf("order %s already delivered: %w", number, ErrConflict)
		case models.OrderStatusCancelled:
			return orders, false, nil
		}

		o.Status = models.OrderStatusCancelled
		cancelled = &o
		if s.CancelMode == CancelMarkStatus {
			orders[i] = o
			return orders, true, nil
		}
		return append(orders[:i], orders[i+1:]...), true, nil
	})
	if err != nil {
		if !errors.Is(err, ErrConflict) {
			l.Error("cancel_order_error", "order_number", number, "error", err)
			found = false
		}
		return found, err
	}
	if cancelled == nil {
		return found, nil
	}

	s.Metrics.OrderCancelled()
	s.publish(ctx, EventCancelled, *cancelled)
	l.Info("order_cancelled", "order_number", number)
	return true, nil
}

var statusRank = map[models.OrderStatus]int{
	models.OrderStatusPending:    0,
	models.OrderStatusProcessing: 1,
	models.OrderStatusShipped:    2,
	models.OrderStatusDelivered:  3,
}

// AdvanceStatus moves an order forward along
// pending → processing → shipped → delivered.
func (s *OrderService) AdvanceStatus(ctx context.Context, number string, next models.OrderStatus) (*models.Order, error) {
	nextRank, ok := statusRank[next]
	if !ok {
		return nil, fmt.Errorf("status %q is not a forward status: %w", next, ErrValidation)
	}

	var (
		updated models.Order
		cur     models.OrderStatus
	)
	_, err := store.UpdateList(ctx, s.Store, store.KeyOrders, func(orders []models.Order) ([]models.Order, bool, error) {
		i := indexOf(orders, number)
		if i < 0 {
			return nil, false, fmt.Errorf("order %q: %w", number, ErrNotFound)
		}

		cur = orders[i].Status
		curRank, ok := statusRank[cur]
		if !ok || nextRank <= curRank {
			return nil, false, fmt.Errorf("order %s: %s -> %s: %w", number, cur, next, ErrConflict)
		}
		orders[i].Status = next
		updated = orders[i]
		return orders, true, nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, EventStatusChanged, updated)
	logging.FromContext(ctx).With("svc", "order.advance").
		Info("order_status_changed", "order_number", number, "from", cur, "to", next)
	return &updated, nil
}

func (s *OrderService) publish(ctx context.Context, typ string, o models.Order) {
	if s.Publisher == nil || s.EventsTopic == "" {
		return
	}
	ev := Event{Type: typ, OrderNumber: o.OrderNumber, Status: o.Status, Total: o.TotalAmount, At: s.now()}
	if err := s.Publisher.PublishEvent(ctx, s.EventsTopic, o.OrderNumber, ev); err != nil {
		logging.FromContext(ctx).With("svc", "order.publish").
			Warn("publish_order_event_error", "type", typ, "order_number", o.OrderNumber, "error", err)
	}
}

func (s *OrderService) gateway() PaymentGateway {
	if s.Gateway == nil {
		return SimulatedGateway{}
	}
	return s.Gateway
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// uniqueNumber derives ORD-<unix millis> from now, stepping forward a
// millisecond at a time until it is unused in orders.
func uniqueNumber(orders []models.Order, now time.Time) string {
	ms := now.UnixMilli()
	for {
		n := fmt.Sprintf("ORD-%d", ms)
		if indexOf(orders, n) < 0 {
			return n
		}
		ms++
	}
}

func snapshotItems(lines []models.CartLine) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.OrderItem{
			ProductID: l.ID,
			Name:      l.Name,
			Image:     l.Image,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Size:      l.Size,
			Color:     l.Color,
		})
	}
	return items
}

func indexOf(orders []models.Order, number string) int {
	for i := range orders {
		if orders[i].OrderNumber == number {
			return i
		}
	}
	return -1
}
