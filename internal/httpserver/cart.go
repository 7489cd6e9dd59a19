package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopstate/internal/app"
	"github.com/Skotchmaster/shopstate/internal/cart"
	"github.com/Skotchmaster/shopstate/internal/models"
	"github.com/Skotchmaster/shopstate/internal/order"
	"github.com/Skotchmaster/shopstate/internal/transport"
	"github.com/Skotchmaster/shopstate/pkg/logging"
)

type CartHTTP struct {
	State *app.State
}

func (h *CartHTTP) cartResponse(lines []models.CartLine) transport.CartResponse {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return transport.CartResponse{
		Items:  lines,
		Count:  n,
		Totals: cart.ComputeTotals(lines, h.State.CartPricing),
	}
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	lines, err := h.State.Cart.Lines(ctx)
	if err != nil {
		return fail(c, l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, h.cartResponse(lines))
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_cart_error", "invalid body", err)
	}
	if req.ProductID == "" {
		return badRequest(l, "add_to_cart_error", "product_id required", nil)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	p, err := h.State.Catalog.FindByID(ctx, req.ProductID)
	if err != nil {
		return fail(c, l, "add_to_cart_error", err)
	}

	lines, err := h.State.Cart.AddItem(ctx, *p, req.Quantity, req.Size, req.Color)
	if err != nil {
		return fail(c, l, "add_to_cart_error", err)
	}

	l.Info("item added successfully to cart", "product_id", p.ID)
	return c.JSON(http.StatusCreated, h.cartResponse(lines))
}

func (h *CartHTTP) SetQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.set_quantity")

	idx, err := indexParam(c)
	if err != nil {
		return badRequest(l, "set_quantity_error", "index is not an integer", err)
	}
	var req transport.SetQuantityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "set_quantity_error", "invalid body", err)
	}

	lines, err := h.State.Cart.SetQuantity(ctx, idx, req.Quantity)
	if err != nil {
		return fail(c, l, "set_quantity_error", err)
	}
	return c.JSON(http.StatusOK, h.cartResponse(lines))
}

func (h *CartHTTP) Increment(c echo.Context) error {
	return h.step(c, "cart.increment", h.State.Cart.Increment)
}

func (h *CartHTTP) Decrement(c echo.Context) error {
	return h.step(c, "cart.decrement", h.State.Cart.Decrement)
}

func (h *CartHTTP) RemoveLine(c echo.Context) error {
	return h.step(c, "cart.remove_line", h.State.Cart.RemoveLine)
}

func (h *CartHTTP) step(c echo.Context, name string, fn func(context.Context, int) ([]models.CartLine, error)) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", name)

	idx, err := indexParam(c)
	if err != nil {
		return badRequest(l, "cart_line_error", "index is not an integer", err)
	}
	lines, err := fn(ctx, idx)
	if err != nil {
		return fail(c, l, "cart_line_error", err)
	}
	return c.JSON(http.StatusOK, h.cartResponse(lines))
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	if err := h.State.Cart.Clear(ctx); err != nil {
		return fail(c, l, "clear_cart_error", err)
	}
	l.Info("cart successfully cleared")
	return c.NoContent(http.StatusNoContent)
}

// GetTotals prices the cart with an optional promo code. A delivery option
// switches to checkout pricing, where shipping is the option's cost.
func (h *CartHTTP) GetTotals(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.totals")

	pricing := h.State.CartPricing
	if id := c.QueryParam("delivery"); id != "" {
		opt, ok := order.DeliveryOptionByID(id)
		if !ok {
			return badRequest(l, "cart_totals_error", "unknown delivery option", nil)
		}
		pricing.BaseShippingCost = opt.Cost
	}

	totals, err := h.State.Cart.Totals(ctx, pricing, c.QueryParam("promo"))
	if err != nil {
		return fail(c, l, "cart_totals_error", err)
	}
	return c.JSON(http.StatusOK, totals)
}
