package httpserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopstate/internal/app"
	"github.com/Skotchmaster/shopstate/internal/order"
	"github.com/Skotchmaster/shopstate/internal/transport"
	"github.com/Skotchmaster/shopstate/pkg/logging"
)

type OrderHTTP struct {
	State *app.State

	// Background outlives requests; fulfillment simulations run under it.
	Background context.Context
	Steps      []order.FulfillmentStep
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	orders, err := h.State.Orders.ListOrders(ctx)
	if err != nil {
		return fail(c, l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	o, err := h.State.Orders.GetOrder(ctx, c.Param("number"))
	if err != nil {
		return fail(c, l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "checkout_error", "invalid body", err)
	}
	delivery, ok := order.DeliveryOptionByID(req.DeliveryOption)
	if !ok {
		return badRequest(l, "checkout_error", "unknown delivery option", nil)
	}

	o, err := h.State.Orders.CreateOrder(ctx, order.CreateOrderRequest{
		Customer:      req.CustomerInfo,
		PaymentMethod: req.PaymentMethod,
		Delivery:      delivery,
		PromoCode:     req.PromoCode,
	})
	if err != nil {
		return fail(c, l, "checkout_error", err)
	}

	l.Info("checkout_success", "order_number", o.OrderNumber)
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel")

	number := c.Param("number")
	found, err := h.State.Orders.CancelOrder(ctx, number)
	if err != nil {
		return fail(c, l, "cancel_order_error", err)
	}
	return c.JSON(http.StatusOK, transport.CancelResponse{OrderNumber: number, Found: found})
}

func (h *OrderHTTP) AdvanceStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.advance_status")

	var req transport.StatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "advance_status_error", "invalid body", err)
	}
	o, err := h.State.Orders.AdvanceStatus(ctx, c.Param("number"), req.Status)
	if err != nil {
		return fail(c, l, "advance_status_error", err)
	}
	return c.JSON(http.StatusOK, o)
}

// Fulfill starts a simulated fulfillment and returns immediately.
func (h *OrderHTTP) Fulfill(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.fulfill")

	number := c.Param("number")
	if _, err := h.State.Orders.GetOrder(ctx, number); err != nil {
		return fail(c, l, "fulfill_order_error", err)
	}

	bg := h.Background
	if bg == nil {
		bg = context.Background()
	}
	steps := h.Steps
	if steps == nil {
		steps = order.DefaultFulfillmentSteps()
	}
	h.State.Orders.SimulateFulfillment(logging.IntoContext(bg, l), number, steps)

	return c.NoContent(http.StatusAccepted)
}

func (h *OrderHTTP) GetInvoice(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.invoice")

	o, err := h.State.Orders.GetOrder(ctx, c.Param("number"))
	if err != nil {
		return fail(c, l, "get_invoice_error", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "order-"+o.OrderNumber+".txt"))
	return c.String(http.StatusOK, order.Invoice(*o))
}

func (h *OrderHTTP) GetDeliveryOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, order.DeliveryOptions())
}
