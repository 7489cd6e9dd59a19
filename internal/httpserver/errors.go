package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopstate/internal/cart"
	"github.com/Skotchmaster/shopstate/internal/catalog"
	"github.com/Skotchmaster/shopstate/internal/order"
	"github.com/Skotchmaster/shopstate/internal/profile"
	"github.com/Skotchmaster/shopstate/internal/search"
	"github.com/Skotchmaster/shopstate/internal/wishlist"
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, order.ErrValidation),
		errors.Is(err, cart.ErrValidation),
		errors.Is(err, cart.ErrInvalidPromo),
		errors.Is(err, catalog.ErrValidation),
		errors.Is(err, profile.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrPaymentFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, wishlist.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, search.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail logs err under event and turns it into the response. Validation
// errors keep their field map so a form can show them inline.
func fail(c echo.Context, l *slog.Logger, event string, err error) error {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		l.Error(event, "status", code, "error", err)
		return echo.NewHTTPError(code, "internal error")
	}
	l.Warn(event, "status", code, "error", err)

	var verr *order.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(code, map[string]any{"message": "validation failed", "fields": verr.Fields})
	}
	return echo.NewHTTPError(code, err.Error())
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", 400, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}

func indexParam(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("index"))
}
