package httpserver

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopstate/internal/app"
	"github.com/Skotchmaster/shopstate/internal/models"
	"github.com/Skotchmaster/shopstate/internal/store"
	"github.com/Skotchmaster/shopstate/internal/transport"
	"github.com/Skotchmaster/shopstate/pkg/logging"
)

type UserHTTP struct {
	State *app.State
}

func (h *UserHTTP) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get")

	u, err := h.State.Profile.Get(ctx)
	if err != nil {
		return fail(c, l, "get_user_error", err)
	}
	if u == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no profile saved")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) SaveUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.save")

	var u models.User
	if err := c.Bind(&u); err != nil {
		return badRequest(l, "save_user_error", "invalid body", err)
	}
	saved, err := h.State.Profile.Save(ctx, u)
	if err != nil {
		return fail(c, l, "save_user_error", err)
	}
	return c.JSON(http.StatusOK, saved)
}

func (h *UserHTTP) GetStats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.stats")

	stats, err := h.State.Profile.Stats(ctx)
	if err != nil {
		return fail(c, l, "get_stats_error", err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Reset clears the requested collections; an empty list means the default set.
func (h *UserHTTP) Reset(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reset")

	var req transport.ResetRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "reset_error", "invalid body", err)
	}

	keys := make([]store.Key, 0, len(req.Keys))
	for _, k := range req.Keys {
		key := store.Key(k)
		if !slices.Contains(store.AllKeys(), key) {
			return badRequest(l, "reset_error", "unknown key "+k, nil)
		}
		keys = append(keys, key)
	}

	if err := h.State.Reset(ctx, keys...); err != nil {
		return fail(c, l, "reset_error", err)
	}
	l.Info("reset_success", "keys", req.Keys)
	return c.NoContent(http.StatusNoContent)
}
