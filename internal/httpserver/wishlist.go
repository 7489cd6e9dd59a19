package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopstate/internal/app"
	"github.com/Skotchmaster/shopstate/internal/models"
	"github.com/Skotchmaster/shopstate/internal/transport"
	"github.com/Skotchmaster/shopstate/pkg/logging"
)

type WishlistHTTP struct {
	State *app.State
}

func (h *WishlistHTTP) GetLikes(c echo.Context) error {
	return h.list(c, "likes.get", h.State.Wishlist.Likes)
}

func (h *WishlistHTTP) GetSaved(c echo.Context) error {
	return h.list(c, "wishlist.get", h.State.Wishlist.Saved)
}

func (h *WishlistHTTP) ToggleLike(c echo.Context) error {
	return h.toggle(c, "likes.toggle", h.State.Wishlist.ToggleLike)
}

func (h *WishlistHTTP) ToggleSave(c echo.Context) error {
	return h.toggle(c, "wishlist.toggle", h.State.Wishlist.ToggleSave)
}

func (h *WishlistHTTP) RemoveLike(c echo.Context) error {
	return h.byID(c, "likes.remove", h.State.Wishlist.RemoveLike)
}

func (h *WishlistHTTP) RemoveSave(c echo.Context) error {
	return h.byID(c, "wishlist.remove", h.State.Wishlist.RemoveSave)
}

func (h *WishlistHTTP) MoveToWishlist(c echo.Context) error {
	return h.byID(c, "likes.move", h.State.Wishlist.MoveToWishlist)
}

func (h *WishlistHTTP) MoveToLikes(c echo.Context) error {
	return h.byID(c, "wishlist.move", h.State.Wishlist.MoveToLikes)
}

func (h *WishlistHTTP) list(c echo.Context, name string, fn func(context.Context) ([]models.WishlistItem, error)) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", name)

	items, err := fn(ctx)
	if err != nil {
		return fail(c, l, "list_wishlist_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *WishlistHTTP) toggle(c echo.Context, name string, fn func(context.Context, models.Product) (bool, error)) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", name)

	p, err := h.State.Catalog.FindByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, l, "toggle_wishlist_error", err)
	}
	on, err := fn(ctx, *p)
	if err != nil {
		return fail(c, l, "toggle_wishlist_error", err)
	}
	return c.JSON(http.StatusOK, transport.ToggleResponse{ID: p.ID, Active: on})
}

func (h *WishlistHTTP) byID(c echo.Context, name string, fn func(context.Context, string) error) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", name)

	if err := fn(ctx, c.Param("id")); err != nil {
		return fail(c, l, "wishlist_item_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
