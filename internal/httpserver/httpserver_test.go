package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopstate/internal/app"
	"github.com/Skotchmaster/shopstate/internal/metrics"
	"github.com/Skotchmaster/shopstate/internal/models"
	"github.com/Skotchmaster/shopstate/internal/transport"
	"github.com/Skotchmaster/shopstate/internal/util"
)

type testEnv struct {
	T     *testing.T
	E     *echo.Echo
	State *app.State
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	reg := prometheus.NewRegistry()
	st, err := app.New(app.Options{
		Metrics:      metrics.New(reg),
		ShippingCost: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	e := echo.New()
	Register(e, &Deps{
		CartHandler:     &CartHTTP{State: st},
		CatalogHandler:  &CatalogHTTP{State: st},
		WishlistHandler: &WishlistHTTP{State: st},
		OrderHandler:    &OrderHTTP{State: st},
		UserHandler:     &UserHTTP{State: st},
		Gatherer:        reg,
	})
	return &testEnv{T: t, E: e, State: st}
}

func (env *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func checkout() transport.CheckoutRequest {
	return transport.CheckoutRequest{
		CustomerInfo: models.CustomerInfo{
			Name:       "Ada Lovelace",
			Email:      "ada@example.com",
			Phone:      "555-0100",
			Address:    "12 Analytical Row",
			City:       "London",
			PostalCode: "N1 9GU",
		},
		PaymentMethod:  models.PaymentPayPal,
		DeliveryOption: "express",
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/ready", nil).Code)
}

func TestCartFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/cart", transport.AddToCartRequest{ProductID: "1", Quantity: 2, Size: "M", Color: "White"})
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[transport.CartResponse](t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "40", resp.Totals.Subtotal.String())
	assert.Equal(t, "10", resp.Totals.Shipping.String())
	assert.Equal(t, "53.2", resp.Totals.Total.String())

	rec = env.do(http.MethodPost, "/cart", transport.AddToCartRequest{ProductID: "1", Quantity: 1, Size: "M", Color: "White"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 3, decode[transport.CartResponse](t, rec).Count)

	rec = env.do(http.MethodPut, "/cart/items/0", transport.SetQuantityRequest{Quantity: 6})
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[transport.CartResponse](t, rec)
	assert.Equal(t, 6, resp.Count)
	assert.True(t, resp.Totals.Shipping.IsZero(), "120 ships free")

	rec = env.do(http.MethodPost, "/cart/items/0/decrement", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, decode[transport.CartResponse](t, rec).Count)

	rec = env.do(http.MethodGet, "/cart/totals?promo=SAVE10&delivery=priority", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var totals map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &totals))
	assert.Equal(t, "10", totals["discount"])

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/cart/totals?promo=NOPE", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPut, "/cart/items/x", transport.SetQuantityRequest{Quantity: 1}).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/cart/items/9", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, "/cart", transport.AddToCartRequest{ProductID: "nope"}).Code)

	require.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/cart", nil).Code)
	rec = env.do(http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[transport.CartResponse](t, rec).Items)
}

func TestCheckoutFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/cart", transport.AddToCartRequest{ProductID: "2", Quantity: 1}).Code)

	bad := checkout()
	bad.CustomerInfo.Email = "nope"
	rec := env.do(http.MethodPost, "/orders", bad)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var verr struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verr))
	assert.Equal(t, "Email is invalid", verr.Fields["email"])

	rec = env.do(http.MethodPost, "/orders", checkout())
	require.Equal(t, http.StatusCreated, rec.Code)
	o := decode[models.Order](t, rec)
	assert.Equal(t, "Express Delivery", o.ShippingMethod)
	assert.Equal(t, models.OrderStatusProcessing, o.Status)
	assert.Equal(t, "12.99", o.ShippingCost.String())

	rec = env.do(http.MethodGet, "/cart", nil)
	assert.Empty(t, decode[transport.CartResponse](t, rec).Items, "checkout clears the cart")

	rec = env.do(http.MethodGet, "/orders/"+o.OrderNumber+"/invoice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Order Number: "+o.OrderNumber)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment")

	rec = env.do(http.MethodPost, "/orders/"+o.OrderNumber+"/status", transport.StatusRequest{Status: models.OrderStatusShipped})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(http.MethodPost, "/orders/"+o.OrderNumber+"/status", transport.StatusRequest{Status: models.OrderStatusPending})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = env.do(http.MethodPost, "/orders/"+o.OrderNumber+"/status", transport.StatusRequest{Status: models.OrderStatusCancelled})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodDelete, "/orders/"+o.OrderNumber, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[transport.CancelResponse](t, rec).Found)

	rec = env.do(http.MethodDelete, "/orders/"+o.OrderNumber, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[transport.CancelResponse](t, rec).Found)

	rec = env.do(http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Order](t, rec))
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/orders/"+o.OrderNumber, nil).Code)
}

func TestCheckout_UnknownDelivery(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	req := checkout()
	req.DeliveryOption = "teleport"
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/orders", req).Code)
}

func TestProducts(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/products?category=shoes&sort=price_low&size=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[transport.ProductPage](t, rec)
	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(2), page.Meta.Total)
	assert.True(t, page.Meta.HasNext)
	assert.Equal(t, "Running Shoes", page.Data[0].Name)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/products?min_price=cheap", nil).Code)

	rec = env.do(http.MethodPost, "/products", models.Product{Name: "Canvas Tote", Price: decimal.NewFromInt(18), Category: "bags"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Product](t, rec)
	require.NotEmpty(t, created.ID)

	rec = env.do(http.MethodPut, "/products/"+created.ID, models.Product{Name: "Canvas Tote XL", Price: decimal.NewFromInt(22)})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/products/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Canvas Tote XL", decode[models.Product](t, rec).Name)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/products", models.Product{Name: "x", Price: decimal.NewFromInt(-1)}).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/products/1", nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/products/"+created.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/products/"+created.ID, nil).Code)
}

func TestSearchWithoutIndex(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/products/search?q=denim", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[transport.ProductPage](t, rec)
	require.NotEmpty(t, page.Data)
	for _, p := range page.Data {
		text := strings.ToLower(p.Name + " " + p.Description + " " + strings.Join(p.Tags, " "))
		assert.Contains(t, text, "denim")
	}

	rec = env.do(http.MethodGet, "/products/search", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[transport.ProductPage](t, rec).Data)
}

func TestProducts_PageNormalization(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for _, path := range []string{"/products?page=500000000000000000", "/products/search?q=denim&page=500000000000000000"} {
		rec := env.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		page := decode[transport.ProductPage](t, rec)
		assert.Empty(t, page.Data, path)
		assert.False(t, page.Meta.HasNext, path)
		assert.True(t, page.Meta.HasPrev, path)
	}

	rec := env.do(http.MethodGet, "/products?page=0&size=500", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[transport.ProductPage](t, rec)
	assert.Equal(t, 1, page.Meta.Page)
	assert.Equal(t, util.DefaultPageSize, page.Meta.Size)
	assert.False(t, page.Meta.HasPrev)

	rec = env.do(http.MethodGet, "/products?page=-3&size=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[transport.ProductPage](t, rec)
	assert.Equal(t, 1, page.Meta.Page)
	assert.Len(t, page.Data, 1)
}

func TestLikesAndWishlist(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/likes/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[transport.ToggleResponse](t, rec).Active)

	require.Equal(t, http.StatusNoContent, env.do(http.MethodPost, "/likes/3/move", nil).Code)

	rec = env.do(http.MethodGet, "/likes", nil)
	assert.Empty(t, decode[[]models.WishlistItem](t, rec))
	rec = env.do(http.MethodGet, "/wishlist", nil)
	saved := decode[[]models.WishlistItem](t, rec)
	require.Len(t, saved, 1)
	assert.Equal(t, "3", saved[0].ID)
	assert.True(t, saved[0].IsOnSale)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, "/likes/3/move", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, "/likes/missing", nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/wishlist/3", nil).Code)
}

func TestUserAndReset(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/user", nil).Code)

	rec := env.do(http.MethodPut, "/user", models.User{Name: "Grace", Email: "grace@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(http.MethodGet, "/user", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Grace", decode[models.User](t, rec).Name)

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/likes/1", nil).Code)
	rec = env.do(http.MethodGet, "/user/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"liked":1`)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/reset", transport.ResetRequest{Keys: []string{"everything"}}).Code)
	require.Equal(t, http.StatusNoContent, env.do(http.MethodPost, "/reset", transport.ResetRequest{Keys: []string{"likedProducts", "user"}}).Code)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/user", nil).Code)
	rec = env.do(http.MethodGet, "/likes", nil)
	assert.Empty(t, decode[[]models.WishlistItem](t, rec))
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/cart", transport.AddToCartRequest{ProductID: "5"}).Code)

	rec := env.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shopstate_cart_adds_total 1")
}

func TestDeliveryOptions(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/delivery-options", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"priority"`)
}
