package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shopstate/internal/app"
	"github.com/Skotchmaster/shopstate/internal/catalog"
	"github.com/Skotchmaster/shopstate/internal/models"
	"github.com/Skotchmaster/shopstate/internal/search"
	"github.com/Skotchmaster/shopstate/internal/transport"
	"github.com/Skotchmaster/shopstate/internal/util"
	"github.com/Skotchmaster/shopstate/pkg/logging"
)

type CatalogHTTP struct {
	State *app.State
	// Search is nil when no Elasticsearch is configured; searches then run
	// over the merged catalog in memory.
	Search *search.Index
}

func listParam(c echo.Context, name string) []string {
	var out []string
	for _, v := range c.QueryParams()[name] {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func decimalParam(c echo.Context, name string) (*decimal.Decimal, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	minPrice, err := decimalParam(c, "min_price")
	if err != nil {
		return badRequest(l, "get_products_error", "min_price is not a number", err)
	}
	maxPrice, err := decimalParam(c, "max_price")
	if err != nil {
		return badRequest(l, "get_products_error", "max_price is not a number", err)
	}

	q := catalog.Query{
		Search:     c.QueryParam("search"),
		Categories: listParam(c, "category"),
		Sizes:      listParam(c, "sizes"),
		Colors:     listParam(c, "colors"),
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Featured:   c.QueryParam("featured") == "true",
		Sort:       catalog.SortOption(c.QueryParam("sort")),
	}

	all, err := h.State.Catalog.ListAll(ctx)
	if err != nil {
		return fail(c, l, "get_products_error", err)
	}
	filtered := catalog.Filter(all, q)

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	page, offset, limit := util.Calculate(page, size)

	return c.JSON(http.StatusOK, transport.ProductPage{
		Data: util.Slice(filtered, offset, limit),
		Meta: transport.NewPageMeta(page, offset, limit, int64(len(filtered))),
	})
}

func (h *CatalogHTTP) GetFacets(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_facets")

	all, err := h.State.Catalog.ListAll(ctx)
	if err != nil {
		return fail(c, l, "get_facets_error", err)
	}
	return c.JSON(http.StatusOK, catalog.BuildFacets(all))
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	q := strings.TrimSpace(c.QueryParam("q"))
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	page, offset, limit := util.Calculate(page, size)

	if q == "" {
		return c.JSON(http.StatusOK, transport.ProductPage{
			Data: []models.Product{},
			Meta: transport.NewPageMeta(page, offset, limit, 0),
		})
	}

	if h.Search != nil {
		res, err := h.Search.Search(ctx, q, page, limit)
		if err != nil {
			return fail(c, l, "search_products_error", err)
		}
		return c.JSON(http.StatusOK, transport.ProductPage{
			Data: res.Items,
			Meta: transport.NewPageMeta(page, offset, limit, res.Total),
		})
	}

	all, err := h.State.Catalog.ListAll(ctx)
	if err != nil {
		return fail(c, l, "search_products_error", err)
	}
	hits := catalog.Filter(all, catalog.Query{Search: q})
	return c.JSON(http.StatusOK, transport.ProductPage{
		Data: util.Slice(hits, offset, limit),
		Meta: transport.NewPageMeta(page, offset, limit, int64(len(hits))),
	})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	p, err := h.State.Catalog.FindByID(ctx, c.Param("id"))
	if err != nil {
		return fail(c, l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var p models.Product
	if err := c.Bind(&p); err != nil {
		return badRequest(l, "product_create_error", "invalid body", err)
	}

	saved, err := h.State.Catalog.UpsertLocal(ctx, p)
	if err != nil {
		return fail(c, l, "product_create_error", err)
	}
	l.Info("create_product_success", "id", saved.ID)
	return c.JSON(http.StatusCreated, saved)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	var p models.Product
	if err := c.Bind(&p); err != nil {
		return badRequest(l, "product_update_error", "invalid body", err)
	}
	p.ID = c.Param("id")

	saved, err := h.State.Catalog.UpsertLocal(ctx, p)
	if err != nil {
		return fail(c, l, "product_update_error", err)
	}
	l.Info("update_product_success", "id", saved.ID)
	return c.JSON(http.StatusOK, saved)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id := c.Param("id")
	deleted, err := h.State.Catalog.DeleteLocal(ctx, id)
	if err != nil {
		return fail(c, l, "product_delete_error", err)
	}
	if !deleted {
		l.Warn("product_delete_error", "status", 404, "id", id)
		return echo.NewHTTPError(http.StatusNotFound, "no local product with this id")
	}
	l.Info("delete_product_success", "id", id)
	return c.NoContent(http.StatusNoContent)
}
