package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	CartHandler     *CartHTTP
	CatalogHandler  *CatalogHTTP
	WishlistHandler *WishlistHTTP
	OrderHandler    *OrderHTTP
	UserHandler     *UserHTTP

	// Gatherer backs /metrics; the route is skipped when nil.
	Gatherer prometheus.Gatherer
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	cart := e.Group("/cart")
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.GET("/totals", d.CartHandler.GetTotals)
	cart.PUT("/items/:index", d.CartHandler.SetQuantity)
	cart.POST("/items/:index/increment", d.CartHandler.Increment)
	cart.POST("/items/:index/decrement", d.CartHandler.Decrement)
	cart.DELETE("/items/:index", d.CartHandler.RemoveLine)

	products := e.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/facets", d.CatalogHandler.GetFacets)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.POST("", d.CatalogHandler.CreateProduct)
	products.PUT("/:id", d.CatalogHandler.UpdateProduct)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct)

	likes := e.Group("/likes")
	likes.GET("", d.WishlistHandler.GetLikes)
	likes.POST("/:id", d.WishlistHandler.ToggleLike)
	likes.DELETE("/:id", d.WishlistHandler.RemoveLike)
	likes.POST("/:id/move", d.WishlistHandler.MoveToWishlist)

	wishlist := e.Group("/wishlist")
	wishlist.GET("", d.WishlistHandler.GetSaved)
	wishlist.POST("/:id", d.WishlistHandler.ToggleSave)
	wishlist.DELETE("/:id", d.WishlistHandler.RemoveSave)
	wishlist.POST("/:id/move", d.WishlistHandler.MoveToLikes)

	orders := e.Group("/orders")
	orders.GET("", d.OrderHandler.GetOrders)
	orders.POST("", d.OrderHandler.Checkout)
	orders.GET("/:number", d.OrderHandler.GetOrder)
	orders.DELETE("/:number", d.OrderHandler.CancelOrder)
	orders.POST("/:number/status", d.OrderHandler.AdvanceStatus)
	orders.POST("/:number/fulfill", d.OrderHandler.Fulfill)
	orders.GET("/:number/invoice", d.OrderHandler.GetInvoice)
	e.GET("/delivery-options", d.OrderHandler.GetDeliveryOptions)

	e.GET("/user", d.UserHandler.GetUser)
	e.PUT("/user", d.UserHandler.SaveUser)
	e.GET("/user/stats", d.UserHandler.GetStats)
	e.POST("/reset", d.UserHandler.Reset)
}
