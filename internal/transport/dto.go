package transport

import (
	"github.com/Skotchmaster/shopstate/internal/cart"
	"github.com/Skotchmaster/shopstate/internal/models"
)

type AddToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Items  []models.CartLine `json:"items"`
	Count  int               `json:"count"`
	Totals cart.Totals       `json:"totals"`
}

type CheckoutRequest struct {
	CustomerInfo   models.CustomerInfo  `json:"customer_info"`
	PaymentMethod  models.PaymentMethod `json:"payment_method"`
	DeliveryOption string               `json:"delivery_option"`
	PromoCode      string               `json:"promo_code"`
}

type StatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type CancelResponse struct {
	OrderNumber string `json:"order_number"`
	Found       bool   `json:"found"`
}

type ToggleResponse struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

type ResetRequest struct {
	Keys []string `json:"keys"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

func NewPageMeta(page, offset, limit int, total int64) PageMeta {
	return PageMeta{
		Page:       max(page, 1),
		Size:       limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
		HasPrev:    page > 1,
		HasNext:    int64(offset+limit) < total,
	}
}

type ProductPage struct {
	Data []models.Product `json:"data"`
	Meta PageMeta         `json:"meta"`
}
