package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentPayPal       PaymentMethod = "paypal"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentPayPal, PaymentBankTransfer:
		return true
	}
	return false
}

const PaymentStatusPaid = "paid"

type OrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"product_name"`
	Image     string          `json:"product_image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
}

type CustomerInfo struct {
	Name       string `json:"name"        validate:"required"`
	Email      string `json:"email"       validate:"required,basic_email"`
	Phone      string `json:"phone"       validate:"required"`
	Address    string `json:"address"     validate:"required"`
	City       string `json:"city"        validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
}

type Order struct {
	OrderNumber       string          `json:"order_number"`
	Items             []OrderItem     `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	ShippingCost      decimal.Decimal `json:"shipping_cost"`
	Tax               decimal.Decimal `json:"tax"`
	Discount          decimal.Decimal `json:"discount"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	CustomerInfo      CustomerInfo    `json:"customer_info"`
	Status            OrderStatus     `json:"status"`
	PaymentMethod     PaymentMethod   `json:"payment_method"`
	PaymentStatus     string          `json:"payment_status"`
	PaymentReference  string          `json:"payment_reference,omitempty"`
	PromoCode         string          `json:"promo_code,omitempty"`
	OrderDate         time.Time       `json:"order_date"`
	EstimatedDelivery string          `json:"estimated_delivery"`
	ShippingMethod    string          `json:"shipping_method"`
}
