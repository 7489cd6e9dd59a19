package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"sale_price,omitempty"`
	Category    string           `json:"category"`
	Sizes       []string         `json:"sizes,omitempty"`
	Colors      []string         `json:"colors,omitempty"`
	Images      []string         `json:"images,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	Featured    bool             `json:"featured"`
	Rating      *float64         `json:"rating,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Brand       string           `json:"brand,omitempty"`
	SKU         string           `json:"sku,omitempty"`
	CreatedAt   *time.Time       `json:"created_at,omitempty"`
}

// OnSale reports whether the sale price is set and strictly below the list price.
func (p Product) OnSale() bool {
	return p.SalePrice != nil && p.SalePrice.LessThan(p.Price)
}

// DisplayPrice is the price a shopper pays right now.
func (p Product) DisplayPrice() decimal.Decimal {
	if p.OnSale() {
		return *p.SalePrice
	}
	return p.Price
}

func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func (p Product) RatingValue() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}
