package models

import "github.com/shopspring/decimal"

// CartLine freezes the unit price at add time; it is never re-derived from the catalog.
type CartLine struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Size     string          `json:"size,omitempty"`
	Color    string          `json:"color,omitempty"`
	Image    string          `json:"image,omitempty"`
}

func (l CartLine) Matches(productID, size, color string) bool {
	return l.ID == productID && l.Size == size && l.Color == color
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// WishlistItem is the snapshot stored in likedProducts and savedProducts.
type WishlistItem struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	Image         string          `json:"image,omitempty"`
	Rating        *float64        `json:"rating,omitempty"`
	IsOnSale      bool            `json:"is_on_sale"`
}

func NewWishlistItem(p Product) WishlistItem {
	return WishlistItem{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.DisplayPrice(),
		OriginalPrice: p.Price,
		Image:         p.FirstImage(),
		Rating:        p.Rating,
		IsOnSale:      p.OnSale(),
	}
}
