package cart

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shopstate/internal/models"
)

var ErrInvalidPromo = errors.New("invalid promo code")

var (
	DefaultFreeShippingThreshold = decimal.NewFromInt(100)
	DefaultTaxRate               = decimal.RequireFromString("0.08")
)

type TotalsOptions struct {
	FreeShippingThreshold decimal.Decimal
	BaseShippingCost      decimal.Decimal
	TaxRate               decimal.Decimal
	Discount              decimal.Decimal
}

// DefaultTotalsOptions uses the storefront defaults with the given base shipping.
func DefaultTotalsOptions(baseShipping decimal.Decimal) TotalsOptions {
	return TotalsOptions{
		FreeShippingThreshold: DefaultFreeShippingThreshold,
		BaseShippingCost:      baseShipping,
		TaxRate:               DefaultTaxRate,
	}
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals prices a set of lines. Shipping is free only when the subtotal
// is strictly above the threshold.
func ComputeTotals(lines []models.CartLine, opt TotalsOptions) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}

	shipping := opt.BaseShippingCost
	if subtotal.GreaterThan(opt.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(opt.TaxRate)
	total := subtotal.Add(shipping).Add(tax).Sub(opt.Discount)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Discount: opt.Discount,
		Total:    total,
	}
}

const (
	PromoSave10   = "SAVE10"
	PromoFreeShip = "FREESHIP"
)

// NormalizePromo upper-cases and trims a user-entered code.
func NormalizePromo(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ResolvePromo returns the discount a code grants for the given lines.
// An empty code grants nothing and is not an error.
func ResolvePromo(code string, lines []models.CartLine, opt TotalsOptions) (decimal.Decimal, error) {
	code = NormalizePromo(code)
	if code == "" {
		return decimal.Zero, nil
	}

	base := ComputeTotals(lines, TotalsOptions{
		FreeShippingThreshold: opt.FreeShippingThreshold,
		BaseShippingCost:      opt.BaseShippingCost,
		TaxRate:               opt.TaxRate,
	})

	switch code {
	case PromoSave10:
		return base.Subtotal.Mul(decimal.RequireFromString("0.1")), nil
	case PromoFreeShip:
		return base.Shipping, nil
	default:
		return decimal.Zero, ErrInvalidPromo
	}
}

// TotalsWithPromo resolves code and folds the discount into the totals.
func TotalsWithPromo(lines []models.CartLine, opt TotalsOptions, code string) (Totals, error) {
	discount, err := ResolvePromo(code, lines, opt)
	if err != nil {
		return Totals{}, err
	}
	opt.Discount = discount
	return ComputeTotals(lines, opt), nil
}
