package order

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shopstate/internal/models"
)

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// Invoice renders the downloadable plain-text bill for an order.
func Invoice(o models.Order) string {
	var b strings.Builder
	ci := o.CustomerInfo

	b.WriteString("ORDER CONFIRMATION\n")
	b.WriteString("==================\n")
	fmt.Fprintf(&b, "Order Number: %s\n", o.OrderNumber)
	fmt.Fprintf(&b, "Date: %s\n\n", o.OrderDate.Format("01/02/2006"))

	b.WriteString("SHIPPING TO:\n")
	fmt.Fprintf(&b, "%s\n%s\n%s, %s\n%s\n%s\n\n", ci.Name, ci.Address, ci.City, ci.PostalCode, ci.Email, ci.Phone)

	b.WriteString("ORDER SUMMARY:\n")
	for _, it := range o.Items {
		variant := ""
		if v := variantLabel(it.Size, it.Color); v != "" {
			variant = " (" + v + ")"
		}
		line := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		fmt.Fprintf(&b, "%s%s x%d - %s\n", it.Name, variant, it.Quantity, money(line))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Subtotal: %s\n", money(o.Subtotal))
	if o.ShippingCost.IsZero() {
		b.WriteString("Shipping: FREE\n")
	} else {
		fmt.Fprintf(&b, "Shipping: %s\n", money(o.ShippingCost))
	}
	fmt.Fprintf(&b, "Tax: %s\n", money(o.Tax))
	fmt.Fprintf(&b, "Discount: %s\n", money(o.Discount))
	fmt.Fprintf(&b, "Total: %s\n\n", money(o.TotalAmount))

	fmt.Fprintf(&b, "Shipping Method: %s\n", o.ShippingMethod)
	fmt.Fprintf(&b, "Estimated Delivery: %s\n", o.EstimatedDelivery)
	fmt.Fprintf(&b, "Payment Method: %s\n", strings.ReplaceAll(string(o.PaymentMethod), "_", " "))
	fmt.Fprintf(&b, "Payment Status: %s\n", o.PaymentStatus)
	fmt.Fprintf(&b, "Order Status: %s\n", o.Status)
	return b.String()
}

// variantLabel joins the non-empty options with ", ", leaving the values as given.
func variantLabel(opts ...string) string {
	parts := make([]string, 0, len(opts))
	for _, o := range opts {
		if o != "" {
			parts = append(parts, o)
		}
	}
	return strings.Join(parts, ", ")
}
