package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type DeliveryOption struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Cost decimal.Decimal `json:"cost"`
	Days int             `json:"days"`
}

var (
	DeliveryStandard = DeliveryOption{ID: "standard", Name: "Standard Delivery", Cost: decimal.RequireFromString("5.99"), Days: 3}
	DeliveryExpress  = DeliveryOption{ID: "express", Name: "Express Delivery", Cost: decimal.RequireFromString("12.99"), Days: 2}
	DeliveryPriority = DeliveryOption{ID: "priority", Name: "Priority Delivery", Cost: decimal.RequireFromString("19.99"), Days: 1}
)

func DeliveryOptions() []DeliveryOption {
	return []DeliveryOption{DeliveryStandard, DeliveryExpress, DeliveryPriority}
}

// DeliveryOptionByID falls back to standard delivery for an empty id.
func DeliveryOptionByID(id string) (DeliveryOption, bool) {
	if id == "" {
		return DeliveryStandard, true
	}
	for _, o := range DeliveryOptions() {
		if o.ID == id {
			return o, true
		}
	}
	return DeliveryOption{}, false
}

const estimateLayout = "January 2, 2006"

func EstimatedDelivery(from time.Time, days int) string {
	return from.AddDate(0, 0, days).Format(estimateLayout)
}
