package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shopstate/internal/models"
)

type PaymentRequest struct {
	OrderNumber string
	Method      models.PaymentMethod
	Amount      decimal.Decimal
}

type Authorization struct {
	Reference string
	Amount    decimal.Decimal
}

// PaymentGateway is the seam for a real payment provider. Authorize reserves
// the amount, Capture settles it, Fail releases it after a later step failed.
type PaymentGateway interface {
	Authorize(ctx context.Context, req PaymentRequest) (Authorization, error)
	Capture(ctx context.Context, auth Authorization) error
	Fail(ctx context.Context, auth Authorization, reason string) error
}

// SimulatedGateway approves every payment unless Decline is set.
type SimulatedGateway struct {
	Decline error
}

func (g SimulatedGateway) Authorize(_ context.Context, req PaymentRequest) (Authorization, error) {
	if g.Decline != nil {
		return Authorization{}, g.Decline
	}
	return Authorization{Reference: "SIM-" + uuid.NewString(), Amount: req.Amount}, nil
}

func (g SimulatedGateway) Capture(context.Context, Authorization) error {
	return nil
}

func (g SimulatedGateway) Fail(context.Context, Authorization, string) error {
	return nil
}
