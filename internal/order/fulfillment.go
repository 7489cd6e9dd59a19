package order

import (
	"context"
	"time"

	"github.com/Skotchmaster/shopstate/internal/models"
	"github.com/Skotchmaster/shopstate/pkg/logging"
)

type FulfillmentStep struct {
	Status models.OrderStatus
	After  time.Duration
}

func DefaultFulfillmentSteps() []FulfillmentStep {
	return []FulfillmentStep{
		{Status: models.OrderStatusShipped, After: 30 * time.Second},
		{Status: models.OrderStatusDelivered, After: time.Minute},
	}
}

// SimulateFulfillment walks an order through steps in the background. The
// returned channel yields the first error, or nil once every step is applied,
// and is then closed. Cancelling ctx stops the walk with ctx.Err().
func (s *OrderService) SimulateFulfillment(ctx context.Context, number string, steps []FulfillmentStep) <-chan error {
	done := make(chan error, 1)
	l := logging.FromContext(ctx).With("svc", "order.fulfillment")

	go func() {
		defer close(done)
		for _, step := range steps {
			t := time.NewTimer(step.After)
			select {
			case <-ctx.Done():
				t.Stop()
				done <- ctx.Err()
				return
			case <-t.C:
			}

			if _, err := s.AdvanceStatus(ctx, number, step.Status); err != nil {
				l.Warn("fulfillment_step_error", "order_number", number, "status", step.Status, "error", err)
				done <- err
				return
			}
		}
		done <- nil
	}()
	return done
}
