// Order lifecycle: a biased random walk over a small state graph.
// pending → in_transit → delivered, with a delayed side-state; delivered and
// cancelled are absorbing.
package engine

import (
	"github.com/talgya/beanmarket/internal/entropy"
	"github.com/talgya/beanmarket/internal/trade"
)

// Lifecycle transition probabilities and ranges.
const (
	transitProb      = 0.8  // pending → in_transit once within the transit window
	delayProb        = 0.5  // of the remainder; overall 10% pending → delayed
	resumeProb       = 0.3  // delayed → in_transit per step
	transitWindow    = 30   // days before delivery when movement starts
	delayPushMinDays = 5
	delayPushMaxDays = 15
)

// advanceOrders advances every order's status by elapsed-time-to-delivery and
// random perturbation. Orders without a parsable delivery date are silently
// skipped for the step; terminal orders are never re-examined.
func (e *MarketEngine) advanceOrders() {
	for _, o := range e.orders {
		if o.Terminal() {
			continue
		}

		delivery, ok := o.DeliveryDate()
		if !ok {
			continue
		}
		daysUntil := int(delivery.Sub(e.simDate).Hours() / 24)

		switch {
		case o.Status == trade.OrderPending && daysUntil <= transitWindow:
			if e.src.Float64() < transitProb {
				o.Status = trade.OrderInTransit
				e.changes.Orders = append(e.changes.Orders, OrderChange{
					ID:        o.ID,
					OldStatus: trade.OrderPending,
					NewStatus: trade.OrderInTransit,
				})
			} else if e.src.Float64() < delayProb {
				o.Status = trade.OrderDelayed
				pushDays := entropy.IntBetween(e.src, delayPushMinDays, delayPushMaxDays)
				o.SetDeliveryDate(delivery.AddDate(0, 0, pushDays))
				e.changes.Orders = append(e.changes.Orders, OrderChange{
					ID:        o.ID,
					OldStatus: trade.OrderPending,
					NewStatus: trade.OrderDelayed,
					DelayDays: pushDays,
				})
			}

		case o.Status == trade.OrderInTransit && daysUntil <= 0:
			o.Status = trade.OrderDelivered
			o.ActualDeliveryDate = e.simDate.Format(trade.DateOnly)
			e.changes.Orders = append(e.changes.Orders, OrderChange{
				ID:        o.ID,
				OldStatus: trade.OrderInTransit,
				NewStatus: trade.OrderDelivered,
			})

		case o.Status == trade.OrderDelayed:
			// The delivery date already carries the earlier push.
			if e.src.Float64() < resumeProb {
				o.Status = trade.OrderInTransit
				e.changes.Orders = append(e.changes.Orders, OrderChange{
					ID:        o.ID,
					OldStatus: trade.OrderDelayed,
					NewStatus: trade.OrderInTransit,
				})
			}
		}
	}
}
