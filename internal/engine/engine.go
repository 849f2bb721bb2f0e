// Package engine drives the procurement market simulation: it advances a
// global simulated clock one day per step and mutates the price process,
// order lifecycles, supplier attributes, and contract availability, recording
// a structured per-step diff.
//
// The engine is single-writer by design. It holds no internal locks; callers
// running concurrently must serialize AdvanceStep and all mutating accessors
// through a lock of their own. Every read accessor returns deep copies, so
// snapshots handed out remain valid while the next step runs.
package engine

import (
	"fmt"
	"time"

	"github.com/talgya/beanmarket/internal/catalog"
	"github.com/talgya/beanmarket/internal/entropy"
	"github.com/talgya/beanmarket/internal/market"
	"github.com/talgya/beanmarket/internal/supply"
	"github.com/talgya/beanmarket/internal/trade"
)

// MarketEngine owns the full simulation state.
type MarketEngine struct {
	src entropy.Source

	suppliers  []*supply.Supplier
	contracts  []*trade.Contract
	orders     []*trade.Order
	conditions *market.Conditions
	harvest    *market.HarvestField

	simDate time.Time
	step    int
	changes *StepChanges
}

// New creates an engine with empty state. Call Initialize (or Restore) before
// stepping.
func New(src entropy.Source) *MarketEngine {
	return &MarketEngine{
		src:        src,
		conditions: &market.Conditions{},
		changes:    newStepChanges(),
		simDate:    time.Now(),
	}
}

// Initialize generates the starting population: count suppliers (10 when
// count <= 0), no contracts, no orders, and a fresh market snapshot.
func (e *MarketEngine) Initialize(count int, seed int64) {
	e.simDate = time.Now()
	e.step = 0
	e.suppliers = supply.Generate(e.src, count)
	e.contracts = []*trade.Contract{}
	e.orders = []*trade.Order{}
	e.harvest = market.NewHarvestField(seed)
	e.conditions = market.GenerateConditions(e.src, e.simDate)
	e.conditions.HarvestOutlook = e.harvest.Outlook()
	e.changes = newStepChanges()
}

// AdvanceStep advances the simulated clock one day and runs the fixed
// sub-step order: market process, order lifecycle, supplier drift
// (probabilistic), contract fallback. The change-log is reset first, so
// Changes afterwards reflects exactly this step.
func (e *MarketEngine) AdvanceStep() {
	e.step++
	e.simDate = e.simDate.AddDate(0, 0, 1)
	e.changes = newStepChanges()

	e.advanceMarket()
	e.advanceOrders()
	if e.src.Float64() < 0.2 {
		e.driftSupplier()
	}
	e.ensureActiveContract()
}

// Step returns the number of steps taken.
func (e *MarketEngine) Step() int { return e.step }

// SimDate returns the current simulated date.
func (e *MarketEngine) SimDate() time.Time { return e.simDate }

// Suppliers returns a deep copy of the supplier population.
func (e *MarketEngine) Suppliers() []*supply.Supplier {
	out := make([]*supply.Supplier, len(e.suppliers))
	for i, s := range e.suppliers {
		out[i] = s.Clone()
	}
	return out
}

// Contracts returns a deep copy of all contracts.
func (e *MarketEngine) Contracts() []*trade.Contract {
	out := make([]*trade.Contract, len(e.contracts))
	for i, c := range e.contracts {
		out[i] = c.Clone()
	}
	return out
}

// Orders returns a deep copy of all orders.
func (e *MarketEngine) Orders() []*trade.Order {
	out := make([]*trade.Order, len(e.orders))
	for i, o := range e.orders {
		out[i] = o.Clone()
	}
	return out
}

// MarketConditions returns a deep copy of the market snapshot.
func (e *MarketEngine) MarketConditions() *market.Conditions {
	return e.conditions.Clone()
}

// Changes returns a deep copy of the current step's diff. Calling it twice
// without an intervening step yields identical snapshots.
func (e *MarketEngine) Changes() *StepChanges {
	return e.changes.Clone()
}

// AddContract appends a contract. The only shape requirement is a non-empty
// ID; duplicate IDs are tolerated (idempotent-retry callers re-send adds).
func (e *MarketEngine) AddContract(c *trade.Contract) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("add contract: missing id")
	}
	e.contracts = append(e.contracts, c.Clone())
	e.changes.Contracts = append(e.changes.Contracts, ContractChange{
		ID:     c.ID,
		Action: ActionAdd,
	})
	return nil
}

// AddOrder appends an order after normalizing its delivery date. The only
// shape requirement is a non-empty ID; duplicate IDs are tolerated.
func (e *MarketEngine) AddOrder(o *trade.Order) error {
	if o == nil || o.ID == "" {
		return fmt.Errorf("add order: missing id")
	}
	in := o.Clone()
	in.Normalize()
	e.orders = append(e.orders, in)
	e.changes.Orders = append(e.changes.Orders, OrderChange{
		ID:        in.ID,
		Action:    ActionCreated,
		Supplier:  in.SupplierName,
		VolumeLbs: in.VolumeLbs,
	})
	return nil
}

// UpdateContract replaces the first contract with a matching ID. Silent
// no-op when the ID is absent.
func (e *MarketEngine) UpdateContract(c *trade.Contract) {
	if c == nil {
		return
	}
	for i, existing := range e.contracts {
		if existing.ID == c.ID {
			e.contracts[i] = c.Clone()
			e.changes.Contracts = append(e.changes.Contracts, ContractChange{
				ID:     c.ID,
				Action: ActionUpdated,
			})
			return
		}
	}
}

// UpdateOrder replaces the first order with a matching ID, renormalizing its
// delivery date. Silent no-op when the ID is absent.
func (e *MarketEngine) UpdateOrder(o *trade.Order) {
	if o == nil {
		return
	}
	for i, existing := range e.orders {
		if existing.ID == o.ID {
			in := o.Clone()
			in.Normalize()
			e.orders[i] = in
			e.changes.Orders = append(e.changes.Orders, OrderChange{
				ID:     o.ID,
				Action: ActionUpdated,
			})
			return
		}
	}
}

// UpdateContractStatus transitions a contract's status by ID. Silent no-op
// when the ID is absent.
func (e *MarketEngine) UpdateContractStatus(contractID, status string) {
	for _, c := range e.contracts {
		if c.ID == contractID {
			old := c.Status
			c.Status = status
			e.changes.Contracts = append(e.changes.Contracts, ContractChange{
				ID:        contractID,
				Action:    ActionUpdateStatus,
				OldStatus: old,
				NewStatus: status,
			})
			return
		}
	}
}

// UpdateOrderStatus transitions an order's status by ID. Silent no-op when
// the ID is absent.
func (e *MarketEngine) UpdateOrderStatus(orderID, status string) {
	for _, o := range e.orders {
		if o.ID == orderID {
			old := o.Status
			o.Status = status
			e.changes.Orders = append(e.changes.Orders, OrderChange{
				ID:        orderID,
				Action:    ActionUpdateStatus,
				OldStatus: old,
				NewStatus: status,
			})
			return
		}
	}
}

// UpdateOrderDelivery rewrites an order's expected delivery date (whichever
// legacy field it carries). Silent no-op when the ID is absent or the date
// does not parse.
func (e *MarketEngine) UpdateOrderDelivery(orderID, expectedDelivery string) {
	for _, o := range e.orders {
		if o.ID == orderID {
			t, ok := trade.ParseFlexibleDate(expectedDelivery)
			if !ok {
				return
			}
			old := o.ExpectedDelivery
			if old == "" {
				old = o.ExpectedDeliveryDate
			}
			o.SetDeliveryDate(t)
			e.changes.Orders = append(e.changes.Orders, OrderChange{
				ID:          orderID,
				Action:      ActionUpdateDelivery,
				OldDelivery: old,
				NewDelivery: expectedDelivery,
			})
			return
		}
	}
}

// CountryForRegion returns a producing country for a sourcing area, or
// "Unknown" for names outside the fixed table.
func (e *MarketEngine) CountryForRegion(region string) string {
	if countries, ok := catalog.CountriesByArea[region]; ok {
		return entropy.Pick(e.src, countries)
	}
	return "Unknown"
}

// CountryForSupplier returns the country a supplier is located in, falling
// back through its region to "Unknown".
func (e *MarketEngine) CountryForSupplier(supplierID string) string {
	for _, s := range e.suppliers {
		if s.ID == supplierID {
			if s.Country != "" {
				return s.Country
			}
			if s.Region != "" {
				// Catalogue regions are themselves producing countries.
				if catalog.RegionByName(s.Region) != nil {
					return s.Region
				}
				return e.CountryForRegion(s.Region)
			}
			break
		}
	}
	return "Unknown"
}

func (e *MarketEngine) supplierByID(id string) *supply.Supplier {
	for _, s := range e.suppliers {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (e *MarketEngine) orderByID(id string) *trade.Order {
	for _, o := range e.orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}
