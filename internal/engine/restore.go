package engine

import (
	"time"

	"github.com/talgya/beanmarket/internal/market"
	"github.com/talgya/beanmarket/internal/supply"
	"github.com/talgya/beanmarket/internal/trade"
)

// Restore replaces the engine state wholesale from a saved snapshot. The
// inputs are adopted directly (not cloned); the caller hands over ownership.
func (e *MarketEngine) Restore(
	suppliers []*supply.Supplier,
	contracts []*trade.Contract,
	orders []*trade.Order,
	conditions *market.Conditions,
	step int,
	simDate time.Time,
	harvestSeed int64,
) {
	if suppliers == nil {
		suppliers = []*supply.Supplier{}
	}
	if contracts == nil {
		contracts = []*trade.Contract{}
	}
	if orders == nil {
		orders = []*trade.Order{}
	}
	for _, o := range orders {
		o.Normalize()
	}
	if conditions == nil {
		conditions = &market.Conditions{}
	}

	e.suppliers = suppliers
	e.contracts = contracts
	e.orders = orders
	e.conditions = conditions
	e.step = step
	e.simDate = simDate
	e.harvest = market.NewHarvestField(harvestSeed)
	e.harvest.SetDay(step)
	e.changes = newStepChanges()
}
