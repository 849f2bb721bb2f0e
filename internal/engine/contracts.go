// Contract fallback: keeps downstream order placement from starving when no
// contract is active.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/beanmarket/internal/catalog"
	"github.com/talgya/beanmarket/internal/entropy"
	"github.com/talgya/beanmarket/internal/market"
	"github.com/talgya/beanmarket/internal/trade"
)

const fallbackProb = 0.5

// ensureActiveContract synthesizes one active contract with probability 0.5
// when none is active. A synthesis failure is recorded in the step's
// change-log and the step proceeds; forward progress of the clock beats
// strict correctness here.
func (e *MarketEngine) ensureActiveContract() {
	for _, c := range e.contracts {
		if c.Status == trade.ContractActive {
			return
		}
	}
	if e.src.Float64() >= fallbackProb {
		return
	}

	contract, err := e.synthesizeContract()
	if err != nil {
		slog.Warn("contract synthesis failed", "error", err)
		e.changes.Contracts = append(e.changes.Contracts, ContractChange{
			Action: ActionSynthesisFailed,
			Reason: err.Error(),
		})
		return
	}

	e.contracts = append(e.contracts, contract)
	e.changes.Contracts = append(e.changes.Contracts, ContractChange{
		ID:       contract.ID,
		Action:   ActionCreated,
		Supplier: contract.SupplierName,
	})
	slog.Info("fallback contract created",
		"contract", contract.ID,
		"supplier", contract.SupplierName,
		"price_per_pound", contract.PricePerPound,
	)
}

// synthesizeContract fabricates an immediately-active contract from a random
// supplier, priced at a quality-weighted premium over the market average.
func (e *MarketEngine) synthesizeContract() (*trade.Contract, error) {
	if len(e.suppliers) == 0 {
		return nil, fmt.Errorf("no suppliers to contract with")
	}

	s := entropy.Pick(e.src, e.suppliers)

	start := e.simDate
	end := start.AddDate(0, 0, entropy.IntBetween(e.src, 90, 365))
	price := market.RoundCents(e.conditions.AveragePrice * (0.9 + 0.3*s.QualityScore/10))

	return &trade.Contract{
		ID:            fmt.Sprintf("contract_%s_%s", s.ID, uuid.NewString()[:8]),
		SupplierID:    s.ID,
		SupplierName:  s.Name,
		Status:        trade.ContractActive,
		StartDate:     start.Format(trade.DateOnly),
		EndDate:       end.Format(trade.DateOnly),
		PricePerPound: price,
		PricePerKg:    market.RoundCents(price * 2.20462),
		VolumeRange: trade.VolumeRange{
			MinLbs: entropy.IntBetween(e.src, 5000, 10000),
			MaxLbs: entropy.IntBetween(e.src, 15000, 30000),
		},
		BeanTypes: append([]string(nil), s.BeanTypes...),
		Terms: trade.Terms{
			PaymentTerms:               entropy.Pick(e.src, catalog.PaymentTerms),
			DeliveryTerms:              entropy.Pick(e.src, catalog.DeliveryTerms),
			QualityRequirements:        "SCA score 80+",
			SustainabilityRequirements: entropy.Pick(e.src, catalog.SustainabilityRequirements),
		},
	}, nil
}

// PlaceOrder creates an order under an active contract: volume at the
// contract price, a 30-60 day delivery window, and shipping details filled
// before the order is appended (never partially constructed).
func (e *MarketEngine) PlaceOrder(contractID string, volumeLbs int) (*trade.Order, error) {
	var contract *trade.Contract
	for _, c := range e.contracts {
		if c.ID == contractID {
			contract = c
			break
		}
	}
	if contract == nil {
		return nil, fmt.Errorf("contract %s not found", contractID)
	}
	if contract.Status != trade.ContractActive {
		return nil, fmt.Errorf("contract %s is not active", contractID)
	}

	delivery := e.simDate.AddDate(0, 0, entropy.IntBetween(e.src, 30, 60))
	order := &trade.Order{
		ID:                   fmt.Sprintf("order_%s_%s", contractID, uuid.NewString()[:8]),
		ContractID:           contractID,
		SupplierID:           contract.SupplierID,
		SupplierName:         contract.SupplierName,
		Status:               trade.OrderPending,
		VolumeLbs:            volumeLbs,
		PricePerPound:        contract.PricePerPound,
		TotalValue:           market.RoundCents(float64(volumeLbs) * contract.PricePerPound),
		OrderDate:            e.simDate.Format(trade.DateOnly),
		ExpectedDeliveryDate: delivery.Format(trade.DateOnly),
		ShippingDetails: trade.ShippingDetails{
			Carrier:         entropy.Pick(e.src, catalog.Carriers),
			TrackingNumber:  fmt.Sprintf("TRK%06d", entropy.IntBetween(e.src, 100000, 999999)),
			OriginPort:      fmt.Sprintf("Port of %s", e.CountryForSupplier(contract.SupplierID)),
			DestinationPort: "Seattle, USA",
		},
	}
	order.Normalize()

	e.orders = append(e.orders, order)
	e.changes.Orders = append(e.changes.Orders, OrderChange{
		ID:        order.ID,
		Action:    ActionCreated,
		Supplier:  order.SupplierName,
		VolumeLbs: order.VolumeLbs,
	})
	slog.Info("order placed",
		"order", order.ID,
		"supplier", order.SupplierName,
		"volume", humanize.Comma(int64(order.VolumeLbs))+" lbs",
		"total_value", order.TotalValue,
	)
	return order.Clone(), nil
}
