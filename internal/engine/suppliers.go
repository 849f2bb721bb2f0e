// Supplier drift: occasional bounded perturbation of one supplier attribute.
package engine

import (
	"github.com/talgya/beanmarket/internal/entropy"
	"github.com/talgya/beanmarket/internal/supply"
)

// Drift update kinds.
const (
	driftQuality        = "quality"
	driftReliability    = "reliability"
	driftSustainability = "sustainability"
	driftCapacity       = "capacity"
)

var driftKinds = []string{driftQuality, driftReliability, driftSustainability, driftCapacity}

// driftSupplier picks one supplier and one mutable attribute uniformly at
// random and applies a bounded perturbation: additive ±0.5 clamped for the
// scores, multiplicative ±10% (unclamped) for capacity.
func (e *MarketEngine) driftSupplier() {
	if len(e.suppliers) == 0 {
		return
	}
	s := entropy.Pick(e.src, e.suppliers)
	kind := entropy.Pick(e.src, driftKinds)

	var oldValue, newValue float64
	switch kind {
	case driftQuality:
		oldValue = s.QualityScore
		s.QualityScore = supply.ClampScore(oldValue + entropy.Range(e.src, -0.5, 0.5))
		newValue = s.QualityScore
	case driftReliability:
		oldValue = s.ReliabilityScore
		s.ReliabilityScore = supply.ClampScore(oldValue + entropy.Range(e.src, -0.5, 0.5))
		newValue = s.ReliabilityScore
	case driftSustainability:
		oldValue = s.SustainabilityScore
		s.SustainabilityScore = supply.ClampScore(oldValue + entropy.Range(e.src, -0.5, 0.5))
		newValue = s.SustainabilityScore
	case driftCapacity:
		oldValue = float64(s.CapacityKgPerYear)
		s.CapacityKgPerYear = int(oldValue * (1 + entropy.Range(e.src, -0.1, 0.1)))
		newValue = float64(s.CapacityKgPerYear)
	}

	e.changes.Suppliers = append(e.changes.Suppliers, SupplierChange{
		ID:         s.ID,
		Name:       s.Name,
		UpdateType: kind,
		OldValue:   oldValue,
		NewValue:   newValue,
	})
}
