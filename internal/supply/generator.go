package supply

import (
	"fmt"

	"github.com/talgya/beanmarket/internal/catalog"
	"github.com/talgya/beanmarket/internal/entropy"
)

// DefaultCount is the supplier population size when none is requested.
const DefaultCount = 10

// Generate draws a supplier population from the region catalogue.
// Each supplier gets a uniformly chosen region, 1-2 of that region's beans,
// 0-3 certifications, a quality score inside the region's typical range, and
// the remaining attributes from fixed global ranges.
func Generate(src entropy.Source, count int) []*Supplier {
	if count <= 0 {
		count = DefaultCount
	}

	suppliers := make([]*Supplier, 0, count)
	for i := 1; i <= count; i++ {
		region := entropy.Pick(src, catalog.Regions)

		beanCount := entropy.IntBetween(src, 1, 2)
		beans := entropy.Sample(src, region.Beans, beanCount)

		certCount := entropy.IntBetween(src, 0, 3)
		certs := entropy.Sample(src, catalog.Certifications, certCount)

		quality := ClampScore(entropy.Range(src, region.QualityMin, region.QualityMax))

		suppliers = append(suppliers, &Supplier{
			ID:                  fmt.Sprintf("S%d", i),
			Name:                fmt.Sprintf("%s Coffee Cooperative %d", region.Name, i),
			Region:              region.Name,
			BeanTypes:           beans,
			Certifications:      certs,
			QualityScore:        quality,
			ReliabilityScore:    ClampScore(entropy.Range(src, 6.0, 9.5)),
			SustainabilityScore: ClampScore(entropy.Range(src, 5.0, 10.0)),
			CapacityKgPerYear:   entropy.IntBetween(src, 10, 100) * 1000,
			YearsInBusiness:     entropy.IntBetween(src, 3, 50),
		})
	}
	return suppliers
}
