package market

import (
	"time"

	"github.com/talgya/beanmarket/internal/catalog"
	"github.com/talgya/beanmarket/internal/entropy"
)

// GenerateConditions builds the initial market snapshot: a base price in
// [4, 6], a 30-day back-filled multiplicative random walk for history,
// one-shot regional and bean-type offsets, sampled factors and forecast.
func GenerateConditions(src entropy.Source, now time.Time) *Conditions {
	basePrice := RoundCents(entropy.Range(src, 4.0, 6.0))

	// Back-fill history oldest-to-newest with daily returns in [-3%, +3%].
	history := make([]PricePoint, 0, HistoryCap)
	price := basePrice
	for i := HistoryCap; i > 0; i-- {
		date := now.AddDate(0, 0, -i)
		price = RoundCents(price * (1 + entropy.Range(src, -0.03, 0.03)))
		history = append(history, PricePoint{Date: date.Format(time.RFC3339), Price: price})
	}

	regional := make(map[string]float64, len(catalog.Regions))
	for _, region := range catalog.Regions {
		// One-shot offset in [-10%, +15%] from the base price.
		regional[region.Name] = RoundCents(basePrice * (1 + entropy.Range(src, -0.10, 0.15)))
	}

	// Arabica is the reference bean; the rest carry fixed premium/discount bands.
	beans := map[string]float64{
		"Arabica": basePrice,
		"Robusta": RoundCents(basePrice * entropy.Range(src, 0.7, 0.9)),
		"Bourbon": RoundCents(basePrice * entropy.Range(src, 1.05, 1.2)),
		"Typica":  RoundCents(basePrice * entropy.Range(src, 1.0, 1.15)),
		"Gesha":   RoundCents(basePrice * entropy.Range(src, 1.5, 2.5)),
	}

	factors := make([]Factor, 0, len(catalog.FactorNames))
	for _, name := range catalog.FactorNames {
		factors = append(factors, Factor{
			Name:    name,
			Status:  entropy.Pick(src, catalog.InitialFactorStatuses[name]),
			Impact:  entropy.Pick(src, catalog.FactorImpacts),
			Details: entropy.Pick(src, catalog.FactorDetails[name]),
		})
	}

	return &Conditions{
		Date:           now.Format(time.RFC3339),
		AveragePrice:   basePrice,
		PriceTrend:     entropy.Pick(src, []string{TrendRising, TrendStable, TrendFalling}),
		PriceHistory:   history,
		RegionalPrices: regional,
		BeanPrices:     beans,
		MarketFactors:  factors,
		Forecast: Forecast{
			ShortTerm: entropy.Pick(src, catalog.ShortTermForecasts),
			LongTerm:  entropy.Pick(src, catalog.LongTermForecasts),
		},
	}
}
