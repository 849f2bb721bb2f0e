// Market process: the trend-following daily price update.
package engine

import (
	"time"

	"github.com/talgya/beanmarket/internal/catalog"
	"github.com/talgya/beanmarket/internal/entropy"
	"github.com/talgya/beanmarket/internal/market"
)

// Per-step resample probabilities for the qualitative state.
const (
	factorResampleProb   = 0.10
	forecastResampleProb = 0.05
)

// advanceMarket runs the market sub-step: a momentum-biased price change,
// history append with eviction, trend rederivation, co-varying regional and
// bean tables, and occasional factor/forecast resampling.
func (e *MarketEngine) advanceMarket() {
	c := e.conditions
	c.Date = e.simDate.Format(time.RFC3339)

	oldPrice := c.AveragePrice

	// The sampling range follows the current trend label. Deliberate
	// momentum, not a martingale.
	var changePct float64
	switch c.PriceTrend {
	case market.TrendRising:
		changePct = entropy.Range(e.src, -0.01, 0.03)
	case market.TrendFalling:
		changePct = entropy.Range(e.src, -0.03, 0.01)
	default:
		changePct = entropy.Range(e.src, -0.015, 0.015)
	}

	newPrice := market.ClampPrice(market.RoundCents(oldPrice * (1 + changePct)))
	c.AveragePrice = newPrice

	c.AppendPrice(market.PricePoint{Date: c.Date, Price: newPrice})
	c.RecomputeTrend()

	// Regional and bean prices co-vary with the base change plus independent
	// noise, rounded to cents.
	for region, price := range c.RegionalPrices {
		regionalChange := changePct + entropy.Range(e.src, -0.01, 0.01)
		c.RegionalPrices[region] = market.RoundCents(price * (1 + regionalChange))
	}
	for bean, price := range c.BeanPrices {
		beanChange := changePct + entropy.Range(e.src, -0.01, 0.01)
		c.BeanPrices[bean] = market.RoundCents(price * (1 + beanChange))
	}

	if e.src.Float64() < factorResampleProb && len(c.MarketFactors) > 0 {
		i := e.src.IntN(len(c.MarketFactors))
		f := &c.MarketFactors[i]
		f.Status = entropy.Pick(e.src, catalog.FactorStatuses)
		f.Impact = entropy.Pick(e.src, catalog.FactorImpacts)
		if details, ok := catalog.FactorDetails[f.Name]; ok {
			f.Details = entropy.Pick(e.src, details)
		}
	}

	if e.src.Float64() < forecastResampleProb {
		c.Forecast = market.Forecast{
			ShortTerm: entropy.Pick(e.src, catalog.ShortTermForecasts),
			LongTerm:  entropy.Pick(e.src, catalog.LongTermForecasts),
		}
	}

	if e.harvest != nil {
		e.harvest.Advance()
		c.HarvestOutlook = e.harvest.Outlook()
	}

	e.changes.MarketConditions = &MarketChange{
		OldPrice:  oldPrice,
		NewPrice:  newPrice,
		ChangePct: changePct,
	}
}
