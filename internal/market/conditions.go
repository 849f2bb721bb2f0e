// Package market owns the global price process: the average-price series with
// its bounded history ring, regional and per-bean price tables, qualitative
// market factors, and the forecast.
package market

import "math"

// Price trend labels derived from recent history.
const (
	TrendRising  = "Rising"
	TrendFalling = "Falling"
	TrendStable  = "Stable"
)

// Bounds of the average price and capacity of the history ring.
const (
	PriceFloor   = 3.0
	PriceCeiling = 10.0
	HistoryCap   = 30
)

// PricePoint is one day of price history.
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// Factor is one qualitative market condition (weather, politics, demand).
type Factor struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Impact  string `json:"impact"`
	Details string `json:"details"`
}

// Forecast is the qualitative outlook pair.
type Forecast struct {
	ShortTerm string `json:"short_term"`
	LongTerm  string `json:"long_term"`
}

// Conditions is the singleton market snapshot. Mutated every step; exactly
// one instance exists per engine.
type Conditions struct {
	Date           string             `json:"date"`
	AveragePrice   float64            `json:"average_price"`
	PriceTrend     string             `json:"price_trend"`
	PriceHistory   []PricePoint       `json:"price_history"`
	RegionalPrices map[string]float64 `json:"regional_prices"`
	BeanPrices     map[string]float64 `json:"bean_prices"`
	MarketFactors  []Factor           `json:"market_factors"`
	Forecast       Forecast           `json:"forecast"`
	HarvestOutlook map[string]float64 `json:"harvest_outlook,omitempty"`
}

// Clone returns an independent deep copy.
func (c *Conditions) Clone() *Conditions {
	if c == nil {
		return nil
	}
	out := *c
	out.PriceHistory = append([]PricePoint(nil), c.PriceHistory...)
	out.RegionalPrices = cloneMap(c.RegionalPrices)
	out.BeanPrices = cloneMap(c.BeanPrices)
	out.HarvestOutlook = cloneMap(c.HarvestOutlook)
	out.MarketFactors = append([]Factor(nil), c.MarketFactors...)
	return &out
}

func cloneMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// AppendPrice pushes a point onto the history ring, evicting the oldest
// entries beyond HistoryCap.
func (c *Conditions) AppendPrice(p PricePoint) {
	c.PriceHistory = append(c.PriceHistory, p)
	if len(c.PriceHistory) > HistoryCap {
		c.PriceHistory = c.PriceHistory[len(c.PriceHistory)-HistoryCap:]
	}
}

// RecomputeTrend rederives the trend label from the last 5 history points:
// a >2% move between the first and last of the window flips the label.
// Fewer than 5 points leaves the trend unchanged.
func (c *Conditions) RecomputeTrend() {
	n := len(c.PriceHistory)
	if n < 5 {
		return
	}
	first := c.PriceHistory[n-5].Price
	last := c.PriceHistory[n-1].Price
	switch {
	case last > first*1.02:
		c.PriceTrend = TrendRising
	case last < first*0.98:
		c.PriceTrend = TrendFalling
	default:
		c.PriceTrend = TrendStable
	}
}

// ClampPrice bounds an average price to [PriceFloor, PriceCeiling].
func ClampPrice(p float64) float64 {
	return math.Max(PriceFloor, math.Min(PriceCeiling, p))
}

// RoundCents rounds a price to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
