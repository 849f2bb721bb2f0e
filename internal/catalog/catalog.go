// Package catalog holds the fixed vocabularies of the coffee-procurement
// world: growing regions with their bean palettes, certifications, the
// region→country table, and the phrase tables used by market factors,
// forecasts, and order tracking.
package catalog

// Region describes a coffee-growing origin and the beans it produces.
type Region struct {
	Name       string
	Beans      []string
	QualityMin float64 // Typical quality-score floor for the region
	QualityMax float64 // Typical quality-score ceiling
}

// Regions is the fixed 8-origin catalogue suppliers are drawn from.
var Regions = []Region{
	{Name: "Ethiopia", Beans: []string{"Arabica", "Typica", "Bourbon"}, QualityMin: 7.5, QualityMax: 9.5},
	{Name: "Colombia", Beans: []string{"Arabica", "Bourbon", "Typica"}, QualityMin: 7.0, QualityMax: 9.0},
	{Name: "Brazil", Beans: []string{"Arabica", "Bourbon", "Robusta"}, QualityMin: 6.5, QualityMax: 8.5},
	{Name: "Vietnam", Beans: []string{"Robusta", "Arabica"}, QualityMin: 6.0, QualityMax: 8.0},
	{Name: "Guatemala", Beans: []string{"Arabica", "Bourbon", "Typica"}, QualityMin: 7.0, QualityMax: 9.0},
	{Name: "Costa Rica", Beans: []string{"Arabica", "Gesha", "Typica"}, QualityMin: 7.5, QualityMax: 9.5},
	{Name: "Kenya", Beans: []string{"Arabica", "SL28", "SL34"}, QualityMin: 7.5, QualityMax: 9.5},
	{Name: "Indonesia", Beans: []string{"Arabica", "Robusta", "Typica"}, QualityMin: 6.5, QualityMax: 8.5},
}

// RegionNames returns the catalogue region names in order.
func RegionNames() []string {
	names := make([]string, len(Regions))
	for i, r := range Regions {
		names[i] = r.Name
	}
	return names
}

// RegionByName returns the catalogue entry for a region, or nil.
func RegionByName(name string) *Region {
	for i := range Regions {
		if Regions[i].Name == name {
			return &Regions[i]
		}
	}
	return nil
}

// Certifications a supplier may hold.
var Certifications = []string{"Organic", "Fair Trade", "Rainforest Alliance", "UTZ", "Bird Friendly"}

// BeanTypes tracked in the bean price table.
var BeanTypes = []string{"Arabica", "Robusta", "Bourbon", "Typica", "Gesha"}

// CountriesByArea maps sourcing areas to producing countries. Lookups for
// names outside the table (including catalogue origin regions, which are
// already countries) fall through to "Unknown".
var CountriesByArea = map[string][]string{
	"Central America": {"Guatemala", "Costa Rica", "Honduras", "Nicaragua", "El Salvador", "Panama"},
	"South America":   {"Brazil", "Colombia", "Peru", "Ecuador", "Bolivia"},
	"Africa":          {"Ethiopia", "Kenya", "Rwanda", "Tanzania", "Uganda", "Burundi"},
	"Asia":            {"Vietnam", "Indonesia", "India", "Papua New Guinea", "Thailand", "Laos"},
}

// Market factor names. Exactly these three factors exist.
const (
	FactorWeather   = "Weather Conditions"
	FactorPolitical = "Political Stability"
	FactorDemand    = "Global Demand"
)

// FactorNames in canonical order.
var FactorNames = []string{FactorWeather, FactorPolitical, FactorDemand}

// InitialFactorStatuses holds the per-factor status vocabulary used when the
// world is first generated. Re-samples during the simulation use
// FactorStatuses instead.
var InitialFactorStatuses = map[string][]string{
	FactorWeather:   {"Favorable", "Mixed", "Concerning"},
	FactorPolitical: {"Stable", "Some Concerns", "Unstable"},
	FactorDemand:    {"Growing", "Stable", "Declining"},
}

// FactorStatuses and FactorImpacts are the shared resample vocabularies.
var (
	FactorStatuses = []string{"Favorable", "Mixed", "Concerning"}
	FactorImpacts  = []string{"Minimal", "Moderate", "Significant"}
)

// FactorDetails is keyed by factor name.
var FactorDetails = map[string][]string{
	FactorWeather: {
		"Ideal rainfall in major growing regions",
		"Drought conditions in parts of Brazil",
		"Excessive rainfall in Colombia affecting harvest",
		"Normal seasonal patterns across most regions",
		"Frost concerns in Brazil",
		"Hurricane damage in Central America",
	},
	FactorPolitical: {
		"No major political disruptions in key regions",
		"Political tensions in Ethiopia affecting exports",
		"Trade policy changes impacting shipping costs",
		"Labor disputes in Colombia affecting production",
		"New export regulations in Vietnam",
		"Currency devaluation in Brazil affecting prices",
	},
	FactorDemand: {
		"Steady increase in global coffee consumption",
		"Shifting consumer preferences toward specialty coffee",
		"Economic slowdown affecting cafe sales",
		"New markets emerging in Asia",
		"Increased home consumption trends",
		"Seasonal demand fluctuations",
	},
}

// Forecast vocabularies.
var (
	ShortTermForecasts = []string{"Price increase expected", "Stable prices likely", "Price decrease expected"}
	LongTermForecasts  = []string{"Upward trend", "Stable market", "Downward pressure", "Increased volatility"}
)

// Contract terms vocabularies.
var (
	PaymentTerms  = []string{"Net 30", "Net 45", "Net 60"}
	DeliveryTerms = []string{"FOB", "CIF", "EXW"}
	SustainabilityRequirements = []string{
		"Rainforest Alliance Certified",
		"Organic Certified",
		"Fair Trade Certified",
		"Standard Practices",
	}
)

// Shipping vocabularies used when orders are placed.
var Carriers = []string{"OceanFreight", "AirCargo", "LandTransport"}

// Order tracking narrative vocabularies, keyed by lifecycle stage.
var (
	TransitLocations = []string{
		"Origin port", "Atlantic Ocean", "Pacific Ocean",
		"Destination port", "Customs clearance", "Local distribution center",
	}
	DelayLocations = []string{"Origin port", "Customs clearance", "International waters", "Transshipment port"}
	DelayReasons   = []string{
		"Weather-related shipping delay",
		"Customs processing delay",
		"Logistics coordination issue",
		"Documentation discrepancy",
	}
	QualityCheckStatuses = []string{"Pending", "In progress", "Completed - Passed", "Completed - Minor issues"}
)
