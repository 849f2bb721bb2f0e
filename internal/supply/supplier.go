// Package supply holds the supplier population: the growers and cooperatives
// contracts are negotiated against.
package supply

// Score bounds for the three clamped supplier attributes.
const (
	ScoreFloor   = 5.0
	ScoreCeiling = 10.0
)

// Supplier is a coffee producer. Created once at initialization and mutated
// in place by attribute drift; never deleted.
type Supplier struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Region              string   `json:"region"`
	Country             string   `json:"country,omitempty"`
	BeanTypes           []string `json:"bean_types"`
	Certifications      []string `json:"certifications"`
	QualityScore        float64  `json:"quality_score"`
	ReliabilityScore    float64  `json:"reliability_score"`
	SustainabilityScore float64  `json:"sustainability_score"`
	CapacityKgPerYear   int      `json:"capacity_kg_per_year"`
	YearsInBusiness     int      `json:"years_in_business"`
}

// Clone returns an independent deep copy.
func (s *Supplier) Clone() *Supplier {
	if s == nil {
		return nil
	}
	out := *s
	out.BeanTypes = append([]string(nil), s.BeanTypes...)
	out.Certifications = append([]string(nil), s.Certifications...)
	return &out
}

// ClampScore bounds a score attribute to [ScoreFloor, ScoreCeiling] and
// rounds it to one decimal place.
func ClampScore(v float64) float64 {
	if v < ScoreFloor {
		v = ScoreFloor
	}
	if v > ScoreCeiling {
		v = ScoreCeiling
	}
	return float64(int(v*10+0.5)) / 10
}
