// Package trade holds the negotiated artifacts of the procurement process:
// contracts against suppliers and purchase orders derived from contracts.
package trade

// Contract statuses produced by the engine. The field is an open string so
// external negotiation layers can extend it (rejected, expired); the engine
// only ever writes these two.
const (
	ContractProposed = "proposed"
	ContractActive   = "active"
)

// VolumeRange bounds the purchasable volume under a contract.
type VolumeRange struct {
	MinLbs int `json:"min_lbs"`
	MaxLbs int `json:"max_lbs"`
}

// Terms are the nested commercial terms of a contract.
type Terms struct {
	PaymentTerms               string `json:"payment_terms"`
	DeliveryTerms              string `json:"delivery_terms"`
	QualityRequirements        string `json:"quality_requirements"`
	SustainabilityRequirements string `json:"sustainability_requirements"`
}

// Contract is a supply agreement with a supplier. Never deleted; it
// soft-expires by status only.
type Contract struct {
	ID            string      `json:"id"`
	SupplierID    string      `json:"supplier_id"`
	SupplierName  string      `json:"supplier_name,omitempty"`
	Status        string      `json:"status"`
	StartDate     string      `json:"start_date"`
	EndDate       string      `json:"end_date"`
	PricePerPound float64     `json:"price_per_pound"`
	PricePerKg    float64     `json:"price_per_kg,omitempty"`
	VolumeRange   VolumeRange `json:"volume_range"`
	VolumeLbs     int         `json:"volume_lbs,omitempty"`
	TotalValue    float64     `json:"total_value,omitempty"`
	BeanTypes     []string    `json:"bean_types"`
	Terms         Terms       `json:"terms"`
}

// Clone returns an independent deep copy.
func (c *Contract) Clone() *Contract {
	if c == nil {
		return nil
	}
	out := *c
	out.BeanTypes = append([]string(nil), c.BeanTypes...)
	return &out
}
