package engine

// Change-log actions recorded during a step or by mutating accessors.
const (
	ActionAdd             = "add"
	ActionCreated         = "created"
	ActionUpdated         = "updated"
	ActionUpdateStatus    = "update_status"
	ActionUpdateDelivery  = "update_delivery"
	ActionSynthesisFailed = "synthesis_failed"
)

// SupplierChange records one supplier attribute drift.
type SupplierChange struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	UpdateType string  `json:"update_type"`
	OldValue   float64 `json:"old_value"`
	NewValue   float64 `json:"new_value"`
}

// ContractChange records a contract mutation or synthesis outcome.
type ContractChange struct {
	ID        string `json:"id,omitempty"`
	Action    string `json:"action"`
	Supplier  string `json:"supplier,omitempty"`
	OldStatus string `json:"old_status,omitempty"`
	NewStatus string `json:"new_status,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// OrderChange records an order creation or status/delivery transition.
type OrderChange struct {
	ID          string `json:"id"`
	Action      string `json:"action,omitempty"`
	OldStatus   string `json:"old_status,omitempty"`
	NewStatus   string `json:"new_status,omitempty"`
	DelayDays   int    `json:"delay_days,omitempty"`
	Supplier    string `json:"supplier,omitempty"`
	VolumeLbs   int    `json:"volume,omitempty"`
	OldDelivery string `json:"old_delivery,omitempty"`
	NewDelivery string `json:"new_delivery,omitempty"`
}

// MarketChange records the step's average-price move.
type MarketChange struct {
	OldPrice  float64 `json:"old_price"`
	NewPrice  float64 `json:"new_price"`
	ChangePct float64 `json:"change_pct"`
}

// StepChanges is the per-step diff returned by Changes. Reset to empty at the
// start of every AdvanceStep; it is a diff, not a log.
type StepChanges struct {
	Suppliers        []SupplierChange `json:"suppliers"`
	Contracts        []ContractChange `json:"contracts"`
	Orders           []OrderChange    `json:"orders"`
	MarketConditions *MarketChange    `json:"market_conditions,omitempty"`
}

func newStepChanges() *StepChanges {
	return &StepChanges{
		Suppliers: []SupplierChange{},
		Contracts: []ContractChange{},
		Orders:    []OrderChange{},
	}
}

// Clone returns an independent deep copy.
func (c *StepChanges) Clone() *StepChanges {
	if c == nil {
		return nil
	}
	out := &StepChanges{
		Suppliers: append([]SupplierChange{}, c.Suppliers...),
		Contracts: append([]ContractChange{}, c.Contracts...),
		Orders:    append([]OrderChange{}, c.Orders...),
	}
	if c.MarketConditions != nil {
		mc := *c.MarketConditions
		out.MarketConditions = &mc
	}
	return out
}
