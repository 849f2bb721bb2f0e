package trade

import (
	"strings"
	"time"
)

// Order lifecycle statuses. placed and partially_delivered come from external
// order tools; the lifecycle machine never produces them but the tracking
// view renders them.
const (
	OrderPlaced             = "placed"
	OrderPending            = "pending"
	OrderInTransit          = "in_transit"
	OrderDelayed            = "delayed"
	OrderDelivered          = "delivered"
	OrderCancelled          = "cancelled"
	OrderPartiallyDelivered = "partially_delivered"
)

// DateOnly is the plain-date wire format accepted alongside full timestamps.
const DateOnly = "2006-01-02"

// ShippingDetails describe how an order moves from origin to destination.
type ShippingDetails struct {
	Carrier         string `json:"carrier,omitempty"`
	TrackingNumber  string `json:"tracking_number,omitempty"`
	OriginPort      string `json:"origin_port,omitempty"`
	DestinationPort string `json:"destination_port,omitempty"`
}

// Order is a purchase order under a contract. Two legacy delivery-date field
// names are accepted on the wire (expected_delivery and
// expected_delivery_date); whichever is present is the live field and is the
// one rewritten when the date moves.
type Order struct {
	ID                   string          `json:"id"`
	ContractID           string          `json:"contract_id,omitempty"`
	SupplierID           string          `json:"supplier_id,omitempty"`
	SupplierName         string          `json:"supplier_name,omitempty"`
	Status               string          `json:"status"`
	VolumeLbs            int             `json:"volume_lbs"`
	PricePerPound        float64         `json:"price_per_pound"`
	TotalValue           float64         `json:"total_value"`
	OrderDate            string          `json:"order_date,omitempty"`
	ExpectedDelivery     string          `json:"expected_delivery,omitempty"`
	ExpectedDeliveryDate string          `json:"expected_delivery_date,omitempty"`
	ActualDeliveryDate   string          `json:"actual_delivery_date,omitempty"`
	ShippingDetails      ShippingDetails `json:"shipping_details"`

	// Parsed delivery date, filled by Normalize. Not serialized.
	deliveryAt  time.Time
	hasDelivery bool
}

// Clone returns an independent deep copy, including the normalized date.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	out := *o
	return &out
}

// Terminal reports whether the order is in an absorbing state.
func (o *Order) Terminal() bool {
	return o.Status == OrderDelivered || o.Status == OrderCancelled
}

// Normalize parses whichever delivery-date field is present. Orders with no
// parsable date are left un-normalized; the lifecycle machine skips them.
// Called once at ingestion, not per step.
func (o *Order) Normalize() {
	raw := o.ExpectedDelivery
	if raw == "" {
		raw = o.ExpectedDeliveryDate
	}
	o.deliveryAt, o.hasDelivery = ParseFlexibleDate(raw)
}

// DeliveryDate returns the normalized expected delivery date. The second
// return is false when the order carries no parsable date.
func (o *Order) DeliveryDate() (time.Time, bool) {
	if !o.hasDelivery {
		// Orders restored from storage or built literally may not have been
		// normalized yet.
		o.Normalize()
	}
	return o.deliveryAt, o.hasDelivery
}

// SetDeliveryDate moves the expected delivery date, rewriting whichever
// legacy field the order carries. The full-timestamp field keeps its
// timestamp format; the plain-date field stays a plain date.
func (o *Order) SetDeliveryDate(t time.Time) {
	if o.ExpectedDelivery != "" {
		o.ExpectedDelivery = t.Format("2006-01-02T15:04:05")
	} else {
		o.ExpectedDeliveryDate = t.Format(DateOnly)
	}
	o.deliveryAt = t
	o.hasDelivery = true
}

// ParseFlexibleDate accepts RFC 3339, a zoneless ISO timestamp (with or
// without a trailing Z or fractional seconds), or a plain YYYY-MM-DD date.
func ParseFlexibleDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	trimmed := strings.TrimSuffix(s, "Z")
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", DateOnly} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
