// Order tracking: a human-readable narrative synthesized from current
// status. Nothing here is persisted; repeated calls regenerate the view, so
// the random location text may differ between calls for the same status.
package engine

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/talgya/beanmarket/internal/catalog"
	"github.com/talgya/beanmarket/internal/entropy"
	"github.com/talgya/beanmarket/internal/trade"
)

// Tracking is the synthesized view of where an order currently is.
type Tracking struct {
	OrderID         string                `json:"order_id"`
	SupplierName    string                `json:"supplier_name"`
	CurrentStatus   string                `json:"current_status"`
	StatusUpdated   string                `json:"status_updated"`
	Volume          string                `json:"volume,omitempty"`
	ShippingDetails trade.ShippingDetails `json:"shipping_details"`

	Location           string `json:"location,omitempty"`
	StatusDetails      string `json:"status_details,omitempty"`
	NextUpdateExpected string `json:"next_update_expected,omitempty"`
	EstimatedArrival   string `json:"estimated_arrival,omitempty"`
	TransportMethod    string `json:"transportation_method,omitempty"`

	DelayDuration   string `json:"delay_duration,omitempty"`
	RevisedDelivery string `json:"revised_delivery,omitempty"`

	DeliveryDate              string `json:"delivery_date,omitempty"`
	ReceivedBy                string `json:"received_by,omitempty"`
	QualityCheckStatus        string `json:"quality_check_status,omitempty"`
	DeliveryPercentage        string `json:"delivery_percentage,omitempty"`
	RemainingDeliveryExpected string `json:"remaining_delivery_expected,omitempty"`
}

// OrderTracking builds a fresh tracking view for an order.
func (e *MarketEngine) OrderTracking(orderID string) (*Tracking, error) {
	o := e.orderByID(orderID)
	if o == nil {
		return nil, fmt.Errorf("order with ID %s not found", orderID)
	}

	supplierName := o.SupplierName
	if supplierName == "" {
		supplierName = "Unknown Supplier"
	}

	t := &Tracking{
		OrderID:         o.ID,
		SupplierName:    supplierName,
		CurrentStatus:   o.Status,
		StatusUpdated:   e.simDate.Format(trade.DateOnly),
		Volume:          humanize.Comma(int64(o.VolumeLbs)) + " lbs",
		ShippingDetails: o.ShippingDetails,
	}

	switch o.Status {
	case trade.OrderPlaced, trade.OrderPending:
		t.Location = "Supplier facility"
		t.StatusDetails = "Order is being processed by the supplier"
		t.NextUpdateExpected = e.simDate.AddDate(0, 0, entropy.IntBetween(e.src, 1, 5)).Format(trade.DateOnly)

	case trade.OrderInTransit:
		t.Location = entropy.Pick(e.src, catalog.TransitLocations)
		t.StatusDetails = "Order is in transit to destination"
		t.TransportMethod = o.ShippingDetails.Carrier
		if delivery, ok := o.DeliveryDate(); ok {
			t.EstimatedArrival = delivery.Format(trade.DateOnly)
		} else {
			t.EstimatedArrival = "Unknown"
		}

	case trade.OrderDelayed:
		t.Location = entropy.Pick(e.src, catalog.DelayLocations)
		t.StatusDetails = entropy.Pick(e.src, catalog.DelayReasons)
		t.DelayDuration = fmt.Sprintf("%d days", entropy.IntBetween(e.src, 3, 15))
		base := e.simDate
		if delivery, ok := o.DeliveryDate(); ok {
			base = delivery
		}
		t.RevisedDelivery = base.AddDate(0, 0, entropy.IntBetween(e.src, 3, 15)).Format(trade.DateOnly)

	case trade.OrderDelivered, trade.OrderPartiallyDelivered:
		t.Location = "Roastery warehouse"
		t.DeliveryDate = o.ActualDeliveryDate
		if t.DeliveryDate == "" {
			t.DeliveryDate = e.simDate.Format(trade.DateOnly)
		}
		t.ReceivedBy = "Warehouse Manager"
		t.QualityCheckStatus = entropy.Pick(e.src, catalog.QualityCheckStatuses)
		if o.Status == trade.OrderPartiallyDelivered {
			t.DeliveryPercentage = fmt.Sprintf("%d%%", entropy.IntBetween(e.src, 50, 95))
			t.RemainingDeliveryExpected = e.simDate.AddDate(0, 0, entropy.IntBetween(e.src, 7, 21)).Format(trade.DateOnly)
		}
	}

	return t, nil
}
