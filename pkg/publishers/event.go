package publishers

import (
	"encoding/json"
	"time"
)

// Event kinds emitted by the catalog sync.
const (
	KindProductAvailable = "product.available"
	KindProductRemoved   = "product.removed"
)

// Event represents a catalog change published downstream.
type Event struct {
	Kind        string          `json:"kind"`
	PartnerID   string          `json:"partner_id"`
	ProductCode string          `json:"product_code"`
	Title       string          `json:"title,omitempty"`
	Product     json.RawMessage `json:"product,omitempty"`
	DetectedAt  time.Time       `json:"detected_at"`
}

// NewEvent constructs an Event stamped with the current UTC time.
func NewEvent(kind, partnerID, productCode string) Event {
	return Event{
		Kind:        kind,
		PartnerID:   partnerID,
		ProductCode: productCode,
		DetectedAt:  time.Now().UTC(),
	}
}

// attributes are attached as message attributes by queue/topic sinks.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"kind":         e.Kind,
		"partner_id":   e.PartnerID,
		"product_code": e.ProductCode,
	}
}
