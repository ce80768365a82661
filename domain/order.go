package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrConvertJSONB = errors.New("cannot convert to JSONB")

	// ErrOrderDecided is returned when a verify/reject is attempted on an
	// order that already left the pending_verification state.
	ErrOrderDecided = errors.New("purchase order already decided")

	ErrReasonRequired = errors.New("rejection reason is required")
)

// Purchase order lifecycle. Transitions out of StatusPending are final:
// a verified order can only move on to fulfilled/cancelled, a rejected
// one goes nowhere.
const (
	StatusPending   = "pending_verification"
	StatusVerified  = "verified"
	StatusRejected  = "rejected"
	StatusFulfilled = "fulfilled"
	StatusCancelled = "cancelled"
)

// PurchaseOrder is a buyer's order as submitted to the marketplace,
// waiting in the verification queue until an operator decides on it.
type PurchaseOrder struct {
	ID           string     `json:"id"`
	Number       string     `json:"number"`
	SupplierID   string     `json:"supplier_id"`
	SupplierName string     `json:"supplier_name"`
	BuyerName    string     `json:"buyer_name"`
	Currency     string     `json:"currency"`
	TotalCents   int64      `json:"total_cents"`
	Status       string     `json:"status"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
	VerifierNote string     `json:"verifier_note,omitempty"`
	Events       EventTrail `json:"events,omitempty"`
}

// CanDecide reports whether the order is still open for a verify/reject
// decision.
func (o *PurchaseOrder) CanDecide() bool {
	return o.Status == StatusPending
}

// Document kinds attached to a purchase order.
const (
	DocInvoice      = "invoice"
	DocPOForm       = "po_form"
	DocDeliveryNote = "delivery_note"
	DocOther        = "other"
)

// Document is a file attached to a purchase order. The files themselves
// live in the backend's object store; only metadata is kept here.
type Document struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	URL        string    `json:"url"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// OrderEvent is one entry of an order's audit trail.
type OrderEvent struct {
	Action string    `json:"action"`
	Actor  string    `json:"actor"`
	Note   string    `json:"note,omitempty"`
	At     time.Time `json:"at"`
}

// EventTrail is stored as a single JSONB column next to the order row.
type EventTrail []OrderEvent

func (t *EventTrail) Scan(dst interface{}) error {
	switch src := dst.(type) {
	case string:
		return json.Unmarshal([]byte(src), t)
	case []byte:
		return json.Unmarshal(src, t)
	case nil:
		return nil
	}
	return ErrConvertJSONB
}

func (t EventTrail) Value() (driver.Value, error) {
	if t == nil {
		return `[]`, nil
	}
	j, err := json.Marshal(t)
	if err != nil {
		return `[]`, err
	}
	return string(j), nil
}
