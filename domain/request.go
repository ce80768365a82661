package domain

import (
	"errors"
	"time"
)

var ErrRequestTriaged = errors.New("custom item request already triaged")

// Triage outcomes for a custom item request. Decisions are final.
const (
	RequestOpen      = "open"
	RequestApproved  = "approved"
	RequestRejected  = "rejected"
	RequestConverted = "converted"
)

// CustomItemRequest is a buyer's ask for an item missing from the master
// catalog. Triage either approves/rejects it or converts it straight into
// a catalog product.
type CustomItemRequest struct {
	ID          string     `json:"id"`
	BuyerName   string     `json:"buyer_name"`
	ItemName    string     `json:"item_name"`
	Description string     `json:"description,omitempty"`
	Quantity    int        `json:"quantity"`
	TargetCents int64      `json:"target_cents"`
	Status      string     `json:"status"`
	TriagedBy   string     `json:"triaged_by,omitempty"`
	TriageNote  string     `json:"triage_note,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	TriagedAt   *time.Time `json:"triaged_at,omitempty"`
}

// Open reports whether the request still awaits triage.
func (r *CustomItemRequest) Open() bool {
	return r.Status == RequestOpen
}
