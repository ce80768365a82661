package models

import (
	"time"

	"procurement/domain"
)

// Request maps a custom_item_requests row.
type Request struct {
	ID          string     `db:"id"`
	BuyerName   string     `db:"buyer_name"`
	ItemName    string     `db:"item_name"`
	Description string     `db:"description"`
	Quantity    int        `db:"quantity"`
	TargetCents int64      `db:"target_cents"`
	Status      string     `db:"status"`
	TriagedBy   *string    `db:"triaged_by"`
	TriageNote  *string    `db:"triage_note"`
	CreatedAt   time.Time  `db:"created_at"`
	TriagedAt   *time.Time `db:"triaged_at"`
}

func (r *Request) Domain() domain.CustomItemRequest {
	req := domain.CustomItemRequest{
		ID:          r.ID,
		BuyerName:   r.BuyerName,
		ItemName:    r.ItemName,
		Description: r.Description,
		Quantity:    r.Quantity,
		TargetCents: r.TargetCents,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		TriagedAt:   r.TriagedAt,
	}
	if r.TriagedBy != nil {
		req.TriagedBy = *r.TriagedBy
	}
	if r.TriageNote != nil {
		req.TriageNote = *r.TriageNote
	}
	return req
}
