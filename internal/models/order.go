package models

import (
	"time"

	"procurement/domain"
)

// Order maps a purchase_orders row onto the domain entity. The audit
// trail rides along as a JSONB column.
type Order struct {
	ID           string            `db:"id"`
	Number       string            `db:"number"`
	SupplierID   string            `db:"supplier_id"`
	SupplierName string            `db:"supplier_name"`
	BuyerName    string            `db:"buyer_name"`
	Currency     string            `db:"currency"`
	TotalCents   int64             `db:"total_cents"`
	Status       string            `db:"status"`
	SubmittedAt  time.Time         `db:"submitted_at"`
	VerifiedAt   *time.Time        `db:"verified_at"`
	VerifierNote *string           `db:"verifier_note"`
	Events       domain.EventTrail `db:"events"`
}

func (o *Order) Domain() domain.PurchaseOrder {
	po := domain.PurchaseOrder{
		ID:           o.ID,
		Number:       o.Number,
		SupplierID:   o.SupplierID,
		SupplierName: o.SupplierName,
		BuyerName:    o.BuyerName,
		Currency:     o.Currency,
		TotalCents:   o.TotalCents,
		Status:       o.Status,
		SubmittedAt:  o.SubmittedAt,
		VerifiedAt:   o.VerifiedAt,
		Events:       o.Events,
	}
	if o.VerifierNote != nil {
		po.VerifierNote = *o.VerifierNote
	}
	return po
}

// Document maps an order_documents row.
type Document struct {
	ID         string    `db:"id"`
	OrderID    string    `db:"order_id"`
	Name       string    `db:"name"`
	Kind       string    `db:"kind"`
	URL        string    `db:"url"`
	SizeBytes  int64     `db:"size_bytes"`
	UploadedAt time.Time `db:"uploaded_at"`
}

func (d *Document) Domain() domain.Document {
	return domain.Document(*d)
}
