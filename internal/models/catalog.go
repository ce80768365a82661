package models

import (
	"time"

	"procurement/domain"
)

// Product maps a products row.
type Product struct {
	ID             string    `db:"id"`
	SKU            string    `db:"sku"`
	Name           string    `db:"name"`
	Description    string    `db:"description"`
	Category       string    `db:"category"`
	UnitPriceCents int64     `db:"unit_price_cents"`
	Currency       string    `db:"currency"`
	Unit           string    `db:"unit"`
	SupplierID     string    `db:"supplier_id"`
	Active         bool      `db:"active"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (p *Product) Domain() domain.Product {
	return domain.Product(*p)
}

// Supplier maps a suppliers row.
type Supplier struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	ContactEmail string    `db:"contact_email"`
	Rating       float64   `db:"rating"`
	CreatedAt    time.Time `db:"created_at"`
}

func (s *Supplier) Domain() domain.Supplier {
	return domain.Supplier(*s)
}

// ReportRow maps one line of the supplier_performance function's result.
type ReportRow struct {
	SupplierID      string  `db:"supplier_id"`
	SupplierName    string  `db:"supplier_name"`
	OrdersTotal     int     `db:"orders_total"`
	OrdersVerified  int     `db:"orders_verified"`
	OrdersRejected  int     `db:"orders_rejected"`
	OrdersFulfilled int     `db:"orders_fulfilled"`
	RejectionRate   float64 `db:"rejection_rate"`
	OnTimeRate      float64 `db:"on_time_rate"`
	VolumeCents     int64   `db:"volume_cents"`
}

func (r *ReportRow) Domain() domain.SupplierReportRow {
	return domain.SupplierReportRow(*r)
}
