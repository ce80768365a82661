package domain

import "time"

// Supplier is a selling party on the marketplace.
type Supplier struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email"`
	Rating       float64   `json:"rating"`
	CreatedAt    time.Time `json:"created_at"`
}

// SupplierReportRow is one supplier's aggregate line of the performance
// report for a period. Rates are fractions in [0,1].
type SupplierReportRow struct {
	SupplierID      string  `json:"supplier_id"`
	SupplierName    string  `json:"supplier_name"`
	OrdersTotal     int     `json:"orders_total"`
	OrdersVerified  int     `json:"orders_verified"`
	OrdersRejected  int     `json:"orders_rejected"`
	OrdersFulfilled int     `json:"orders_fulfilled"`
	RejectionRate   float64 `json:"rejection_rate"`
	OnTimeRate      float64 `json:"on_time_rate"`
	VolumeCents     int64   `json:"volume_cents"`
}

// ReportPeriod bounds a performance report. Zero values mean "all time".
type ReportPeriod struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}
