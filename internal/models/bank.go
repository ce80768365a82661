package models

import (
	"time"

	"procurement/domain"
)

// BankAccount maps a bank_accounts row.
type BankAccount struct {
	ID         string    `db:"id"`
	SupplierID string    `db:"supplier_id"`
	HolderName string    `db:"holder_name"`
	BankName   string    `db:"bank_name"`
	IBAN       string    `db:"iban"`
	BIC        string    `db:"bic"`
	Currency   string    `db:"currency"`
	Verified   bool      `db:"verified"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (a *BankAccount) Domain() domain.BankAccount {
	return domain.BankAccount(*a)
}

// Payout maps a payouts row.
type Payout struct {
	ID          string    `db:"id"`
	SupplierID  string    `db:"supplier_id"`
	AmountCents int64     `db:"amount_cents"`
	Currency    string    `db:"currency"`
	Status      string    `db:"status"`
	Reference   string    `db:"reference"`
	CreatedAt   time.Time `db:"created_at"`
}

func (p *Payout) Domain() domain.Payout {
	return domain.Payout{
		ID:          p.ID,
		SupplierID:  p.SupplierID,
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
		Status:      p.Status,
		Reference:   p.Reference,
		CreatedAt:   p.CreatedAt,
	}
}
