package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidIBAN = errors.New("invalid IBAN")

// BankAccount holds a supplier's payout details. One account per supplier.
// The IBAN is stored in full but must never leave the service unmasked.
type BankAccount struct {
	ID         string    `json:"id"`
	SupplierID string    `json:"supplier_id"`
	HolderName string    `json:"holder_name"`
	BankName   string    `json:"bank_name"`
	IBAN       string    `json:"-"`
	BIC        string    `json:"bic"`
	Currency   string    `json:"currency"`
	Verified   bool      `json:"verified"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MaskedIBAN keeps only the country code and the last four characters.
func (a *BankAccount) MaskedIBAN() string {
	iban := a.IBAN
	if len(iban) <= 6 {
		return strings.Repeat("*", len(iban))
	}
	return iban[:2] + strings.Repeat("*", len(iban)-6) + iban[len(iban)-4:]
}

// ValidateIBAN normalizes the account's IBAN and runs the mod-97 checksum
// (ISO 13616).
func (a *BankAccount) ValidateIBAN() error {
	iban := strings.ToUpper(strings.ReplaceAll(a.IBAN, " ", ""))
	if len(iban) < 15 || len(iban) > 34 {
		return ErrInvalidIBAN
	}

	// Move the first four characters to the end, map letters to numbers,
	// then take the whole thing mod 97. Valid IBANs leave remainder 1.
	rearranged := iban[4:] + iban[:4]
	rem := 0
	for _, r := range rearranged {
		var v int
		switch {
		case r >= '0' && r <= '9':
			v = int(r - '0')
		case r >= 'A' && r <= 'Z':
			v = int(r-'A') + 10
		default:
			return ErrInvalidIBAN
		}
		if v >= 10 {
			rem = (rem*100 + v) % 97
		} else {
			rem = (rem*10 + v) % 97
		}
	}
	if rem != 1 {
		return ErrInvalidIBAN
	}

	a.IBAN = iban
	return nil
}

// Payout statuses mirror what the payment processor reports back.
const (
	PayoutRequested = "requested"
	PayoutSent      = "sent"
	PayoutFailed    = "failed"
)

// Payout is a money transfer to a supplier's configured bank account.
type Payout struct {
	ID          string    `json:"id"`
	SupplierID  string    `json:"supplier_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	Reference   string    `json:"reference"`
	CreatedAt   time.Time `json:"created_at"`
}
