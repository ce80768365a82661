package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrSKUTaken   = errors.New("sku already in use")
	ErrSKUMissing = errors.New("sku is required")
)

// Product is an entry of the master catalog. Archiving flips Active off
// instead of deleting the row, so historical orders keep their reference.
type Product struct {
	ID             string    `json:"id"`
	SKU            string    `json:"sku"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Category       string    `json:"category"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	Currency       string    `json:"currency"`
	Unit           string    `json:"unit"`
	SupplierID     string    `json:"supplier_id"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Normalize trims and uppercases the SKU so uniqueness does not depend on
// how the operator typed it.
func (p *Product) Normalize() error {
	p.SKU = strings.ToUpper(strings.TrimSpace(p.SKU))
	if p.SKU == "" {
		return ErrSKUMissing
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if p.Unit == "" {
		p.Unit = "pcs"
	}
	return nil
}

// Product sort keys accepted by the catalog listing. A leading '-' on the
// query value flips the direction.
const (
	SortName    = "name"
	SortPrice   = "price"
	SortUpdated = "updated"
)
