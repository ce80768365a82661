package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"procurement/domain"
	"procurement/internal/models"
)

// BankRepository owns supplier bank accounts and the payout ledger.
type BankRepository struct {
	db *sqlx.DB
}

func NewBankRepository(ctx context.Context, db *sqlx.DB) (*BankRepository, error) {
	r := &BankRepository{db: db}
	if err := r.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate bank schema: %w", err)
	}
	return r, nil
}

func (r *BankRepository) migrate(ctx context.Context) error {
	const query = `
create table if not exists bank_accounts
(
    id          uuid primary key,
    supplier_id uuid         not null,
    holder_name varchar(255) not null,
    bank_name   varchar(255) not null,
    iban        varchar(34)  not null,
    bic         varchar(11)  not null default '',
    currency    char(3)      not null,
    verified    boolean      not null default false,
    updated_at  timestamptz  not null default now()
);

create unique index if not exists uq_bank_accounts_supplier
    on bank_accounts (supplier_id);

create table if not exists payouts
(
    id           uuid primary key,
    supplier_id  uuid        not null,
    amount_cents bigint      not null,
    currency     char(3)     not null,
    status       varchar(16) not null default 'requested',
    reference    varchar(64) not null default '',
    created_at   timestamptz not null default now()
);

create index if not exists ix_payouts_supplier
    on payouts (supplier_id, created_at desc);`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return err
	}
	return nil
}

// UpsertAccount writes a supplier's bank details, replacing any previous
// account. A changed IBAN resets the verified flag.
func (r *BankRepository) UpsertAccount(ctx context.Context, account *domain.BankAccount) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.UpdatedAt = time.Now()

	const query = `
INSERT INTO bank_accounts (id, supplier_id, holder_name, bank_name, iban, bic,
                           currency, verified, updated_at)
VALUES (:id, :supplier_id, :holder_name, :bank_name, :iban, :bic,
        :currency, false, :updated_at)
ON CONFLICT (supplier_id) DO UPDATE
    SET holder_name = excluded.holder_name,
        bank_name   = excluded.bank_name,
        iban        = excluded.iban,
        bic         = excluded.bic,
        currency    = excluded.currency,
        verified    = bank_accounts.verified and bank_accounts.iban = excluded.iban,
        updated_at  = excluded.updated_at`

	_, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":          account.ID,
		"supplier_id": account.SupplierID,
		"holder_name": account.HolderName,
		"bank_name":   account.BankName,
		"iban":        account.IBAN,
		"bic":         account.BIC,
		"currency":    account.Currency,
		"updated_at":  account.UpdatedAt,
	})
	return err
}

func (r *BankRepository) GetAccount(ctx context.Context, supplierID string) (domain.BankAccount, error) {
	row := models.BankAccount{}
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM bank_accounts WHERE supplier_id = $1`, supplierID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.BankAccount{}, ErrNotFound
	}
	if err != nil {
		return domain.BankAccount{}, err
	}
	return row.Domain(), nil
}

// CreatePayout records a new payout request against a supplier.
func (r *BankRepository) CreatePayout(ctx context.Context, payout *domain.Payout) error {
	if payout.ID == "" {
		payout.ID = uuid.NewString()
	}
	if payout.Status == "" {
		payout.Status = domain.PayoutRequested
	}
	if payout.CreatedAt.IsZero() {
		payout.CreatedAt = time.Now()
	}
	if payout.Reference == "" {
		payout.Reference = fmt.Sprintf("PO-%s", payout.ID[:8])
	}

	const query = `
INSERT INTO payouts (id, supplier_id, amount_cents, currency, status, reference, created_at)
VALUES (:id, :supplier_id, :amount_cents, :currency, :status, :reference, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":           payout.ID,
		"supplier_id":  payout.SupplierID,
		"amount_cents": payout.AmountCents,
		"currency":     payout.Currency,
		"status":       payout.Status,
		"reference":    payout.Reference,
		"created_at":   payout.CreatedAt,
	})
	return err
}

// ListPayouts pages through a supplier's payouts, newest first.
func (r *BankRepository) ListPayouts(ctx context.Context, supplierID string, limit, offset int) ([]domain.Payout, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT count(*) FROM payouts WHERE supplier_id = $1`, supplierID)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryxContext(ctx,
		`SELECT * FROM payouts
		 WHERE supplier_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, supplierID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payouts []domain.Payout
	for rows.Next() {
		row := models.Payout{}
		if err = rows.StructScan(&row); err != nil {
			return nil, 0, err
		}
		payouts = append(payouts, row.Domain())
	}

	return payouts, total, rows.Err()
}
