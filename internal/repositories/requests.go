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

// RequestRepository owns the custom item request triage queue.
type RequestRepository struct {
	db *sqlx.DB
}

func NewRequestRepository(ctx context.Context, db *sqlx.DB) (*RequestRepository, error) {
	r := &RequestRepository{db: db}
	if err := r.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate requests schema: %w", err)
	}
	return r, nil
}

func (r *RequestRepository) migrate(ctx context.Context) error {
	const query = `
create table if not exists custom_item_requests
(
    id           uuid primary key,
    buyer_name   varchar(255) not null,
    item_name    varchar(255) not null,
    description  text         not null default '',
    quantity     int          not null default 1,
    target_cents bigint       not null default 0,
    status       varchar(16)  not null default 'open',
    triaged_by   varchar(255),
    triage_note  text,
    created_at   timestamptz  not null default now(),
    triaged_at   timestamptz
);

create index if not exists ix_custom_item_requests_open
    on custom_item_requests (created_at) where status = 'open';`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return err
	}
	return nil
}

func (r *RequestRepository) Create(ctx context.Context, req *domain.CustomItemRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = domain.RequestOpen
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	const query = `
INSERT INTO custom_item_requests (id, buyer_name, item_name, description,
                                  quantity, target_cents, status, created_at)
VALUES (:id, :buyer_name, :item_name, :description,
        :quantity, :target_cents, :status, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":           req.ID,
		"buyer_name":   req.BuyerName,
		"item_name":    req.ItemName,
		"description":  req.Description,
		"quantity":     req.Quantity,
		"target_cents": req.TargetCents,
		"status":       req.Status,
		"created_at":   req.CreatedAt,
	})
	return err
}

func (r *RequestRepository) Get(ctx context.Context, id string) (domain.CustomItemRequest, error) {
	row := models.Request{}
	err := r.db.GetContext(ctx, &row, `SELECT * FROM custom_item_requests WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CustomItemRequest{}, ErrNotFound
	}
	if err != nil {
		return domain.CustomItemRequest{}, err
	}
	return row.Domain(), nil
}

// ListOpen pages through untriaged requests, oldest first. Triage is
// first-come, first-served.
func (r *RequestRepository) ListOpen(ctx context.Context, limit, offset int) ([]domain.CustomItemRequest, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT count(*) FROM custom_item_requests WHERE status = $1`, domain.RequestOpen)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryxContext(ctx,
		`SELECT * FROM custom_item_requests
		 WHERE status = $1
		 ORDER BY created_at
		 LIMIT $2 OFFSET $3`, domain.RequestOpen, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var requests []domain.CustomItemRequest
	for rows.Next() {
		row := models.Request{}
		if err = rows.StructScan(&row); err != nil {
			return nil, 0, err
		}
		requests = append(requests, row.Domain())
	}

	return requests, total, rows.Err()
}

// Triage records a final approve/reject decision on an open request.
func (r *RequestRepository) Triage(ctx context.Context, id, status, actor, note string) error {
	return r.triageExec(ctx, r.db, id, status, actor, note)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (r *RequestRepository) triageExec(ctx context.Context, ex execer, id, status, actor, note string) error {
	result, err := ex.ExecContext(ctx,
		`UPDATE custom_item_requests
		 SET status = $2, triaged_by = $3, triage_note = $4, triaged_at = now()
		 WHERE id = $1 AND status = 'open'`, id, status, actor, note)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		err = r.db.GetContext(ctx, &exists,
			`SELECT exists(SELECT 1 FROM custom_item_requests WHERE id = $1)`, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return domain.ErrRequestTriaged
	}
	return nil
}

// Convert closes the request and creates the catalog product it asked
// for in one transaction. A duplicate SKU rolls the whole thing back.
func (r *RequestRepository) Convert(ctx context.Context, id, actor string, product *domain.Product) error {
	if err := product.Normalize(); err != nil {
		return err
	}
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := time.Now()
	product.Active = true
	product.CreatedAt = now
	product.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err = r.triageExec(ctx, tx, id, domain.RequestConverted, actor,
		"converted to product "+product.SKU); err != nil {
		return err
	}

	const insert = `
INSERT INTO products (id, sku, name, description, category, unit_price_cents,
                      currency, unit, supplier_id, active, created_at, updated_at)
VALUES (:id, :sku, :name, :description, :category, :unit_price_cents,
        :currency, :unit, :supplier_id, :active, :created_at, :updated_at)`

	if _, err = tx.NamedExecContext(ctx, insert, productArgs(product)); err != nil {
		if uniqueViolation(err) {
			return domain.ErrSKUTaken
		}
		return err
	}

	return tx.Commit()
}
