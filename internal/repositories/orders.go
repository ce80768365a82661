package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"procurement/domain"
	"procurement/internal/models"
)

// OrderRepository is responsible for purchase orders, their documents and
// the verification decision functions.
type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(ctx context.Context, db *sqlx.DB) (*OrderRepository, error) {
	r := &OrderRepository{db: db}
	if err := r.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate orders schema: %w", err)
	}
	return r, nil
}

func (r *OrderRepository) migrate(ctx context.Context) error {
	const query = `
create table if not exists purchase_orders
(
    id            uuid primary key,
    number        varchar(32)              not null,
    supplier_id   uuid                     not null,
    supplier_name varchar(255)             not null,
    buyer_name    varchar(255)             not null,
    currency      char(3)                  not null,
    total_cents   bigint                   not null,
    status        varchar(32)              not null default 'pending_verification',
    submitted_at  timestamptz              not null default now(),
    verified_at   timestamptz,
    verifier_note text,
    events        jsonb                    not null default '[]'::jsonb
);

create index if not exists ix_purchase_orders_status
    on purchase_orders (status, submitted_at desc);

create table if not exists order_documents
(
    id          uuid primary key,
    order_id    uuid         not null references purchase_orders (id),
    name        varchar(255) not null,
    kind        varchar(32)  not null,
    url         text         not null,
    size_bytes  bigint       not null default 0,
    uploaded_at timestamptz  not null default now()
);

create index if not exists ix_order_documents_order
    on order_documents (order_id);

create or replace function verify_purchase_order(p_id uuid, p_actor text, p_note text)
    returns boolean as
$$
declare
    updated int;
begin
    update purchase_orders
    set status        = 'verified',
        verified_at   = now(),
        verifier_note = p_note,
        events        = events || jsonb_build_object(
                'action', 'verified', 'actor', p_actor, 'note', p_note, 'at', now())
    where id = p_id
      and status = 'pending_verification';
    get diagnostics updated = row_count;
    return updated > 0;
end;
$$ language plpgsql;

create or replace function reject_purchase_order(p_id uuid, p_actor text, p_reason text)
    returns boolean as
$$
declare
    updated int;
begin
    update purchase_orders
    set status        = 'rejected',
        verifier_note = p_reason,
        events        = events || jsonb_build_object(
                'action', 'rejected', 'actor', p_actor, 'note', p_reason, 'at', now())
    where id = p_id
      and status = 'pending_verification';
    get diagnostics updated = row_count;
    return updated > 0;
end;
$$ language plpgsql;`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return err
	}
	return nil
}

// Create inserts a newly submitted order into the verification queue.
func (r *OrderRepository) Create(ctx context.Context, order *domain.PurchaseOrder) (int64, error) {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Status == "" {
		order.Status = domain.StatusPending
	}
	if order.SubmittedAt.IsZero() {
		order.SubmittedAt = time.Now()
	}

	const query = `
INSERT INTO purchase_orders (id, number, supplier_id, supplier_name, buyer_name,
                             currency, total_cents, status, submitted_at, events)
VALUES (:id, :number, :supplier_id, :supplier_name, :buyer_name,
        :currency, :total_cents, :status, :submitted_at, :events)`

	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":            order.ID,
		"number":        order.Number,
		"supplier_id":   order.SupplierID,
		"supplier_name": order.SupplierName,
		"buyer_name":    order.BuyerName,
		"currency":      order.Currency,
		"total_cents":   order.TotalCents,
		"status":        order.Status,
		"submitted_at":  order.SubmittedAt,
		"events":        order.Events,
	})
	if err != nil {
		if uniqueViolation(err) {
			return 0, ErrConflict
		}
		return 0, err
	}

	return result.RowsAffected()
}

// Get returns a single order with its audit trail.
func (r *OrderRepository) Get(ctx context.Context, id string) (domain.PurchaseOrder, error) {
	row := models.Order{}
	err := r.db.GetContext(ctx, &row,
		`SELECT id, number, supplier_id, supplier_name, buyer_name, currency,
		        total_cents, status, submitted_at, verified_at, verifier_note, events
		 FROM purchase_orders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PurchaseOrder{}, ErrNotFound
	}
	if err != nil {
		return domain.PurchaseOrder{}, err
	}
	return row.Domain(), nil
}

// ListPending returns one page of the verification queue, newest
// submissions first, along with the total queue size.
func (r *OrderRepository) ListPending(ctx context.Context, limit, offset int) ([]domain.PurchaseOrder, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT count(*) FROM purchase_orders WHERE status = $1`, domain.StatusPending)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryxContext(ctx,
		`SELECT id, number, supplier_id, supplier_name, buyer_name, currency,
		        total_cents, status, submitted_at, verified_at, verifier_note, events
		 FROM purchase_orders
		 WHERE status = $1
		 ORDER BY submitted_at DESC
		 LIMIT $2 OFFSET $3`, domain.StatusPending, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []domain.PurchaseOrder
	for rows.Next() {
		row := models.Order{}
		if err = rows.StructScan(&row); err != nil {
			return nil, 0, err
		}
		orders = append(orders, row.Domain())
	}

	return orders, total, rows.Err()
}

// Documents returns the metadata of all files attached to an order.
func (r *OrderRepository) Documents(ctx context.Context, orderID string) ([]domain.Document, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT id, order_id, name, kind, url, size_bytes, uploaded_at
		 FROM order_documents
		 WHERE order_id = $1
		 ORDER BY uploaded_at`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		row := models.Document{}
		if err = rows.StructScan(&row); err != nil {
			return nil, err
		}
		docs = append(docs, row.Domain())
	}

	return docs, rows.Err()
}

// AddDocument attaches document metadata to an order.
func (r *OrderRepository) AddDocument(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now()
	}

	const query = `
INSERT INTO order_documents (id, order_id, name, kind, url, size_bytes, uploaded_at)
VALUES (:id, :order_id, :name, :kind, :url, :size_bytes, :uploaded_at)`

	_, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":          doc.ID,
		"order_id":    doc.OrderID,
		"name":        doc.Name,
		"kind":        doc.Kind,
		"url":         doc.URL,
		"size_bytes":  doc.SizeBytes,
		"uploaded_at": doc.UploadedAt,
	})
	return err
}

// Verify marks an order as verified through the verify_purchase_order
// function. The function refuses orders that already left the queue.
func (r *OrderRepository) Verify(ctx context.Context, id, actor, note string) error {
	return r.decide(ctx, `SELECT verify_purchase_order($1, $2, $3)`, id, actor, note)
}

// Reject marks an order as rejected with the operator's reason.
func (r *OrderRepository) Reject(ctx context.Context, id, actor, reason string) error {
	return r.decide(ctx, `SELECT reject_purchase_order($1, $2, $3)`, id, actor, reason)
}

func (r *OrderRepository) decide(ctx context.Context, query, id, actor, note string) error {
	var decided bool
	if err := r.db.GetContext(ctx, &decided, query, id, actor, note); err != nil {
		return err
	}
	if !decided {
		// Either the order does not exist or it was already decided;
		// tell them apart for the caller.
		var exists bool
		err := r.db.GetContext(ctx, &exists,
			`SELECT exists(SELECT 1 FROM purchase_orders WHERE id = $1)`, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return domain.ErrOrderDecided
	}
	return nil
}
