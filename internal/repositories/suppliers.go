package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"procurement/domain"
	"procurement/internal/models"
)

// SupplierRepository owns the suppliers table and the performance report
// function. The aggregation runs inside Postgres so the console never
// pulls raw order history over the wire.
type SupplierRepository struct {
	db *sqlx.DB
}

func NewSupplierRepository(ctx context.Context, db *sqlx.DB) (*SupplierRepository, error) {
	r := &SupplierRepository{db: db}
	if err := r.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate suppliers schema: %w", err)
	}
	return r, nil
}

func (r *SupplierRepository) migrate(ctx context.Context) error {
	const query = `
create table if not exists suppliers
(
    id            uuid primary key,
    name          varchar(255) not null,
    contact_email varchar(255) not null default '',
    rating        numeric(3,2) not null default 0,
    created_at    timestamptz  not null default now()
);

create or replace function supplier_performance(p_from timestamptz, p_to timestamptz)
    returns table
            (
                supplier_id      uuid,
                supplier_name    varchar,
                orders_total     bigint,
                orders_verified  bigint,
                orders_rejected  bigint,
                orders_fulfilled bigint,
                rejection_rate   double precision,
                on_time_rate     double precision,
                volume_cents     bigint
            )
as
$$
select s.id,
       s.name,
       count(o.id),
       count(o.id) filter (where o.status in ('verified', 'fulfilled')),
       count(o.id) filter (where o.status = 'rejected'),
       count(o.id) filter (where o.status = 'fulfilled'),
       coalesce(count(o.id) filter (where o.status = 'rejected')::float
                    / nullif(count(o.id), 0), 0),
       coalesce(count(o.id) filter (where o.status in ('verified', 'fulfilled')
                                      and o.verified_at is not null
                                      and o.verified_at <= o.submitted_at + interval '2 days')::float
                    / nullif(count(o.id) filter (where o.status in ('verified', 'fulfilled')), 0), 0),
       coalesce(sum(o.total_cents) filter (where o.status in ('verified', 'fulfilled')), 0)
from suppliers s
         left join purchase_orders o
                   on o.supplier_id = s.id
                       and (p_from is null or o.submitted_at >= p_from)
                       and (p_to is null or o.submitted_at < p_to)
group by s.id, s.name
order by s.name;
$$ language sql stable;`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return err
	}
	return nil
}

func (r *SupplierRepository) Get(ctx context.Context, id string) (domain.Supplier, error) {
	row := models.Supplier{}
	err := r.db.GetContext(ctx, &row, `SELECT * FROM suppliers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Supplier{}, ErrNotFound
	}
	if err != nil {
		return domain.Supplier{}, err
	}
	return row.Domain(), nil
}

func (r *SupplierRepository) List(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT * FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []domain.Supplier
	for rows.Next() {
		row := models.Supplier{}
		if err = rows.StructScan(&row); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, row.Domain())
	}

	return suppliers, rows.Err()
}

// Report computes per-supplier aggregates for the period via the
// supplier_performance function. Zero period bounds mean all time.
func (r *SupplierRepository) Report(ctx context.Context, period domain.ReportPeriod) ([]domain.SupplierReportRow, error) {
	var from, to interface{}
	if !period.From.IsZero() {
		from = period.From
	}
	if !period.To.IsZero() {
		to = period.To
	}

	rows, err := r.db.QueryxContext(ctx,
		`SELECT * FROM supplier_performance($1, $2)`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var report []domain.SupplierReportRow
	for rows.Next() {
		row := models.ReportRow{}
		if err = rows.StructScan(&row); err != nil {
			return nil, err
		}
		report = append(report, row.Domain())
	}

	return report, rows.Err()
}
