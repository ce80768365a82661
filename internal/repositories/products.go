package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"procurement/domain"
	"procurement/internal/models"
)

// ProductFilter narrows and orders a catalog listing. Sort accepts
// name|price|updated with an optional '-' prefix for descending.
type ProductFilter struct {
	Query    string
	Category string
	Sort     string
	Limit    int
	Offset   int
}

// ProductRepository owns the master catalog table.
type ProductRepository struct {
	db *sqlx.DB
}

func NewProductRepository(ctx context.Context, db *sqlx.DB) (*ProductRepository, error) {
	r := &ProductRepository{db: db}
	if err := r.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate products schema: %w", err)
	}
	return r, nil
}

func (r *ProductRepository) migrate(ctx context.Context) error {
	const query = `
create table if not exists products
(
    id               uuid primary key,
    sku              varchar(64)  not null,
    name             varchar(255) not null,
    description      text         not null default '',
    category         varchar(128) not null default '',
    unit_price_cents bigint       not null,
    currency         char(3)      not null,
    unit             varchar(32)  not null default 'pcs',
    supplier_id      uuid         not null,
    active           boolean      not null default true,
    created_at       timestamptz  not null default now(),
    updated_at       timestamptz  not null default now()
);

create unique index if not exists uq_products_sku on products (sku);
create index if not exists ix_products_category on products (category) where active;`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return err
	}
	return nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	if err := p.Normalize(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.Active = true
	p.CreatedAt = now
	p.UpdatedAt = now

	const query = `
INSERT INTO products (id, sku, name, description, category, unit_price_cents,
                      currency, unit, supplier_id, active, created_at, updated_at)
VALUES (:id, :sku, :name, :description, :category, :unit_price_cents,
        :currency, :unit, :supplier_id, :active, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, productArgs(p)); err != nil {
		if uniqueViolation(err) {
			return domain.ErrSKUTaken
		}
		return err
	}
	return nil
}

// productArgs binds a product to the named insert/update parameters.
func productArgs(p *domain.Product) map[string]interface{} {
	return map[string]interface{}{
		"id":               p.ID,
		"sku":              p.SKU,
		"name":             p.Name,
		"description":      p.Description,
		"category":         p.Category,
		"unit_price_cents": p.UnitPriceCents,
		"currency":         p.Currency,
		"unit":             p.Unit,
		"supplier_id":      p.SupplierID,
		"active":           p.Active,
		"created_at":       p.CreatedAt,
		"updated_at":       p.UpdatedAt,
	}
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	if err := p.Normalize(); err != nil {
		return err
	}
	p.UpdatedAt = time.Now()

	const query = `
UPDATE products
SET sku = :sku, name = :name, description = :description, category = :category,
    unit_price_cents = :unit_price_cents, currency = :currency, unit = :unit,
    supplier_id = :supplier_id, updated_at = :updated_at
WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, productArgs(p))
	if err != nil {
		if uniqueViolation(err) {
			return domain.ErrSKUTaken
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Archive soft-deletes a product so existing orders keep their reference.
func (r *ProductRepository) Archive(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET active = false, updated_at = now() WHERE id = $1 AND active`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Get(ctx context.Context, id string) (domain.Product, error) {
	row := models.Product{}
	err := r.db.GetContext(ctx, &row, `SELECT * FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return row.Domain(), nil
}

// List pages through active products. Filtering and ordering happen in
// the database, not over loaded slices.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]domain.Product, int, error) {
	where := []string{"active"}
	args := map[string]interface{}{
		"limit":  f.Limit,
		"offset": f.Offset,
	}

	if f.Query != "" {
		where = append(where, "(name ilike :q or sku ilike :q)")
		args["q"] = "%" + f.Query + "%"
	}
	if f.Category != "" {
		where = append(where, "category = :category")
		args["category"] = f.Category
	}

	cond := strings.Join(where, " AND ")

	count, args2, err := sqlx.Named(`SELECT count(*) FROM products WHERE `+cond, args)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(count), args2...); err != nil {
		return nil, 0, err
	}

	query := `SELECT * FROM products WHERE ` + cond +
		` ORDER BY ` + orderClause(f.Sort) + ` LIMIT :limit OFFSET :offset`
	listQuery, listArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(listQuery), listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		row := models.Product{}
		if err = rows.StructScan(&row); err != nil {
			return nil, 0, err
		}
		products = append(products, row.Domain())
	}

	return products, total, rows.Err()
}

// Categories lists the distinct categories in use, for filter dropdowns.
func (r *ProductRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.SelectContext(ctx, &categories,
		`SELECT DISTINCT category FROM products WHERE active AND category <> '' ORDER BY category`)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// orderClause maps the public sort key onto a safe ORDER BY expression.
// Unknown keys fall back to name ascending.
func orderClause(sort string) string {
	desc := strings.HasPrefix(sort, "-")
	key := strings.TrimPrefix(sort, "-")

	var col string
	switch key {
	case domain.SortPrice:
		col = "unit_price_cents"
	case domain.SortUpdated:
		col = "updated_at"
	case domain.SortName:
		col = "name"
	default:
		return "name asc"
	}

	if desc {
		return col + " desc"
	}
	return col + " asc"
}
