package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.PackageRepository = (*packageRepo)(nil)

type packageRepo struct{ pool *pgxpool.Pool }

func NewPackageRepo(pool *pgxpool.Pool) *packageRepo {
	return &packageRepo{pool: pool}
}

func (r *packageRepo) Save(ctx context.Context, tx repository.Tx, p *model.ServicePackage) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	const q = `
INSERT INTO service_packages (id, name, package_group, monthly_price, yearly_price, is_active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE
  SET name          = EXCLUDED.name,
      package_group = EXCLUDED.package_group,
      monthly_price = EXCLUDED.monthly_price,
      yearly_price  = EXCLUDED.yearly_price,
      is_active     = EXCLUDED.is_active;`
	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Name, p.Group, p.MonthlyPrice, p.YearlyPrice, p.IsActive, p.CreatedAt)
	return writeErr(err)
}

func (r *packageRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ServicePackage, error) {
	const q = `SELECT id, name, package_group, monthly_price, yearly_price, is_active, created_at FROM service_packages WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var p model.ServicePackage
	if err := row.Scan(&p.ID, &p.Name, &p.Group, &p.MonthlyPrice, &p.YearlyPrice, &p.IsActive, &p.CreatedAt); err != nil {
		return nil, readErr(err, domain.ErrPackageNotFound)
	}
	return &p, nil
}

func (r *packageRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.ServicePackage, error) {
	const q = `SELECT id, name, package_group, monthly_price, yearly_price, is_active, created_at FROM service_packages ORDER BY monthly_price ASC, id ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, writeErr(err)
	}
	defer rows.Close()

	var out []*model.ServicePackage
	for rows.Next() {
		var p model.ServicePackage
		if err := rows.Scan(&p.ID, &p.Name, &p.Group, &p.MonthlyPrice, &p.YearlyPrice, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &p)
	}
	if rows.Err() != nil {
		return nil, domain.ErrOperationFailed
	}
	return out, nil
}

func (r *packageRepo) FindAddonByID(ctx context.Context, tx repository.Tx, id string) (*model.Addon, error) {
	const q = `SELECT id, name, price, is_active FROM addons WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var a model.Addon
	if err := row.Scan(&a.ID, &a.Name, &a.Price, &a.IsActive); err != nil {
		return nil, readErr(err, domain.ErrPackageNotFound)
	}
	return &a, nil
}

var _ repository.CustomerRepository = (*customerRepo)(nil)

type customerRepo struct{ pool *pgxpool.Pool }

func NewCustomerRepo(pool *pgxpool.Pool) *customerRepo {
	return &customerRepo{pool: pool}
}

func (r *customerRepo) Save(ctx context.Context, tx repository.Tx, c *model.Customer) error {
	const q = `
INSERT INTO customers (id, name, email, phone) VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, email=EXCLUDED.email, phone=EXCLUDED.phone;`
	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.Name, c.Email, c.Phone)
	return writeErr(err)
}

func (r *customerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Customer, error) {
	const q = `SELECT id, name, email, phone FROM customers WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var c model.Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone); err != nil {
		return nil, readErr(err, domain.ErrNotFound)
	}
	return &c, nil
}
