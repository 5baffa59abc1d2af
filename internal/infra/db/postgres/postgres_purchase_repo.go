package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/repository"
)

var _ repository.PurchaseRepository = (*purchaseRepo)(nil)

type purchaseRepo struct{ pool *pgxpool.Pool }

func NewPurchaseRepo(pool *pgxpool.Pool) *purchaseRepo {
	return &purchaseRepo{pool: pool}
}

func (r *purchaseRepo) Save(ctx context.Context, tx repository.Tx, pu *model.PurchaseRecord) error {
	if pu.CreatedAt.IsZero() {
		pu.CreatedAt = time.Now().UTC()
	}
	const q = `
INSERT INTO purchase_records (
  id, customer_id, transaction_id, package_id, package_group, duration, paid_at, amount_paid_for_service, transaction_amount, service_fee, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11);`
	_, err := execSQL(ctx, r.pool, tx, q, pu.ID, pu.CustomerID, pu.TransactionID, pu.PackageID, pu.PackageGroup, string(pu.Duration), pu.PaidAt, pu.AmountPaidForService, pu.TransactionAmount, pu.ServiceFee, pu.CreatedAt)
	return writeErr(err)
}

func (r *purchaseRepo) ListByCustomer(ctx context.Context, tx repository.Tx, customerID string) ([]*model.PurchaseRecord, error) {
	const q = `
SELECT id, customer_id, transaction_id, package_id, package_group, duration, paid_at, amount_paid_for_service, transaction_amount, service_fee, created_at
  FROM purchase_records
 WHERE customer_id=$1
 ORDER BY paid_at ASC, created_at ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, customerID)
	if err != nil {
		return nil, writeErr(err)
	}
	defer rows.Close()

	var out []*model.PurchaseRecord
	for rows.Next() {
		var (
			pu  model.PurchaseRecord
			dur string
		)
		if err := rows.Scan(&pu.ID, &pu.CustomerID, &pu.TransactionID, &pu.PackageID, &pu.PackageGroup, &dur, &pu.PaidAt, &pu.AmountPaidForService, &pu.TransactionAmount, &pu.ServiceFee, &pu.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		pu.Duration = model.Duration(dur)
		out = append(out, &pu)
	}
	if rows.Err() != nil {
		return nil, domain.ErrOperationFailed
	}
	return out, nil
}

func (r *purchaseRepo) ExistsForTransaction(ctx context.Context, tx repository.Tx, transactionID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM purchase_records WHERE transaction_id=$1);`
	row, err := pickRow(ctx, r.pool, tx, q, transactionID)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}
