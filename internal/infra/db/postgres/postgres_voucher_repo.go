package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/repository"
)

var _ repository.VoucherRepository = (*voucherRepo)(nil)

type voucherRepo struct{ pool *pgxpool.Pool }

func NewVoucherRepo(pool *pgxpool.Pool) *voucherRepo {
	return &voucherRepo{pool: pool}
}

const voucherColumns = `id, code, type, discount_type, scope, value, min_amount, max_discount, max_uses, used_count, valid_from, valid_to, is_active, allow_multi_use, created_at, updated_at`

func scanVoucher(row pgx.Row) (*model.Voucher, error) {
	var v model.Voucher
	if err := row.Scan(&v.ID, &v.Code, &v.LegacyType, &v.LegacyDiscountType, &v.Scope, &v.Value, &v.MinAmount, &v.MaxDiscount, &v.MaxUses, &v.UsedCount, &v.ValidFrom, &v.ValidTo, &v.IsActive, &v.AllowMultiUse, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.Normalize()
	return &v, nil
}

func (r *voucherRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Voucher, error) {
	q := `SELECT ` + voucherColumns + ` FROM vouchers WHERE UPPER(code)=UPPER($1) LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	v, err := scanVoucher(row)
	if err != nil {
		return nil, readErr(err, domain.ErrVoucherNotFound)
	}
	return v, nil
}

func (r *voucherRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Voucher, error) {
	q := `SELECT ` + voucherColumns + ` FROM vouchers WHERE id=$1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	v, err := scanVoucher(row)
	if err != nil {
		return nil, readErr(err, domain.ErrVoucherNotFound)
	}
	return v, nil
}

// IncrementUsage bumps used_count while it is below max_uses.
func (r *voucherRepo) IncrementUsage(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	const q = `
    UPDATE vouchers
       SET used_count = used_count + 1,
           updated_at = NOW()
     WHERE id = $1
       AND (max_uses IS NULL OR used_count < max_uses)`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return false, writeErr(err)
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *voucherRepo) HasRedemption(ctx context.Context, tx repository.Tx, voucherID, customerID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM voucher_redemptions WHERE voucher_id=$1 AND customer_id=$2);`
	row, err := pickRow(ctx, r.pool, tx, q, voucherID, customerID)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}

func (r *voucherRepo) SaveRedemption(ctx context.Context, tx repository.Tx, rd *model.VoucherRedemption) error {
	const q = `
INSERT INTO voucher_redemptions (voucher_id, customer_id, transaction_id, redeemed_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (voucher_id, transaction_id) DO NOTHING;`
	_, err := execSQL(ctx, r.pool, tx, q, rd.VoucherID, rd.CustomerID, rd.TransactionID, rd.RedeemedAt)
	return writeErr(err)
}
