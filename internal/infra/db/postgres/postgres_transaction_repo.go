package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/repository"
)

var _ repository.TransactionRepository = (*transactionRepo)(nil)

type transactionRepo struct{ pool *pgxpool.Pool }

func NewTransactionRepo(pool *pgxpool.Pool) *transactionRepo {
	return &transactionRepo{pool: pool}
}

func (r *transactionRepo) Save(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	const q = `
INSERT INTO transactions (
  id, customer_id, original_amount, discount_amount, service_fee, final_amount, currency, voucher_id, status, created_at, paid_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11);`
	_, err := execSQL(ctx, r.pool, tx, q, t.ID, t.CustomerID, t.OriginalAmount, t.DiscountAmount, t.ServiceFee, t.FinalAmount, t.Currency, t.VoucherID, string(t.Status), t.CreatedAt, t.PaidAt)
	if err != nil {
		return writeErr(err)
	}

	const qi = `
INSERT INTO transaction_items (
  id, transaction_id, position, scope_tag, ref_id, duration, unit_price, quantity, discount_share
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`
	for i := range t.Items {
		it := &t.Items[i]
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.TransactionID = t.ID
		if _, err := execSQL(ctx, r.pool, tx, qi, it.ID, t.ID, i, it.ScopeTag, it.RefID, string(it.Duration), it.UnitPrice, it.Quantity, it.DiscountShare); err != nil {
			return writeErr(err)
		}
	}
	return nil
}

func (r *transactionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Transaction, error) {
	q := `SELECT id, customer_id, original_amount, discount_amount, service_fee, final_amount, currency, voucher_id, status, created_at, paid_at FROM transactions WHERE id=$1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var (
		t      model.Transaction
		status string
	)
	if err := row.Scan(&t.ID, &t.CustomerID, &t.OriginalAmount, &t.DiscountAmount, &t.ServiceFee, &t.FinalAmount, &t.Currency, &t.VoucherID, &status, &t.CreatedAt, &t.PaidAt); err != nil {
		return nil, readErr(err, domain.ErrTransactionNotFound)
	}
	t.Status = model.TransactionStatus(status)

	const qi = `SELECT id, transaction_id, scope_tag, ref_id, duration, unit_price, quantity, discount_share FROM transaction_items WHERE transaction_id=$1 ORDER BY position ASC;`
	rows, err := queryRows(ctx, r.pool, tx, qi, id)
	if err != nil {
		return nil, writeErr(err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it  model.TransactionItem
			dur string
		)
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.ScopeTag, &it.RefID, &dur, &it.UnitPrice, &it.Quantity, &it.DiscountShare); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		it.Duration = model.Duration(dur)
		t.Items = append(t.Items, it)
	}
	if rows.Err() != nil {
		return nil, domain.ErrOperationFailed
	}
	return &t, nil
}

// UpdateStatusIfPending atomically updates status only when the current status is 'pending'.
func (r *transactionRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.TransactionStatus, paidAt *time.Time) (bool, error) {
	const q = `
    UPDATE transactions
       SET status = $2,
           paid_at = COALESCE($3, paid_at)
     WHERE id = $1
       AND status = 'pending'`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, string(status), paidAt)
	if err != nil {
		return false, writeErr(err)
	}
	return cmd.RowsAffected() >= 1, nil
}
