package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `id, transaction_id, provider, merchant_order_id, COALESCE(external_reference, ''), payment_url, amount, status, payment_date, callback_history, created_at, updated_at`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var (
		p       model.Payment
		status  string
		history []byte
	)
	if err := row.Scan(&p.ID, &p.TransactionID, &p.Provider, &p.MerchantOrderID, &p.ExternalReference, &p.PaymentURL, &p.Amount, &status, &p.PaymentDate, &history, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = model.PaymentStatus(status)
	if len(history) > 0 {
		if err := json.Unmarshal(history, &p.CallbackHistory); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
	}
	return &p, nil
}

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	history := p.CallbackHistory
	if history == nil {
		history = []model.CallbackEntry{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO payments (
  id, transaction_id, provider, merchant_order_id, external_reference, payment_url, amount, status, payment_date, callback_history, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,NULLIF($5,''),$6,$7,$8,$9,$10::jsonb,$11,$12
);`
	_, err = execSQL(ctx, r.pool, tx, q, p.ID, p.TransactionID, p.Provider, p.MerchantOrderID, p.ExternalReference, p.PaymentURL, p.Amount, string(p.Status), p.PaymentDate, string(raw), p.CreatedAt, p.UpdatedAt)
	return writeErr(err)
}

func (r *paymentRepo) findOne(ctx context.Context, tx repository.Tx, where string, args ...interface{}) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE ` + where + ` LIMIT 1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	p, err := scanPayment(row)
	if err != nil {
		return nil, readErr(err, domain.ErrPaymentNotFound)
	}
	return p, nil
}

func (r *paymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	return r.findOne(ctx, tx, "id=$1", id)
}

func (r *paymentRepo) FindByExternalReference(ctx context.Context, tx repository.Tx, reference string) (*model.Payment, error) {
	if reference == "" {
		return nil, domain.ErrPaymentNotFound
	}
	return r.findOne(ctx, tx, "external_reference=$1", reference)
}

func (r *paymentRepo) FindByTransactionAndProvider(ctx context.Context, tx repository.Tx, transactionID, provider string) (*model.Payment, error) {
	return r.findOne(ctx, tx, "transaction_id=$1 AND provider=$2", transactionID, provider)
}

func (r *paymentRepo) SetExternalReference(ctx context.Context, tx repository.Tx, id, reference, paymentURL string) error {
	const q = `UPDATE payments SET external_reference=NULLIF($2,''), payment_url=$3, updated_at=NOW() WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, reference, paymentURL)
	if err != nil {
		return writeErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

// TransitionStatus is the single write path for payment status. The WHERE
// clause on the current status makes concurrent callers race safely: exactly
// one of them sees a row affected.
func (r *paymentRepo) TransitionStatus(
	ctx context.Context, tx repository.Tx, id string, from, to model.PaymentStatus, entry model.CallbackEntry, paidAt *time.Time,
) (bool, error) {
	if !model.CanTransition(from, to) {
		return false, domain.ErrIllegalTransition
	}
	raw, err := json.Marshal([]model.CallbackEntry{entry})
	if err != nil {
		return false, domain.ErrInvalidArgument
	}
	const q = `
    UPDATE payments
       SET status = $3,
           payment_date = COALESCE($4, payment_date),
           callback_history = callback_history || $5::jsonb,
           updated_at = NOW()
     WHERE id = $1
       AND status = $2`

	cmd, err := execSQL(ctx, r.pool, tx, q, id, string(from), string(to), paidAt, string(raw))
	if err != nil {
		return false, writeErr(err)
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *paymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE status='pending' AND created_at < $1 ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		return nil, writeErr(err)
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, domain.ErrOperationFailed
	}
	return out, nil
}
