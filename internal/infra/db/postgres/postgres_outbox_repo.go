package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/repository"
)

var _ repository.OutboxRepository = (*outboxRepo)(nil)

type outboxRepo struct{ pool *pgxpool.Pool }

func NewOutboxRepo(pool *pgxpool.Pool) *outboxRepo {
	return &outboxRepo{pool: pool}
}

const outboxColumns = `id, kind, aggregate_id, payload, status, attempts, last_error, available_at, created_at, updated_at`

func scanOutbox(row pgx.Row) (*model.OutboxEvent, error) {
	var (
		ev      model.OutboxEvent
		status  string
		payload []byte
	)
	if err := row.Scan(&ev.ID, &ev.Kind, &ev.AggregateID, &payload, &status, &ev.Attempts, &ev.LastError, &ev.AvailableAt, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
		return nil, err
	}
	ev.Status = model.OutboxStatus(status)
	ev.Payload = payload
	return &ev, nil
}

func (r *outboxRepo) Enqueue(ctx context.Context, tx repository.Tx, ev *model.OutboxEvent) error {
	const q = `
INSERT INTO outbox_events (id, kind, aggregate_id, payload, status, attempts, last_error, available_at, created_at, updated_at)
VALUES ($1,$2,$3,$4::jsonb,$5,0,'',$6,$7,$7);`
	_, err := execSQL(ctx, r.pool, tx, q, ev.ID, ev.Kind, ev.AggregateID, string(ev.Payload), string(model.OutboxStatusPending), ev.AvailableAt, ev.CreatedAt)
	return writeErr(err)
}

// Claim is a compare-and-set from pending to processing; only one worker
// can hold an event at a time.
func (r *outboxRepo) Claim(ctx context.Context, tx repository.Tx, id string) (*model.OutboxEvent, error) {
	q := `
UPDATE outbox_events
   SET status = 'processing',
       attempts = attempts + 1,
       updated_at = NOW()
 WHERE id = $1
   AND status = 'pending'
RETURNING ` + outboxColumns
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	ev, err := scanOutbox(row)
	if err != nil {
		return nil, readErr(err, domain.ErrOutboxEventUnavailable)
	}
	return ev, nil
}

func (r *outboxRepo) MarkDelivered(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE outbox_events SET status='delivered', last_error='', updated_at=NOW() WHERE id=$1 AND status='processing';`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return writeErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrOutboxEventUnavailable
	}
	return nil
}

func (r *outboxRepo) MarkRetry(ctx context.Context, tx repository.Tx, id string, lastErr string, next time.Time, final bool) error {
	status := model.OutboxStatusPending
	if final {
		status = model.OutboxStatusFailed
	}
	const q = `
UPDATE outbox_events
   SET status = $2,
       last_error = $3,
       available_at = $4,
       updated_at = NOW()
 WHERE id = $1
   AND status = 'processing';`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, string(status), lastErr, next)
	if err != nil {
		return writeErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrOutboxEventUnavailable
	}
	return nil
}

func (r *outboxRepo) ListDue(ctx context.Context, tx repository.Tx, now time.Time, limit int) ([]*model.OutboxEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + outboxColumns + ` FROM outbox_events WHERE status='pending' AND available_at <= $1 ORDER BY available_at ASC, id ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, now, limit)
	if err != nil {
		return nil, writeErr(err)
	}
	defer rows.Close()

	var out []*model.OutboxEvent
	for rows.Next() {
		ev, err := scanOutbox(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, ev)
	}
	if rows.Err() != nil {
		return nil, domain.ErrOperationFailed
	}
	return out, nil
}

func (r *outboxRepo) ReleaseStale(ctx context.Context, tx repository.Tx, cutoff time.Time) (int64, error) {
	const q = `UPDATE outbox_events SET status='pending', updated_at=NOW() WHERE status='processing' AND updated_at < $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, cutoff)
	if err != nil {
		return 0, writeErr(err)
	}
	return cmd.RowsAffected(), nil
}
