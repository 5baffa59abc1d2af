package repository

import (
	"context"
	"time"

	"whatsapp-reseller/internal/domain/model"
)

type OutboxRepository interface {
	Enqueue(ctx context.Context, tx Tx, ev *model.OutboxEvent) error
	// Claim moves a due pending event to processing; domain.ErrOutboxEventUnavailable
	// when another worker holds it or it is already done.
	Claim(ctx context.Context, tx Tx, id string) (*model.OutboxEvent, error)
	MarkDelivered(ctx context.Context, tx Tx, id string) error
	// MarkRetry returns a processing event to pending (available at next) or,
	// when final, to failed.
	MarkRetry(ctx context.Context, tx Tx, id string, lastErr string, next time.Time, final bool) error
	ListDue(ctx context.Context, tx Tx, now time.Time, limit int) ([]*model.OutboxEvent, error)
	// ReleaseStale returns processing events claimed before cutoff to pending.
	ReleaseStale(ctx context.Context, tx Tx, cutoff time.Time) (int64, error)
}
