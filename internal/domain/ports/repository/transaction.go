package repository

import (
	"context"
	"time"

	"whatsapp-reseller/internal/domain/model"
)

type TransactionRepository interface {
	// Save inserts the transaction together with its items.
	Save(ctx context.Context, tx Tx, t *model.Transaction) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Transaction, error)
	// UpdateStatusIfPending flips a pending transaction; false when it was
	// no longer pending.
	UpdateStatusIfPending(ctx context.Context, tx Tx, id string, status model.TransactionStatus, paidAt *time.Time) (bool, error)
}
