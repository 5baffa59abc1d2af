package repository

import (
	"context"
	"time"

	"whatsapp-reseller/internal/domain/model"
)

// -----------------------------
// Payments
// -----------------------------

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	FindByExternalReference(ctx context.Context, tx Tx, reference string) (*model.Payment, error)
	FindByTransactionAndProvider(ctx context.Context, tx Tx, transactionID, provider string) (*model.Payment, error)
	SetExternalReference(ctx context.Context, tx Tx, id, reference, paymentURL string) error
	// TransitionStatus moves a payment from -> to only if its stored status is
	// still from, appending entry to the callback history in the same
	// statement. It reports whether this call won the transition.
	TransitionStatus(ctx context.Context, tx Tx, id string, from, to model.PaymentStatus, entry model.CallbackEntry, paidAt *time.Time) (bool, error)
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Payment, error)
}
