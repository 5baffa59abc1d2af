package adapter

import (
	"context"
	"time"

	"whatsapp-reseller/internal/domain/model"
)

// Activator grants what a paid transaction bought: it flips the transaction,
// creates purchase records and redeems the voucher. Implementations must be
// idempotent per transaction.
type Activator interface {
	UpdateTransactionOnPayment(ctx context.Context, transactionID string, status model.PaymentStatus) error
}

// SettledActivator activates a paid transaction as of the gateway settlement
// time rather than the moment activation runs. Retried deliveries use it so
// subscription periods start when the customer actually paid.
type SettledActivator interface {
	Activator
	ActivateSettled(ctx context.Context, transactionID string, paidAt time.Time) error
}
