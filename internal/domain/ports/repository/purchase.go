package repository

import (
	"context"

	"whatsapp-reseller/internal/domain/model"
)

// -----------------------------
// Purchases
// -----------------------------

type PurchaseRepository interface {
	Save(ctx context.Context, tx Tx, pu *model.PurchaseRecord) error
	ListByCustomer(ctx context.Context, tx Tx, customerID string) ([]*model.PurchaseRecord, error)
	ExistsForTransaction(ctx context.Context, tx Tx, transactionID string) (bool, error)
}
