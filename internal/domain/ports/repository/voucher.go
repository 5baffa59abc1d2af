package repository

import (
	"context"

	"whatsapp-reseller/internal/domain/model"
)

type VoucherRepository interface {
	// FindByCode returns the voucher with Kind already normalized.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Voucher, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.Voucher, error)
	// IncrementUsage bumps used_count only while it is below max_uses; false
	// when the limit was already reached.
	IncrementUsage(ctx context.Context, tx Tx, id string) (bool, error)
	HasRedemption(ctx context.Context, tx Tx, voucherID, customerID string) (bool, error)
	SaveRedemption(ctx context.Context, tx Tx, r *model.VoucherRedemption) error
}
