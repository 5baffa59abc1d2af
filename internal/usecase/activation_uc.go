// File: internal/usecase/activation_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/adapter"
	"whatsapp-reseller/internal/domain/ports/repository"
	"whatsapp-reseller/internal/infra/metrics"
)

// Compile-time check
var _ adapter.SettledActivator = (*activationUC)(nil)

type activationUC struct {
	transactions repository.TransactionRepository
	packages     repository.PackageRepository
	purchases    repository.PurchaseRepository
	vouchers     repository.VoucherRepository
	tm           repository.TransactionManager
	log          *zerolog.Logger
	now          func() time.Time
}

func NewActivationUseCase(
	transactions repository.TransactionRepository,
	packages repository.PackageRepository,
	purchases repository.PurchaseRepository,
	vouchers repository.VoucherRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *activationUC {
	return &activationUC{
		transactions: transactions,
		packages:     packages,
		purchases:    purchases,
		vouchers:     vouchers,
		tm:           tm,
		log:          logger,
		now:          time.Now,
	}
}

// UpdateTransactionOnPayment applies a payment outcome to its transaction.
// For paid it also writes one purchase record per package line and redeems
// the voucher. A transaction that is already paid is left alone, so a
// redelivered event is a no-op.
func (u *activationUC) UpdateTransactionOnPayment(ctx context.Context, transactionID string, status model.PaymentStatus) error {
	if status != model.PaymentStatusPaid {
		_, err := u.transactions.UpdateStatusIfPending(ctx, nil, transactionID, model.TransactionStatusFor(status), nil)
		return err
	}

	return u.activate(ctx, transactionID, u.now())
}

// ActivateSettled is UpdateTransactionOnPayment for a paid outcome, dating the
// transaction and its purchase records at paidAt. A zero paidAt means now.
func (u *activationUC) ActivateSettled(ctx context.Context, transactionID string, paidAt time.Time) error {
	if paidAt.IsZero() {
		paidAt = u.now()
	}
	return u.activate(ctx, transactionID, paidAt)
}

func (u *activationUC) activate(ctx context.Context, transactionID string, paidAt time.Time) error {
	var activated *model.Transaction
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		t, err := u.transactions.FindByID(ctx, tx, transactionID)
		if err != nil {
			return notFoundAs(err, domain.ErrTransactionNotFound)
		}
		switch t.Status {
		case model.TransactionStatusPaid:
			return nil
		case model.TransactionStatusPending:
		default:
			return domain.ErrIllegalTransition
		}

		now := u.now()
		ok, err := u.transactions.UpdateStatusIfPending(ctx, tx, t.ID, model.TransactionStatusPaid, &paidAt)
		if err != nil || !ok {
			return err
		}

		for _, item := range t.Items {
			if item.ScopeTag != model.ScopePackage {
				continue
			}
			pkg, err := u.packages.FindByID(ctx, tx, item.RefID)
			if err != nil {
				return notFoundAs(err, domain.ErrPackageNotFound)
			}
			rec := &model.PurchaseRecord{
				ID:                   uuid.NewString(),
				CustomerID:           t.CustomerID,
				TransactionID:        t.ID,
				PackageID:            pkg.ID,
				PackageGroup:         pkg.GroupKey(),
				Duration:             item.Duration,
				PaidAt:               paidAt,
				AmountPaidForService: item.AmountForService(),
				TransactionAmount:    t.ChargeAmount(),
				ServiceFee:           t.ServiceFee,
				CreatedAt:            now,
			}
			if err := u.purchases.Save(ctx, tx, rec); err != nil {
				return err
			}
		}

		if t.VoucherID != nil {
			ok, err := u.vouchers.IncrementUsage(ctx, tx, *t.VoucherID)
			if err != nil {
				return err
			}
			if !ok {
				// The payment is settled; the purchase stands even past the limit.
				u.log.Warn().Str("voucher_id", *t.VoucherID).Str("transaction_id", t.ID).Msg("voucher usage limit reached at redemption")
			}
			if err := u.vouchers.SaveRedemption(ctx, tx, &model.VoucherRedemption{
				VoucherID:     *t.VoucherID,
				CustomerID:    t.CustomerID,
				TransactionID: t.ID,
				RedeemedAt:    now,
			}); err != nil {
				return err
			}
		}
		t.Status = model.TransactionStatusPaid
		t.PaidAt = &paidAt
		activated = t
		return nil
	})
	if err != nil {
		return err
	}
	if activated != nil {
		metrics.AddPaymentRevenue(activated.Currency, activated.ChargeAmount())
		u.log.Info().Str("transaction_id", activated.ID).Msg("transaction activated")
	}
	return nil
}
