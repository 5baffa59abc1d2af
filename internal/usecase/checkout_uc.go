// File: internal/usecase/checkout_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
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
var _ CheckoutUseCase = (*checkoutUC)(nil)

type CheckoutUseCase interface {
	// Checkout prices the cart, applies the optional voucher, persists a
	// pending transaction and payment, and requests an invoice from the gateway.
	Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error)
}

type CheckoutInput struct {
	CustomerID  string
	Items       []CartItem
	VoucherCode string
}

type CheckoutResult struct {
	Transaction *model.Transaction
	Payment     *model.Payment
	PaymentURL  string
	Discount    *model.DiscountResult
}

// CheckoutSettings carries the payment configuration checkout needs.
type CheckoutSettings struct {
	OrderPrefix   string
	Currency      string
	ServiceFee    int64
	CallbackURL   string
	ReturnURL     string
	ExpiryMinutes int
}

type checkoutUC struct {
	customers    repository.CustomerRepository
	packages     repository.PackageRepository
	transactions repository.TransactionRepository
	payments     repository.PaymentRepository
	vouchers     VoucherUseCase
	gateway      adapter.PaymentGateway
	tm           repository.TransactionManager
	settings     CheckoutSettings
	log          *zerolog.Logger
	now          func() time.Time
}

func NewCheckoutUseCase(
	customers repository.CustomerRepository,
	packages repository.PackageRepository,
	transactions repository.TransactionRepository,
	payments repository.PaymentRepository,
	vouchers VoucherUseCase,
	gateway adapter.PaymentGateway,
	tm repository.TransactionManager,
	settings CheckoutSettings,
	logger *zerolog.Logger,
) *checkoutUC {
	return &checkoutUC{
		customers:    customers,
		packages:     packages,
		transactions: transactions,
		payments:     payments,
		vouchers:     vouchers,
		gateway:      gateway,
		tm:           tm,
		settings:     settings,
		log:          logger,
		now:          time.Now,
	}
}

func (u *checkoutUC) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if strings.TrimSpace(in.CustomerID) == "" {
		return nil, domain.ErrInvalidArgument
	}
	customer, err := u.customers.FindByID(ctx, nil, in.CustomerID)
	if err != nil {
		return nil, err
	}

	lines, err := priceItems(ctx, u.packages, in.Items)
	if err != nil {
		return nil, err
	}

	var (
		discount *model.DiscountResult
		voucher  *model.Voucher
	)
	if code := strings.TrimSpace(in.VoucherCode); code != "" {
		q, err := u.vouchers.QuoteLines(ctx, code, lines, customer.ID)
		if err != nil {
			return nil, err
		}
		discount, voucher = q.Result, q.Voucher
	}

	now := u.now()
	t := buildTransaction(customer.ID, lines, discount, voucher, u.settings, now)
	p := &model.Payment{
		ID:              uuid.NewString(),
		TransactionID:   t.ID,
		Provider:        u.gateway.Name(),
		MerchantOrderID: model.FormatMerchantOrderID(u.settings.OrderPrefix, t.ID, now),
		Amount:          t.ChargeAmount(),
		Status:          model.PaymentStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.transactions.Save(ctx, tx, t); err != nil {
			return err
		}
		return u.payments.Save(ctx, tx, p)
	})
	if err != nil {
		return nil, err
	}

	inv, err := u.gateway.RequestPayment(ctx, adapter.InvoiceRequest{
		MerchantOrderID: p.MerchantOrderID,
		Amount:          p.Amount,
		ProductDetails:  productDetails(lines),
		CustomerName:    customer.Name,
		Email:           customer.Email,
		Phone:           customer.Phone,
		CallbackURL:     u.settings.CallbackURL,
		ReturnURL:       u.settings.ReturnURL,
		ExpiryMinutes:   u.settings.ExpiryMinutes,
	})
	if err != nil {
		u.failPending(ctx, p, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayRequestFailed, err)
	}

	if err := u.payments.SetExternalReference(ctx, nil, p.ID, inv.Reference, inv.PaymentURL); err != nil {
		return nil, err
	}
	p.ExternalReference = inv.Reference
	p.PaymentURL = inv.PaymentURL
	metrics.IncPayment(p.Provider)

	u.log.Info().
		Str("transaction_id", t.ID).
		Str("payment_id", p.ID).
		Int64("amount", p.Amount).
		Msg("checkout created")

	return &CheckoutResult{Transaction: t, Payment: p, PaymentURL: inv.PaymentURL, Discount: discount}, nil
}

// failPending closes a payment whose invoice was never created, so it is not
// left pending until the expiry sweep.
func (u *checkoutUC) failPending(ctx context.Context, p *model.Payment, cause error) {
	now := u.now()
	entry := model.CallbackEntry{
		ReceivedAt: now,
		Source:     "checkout",
		From:       model.PaymentStatusPending,
		To:         model.PaymentStatusFailed,
		Payload:    map[string]string{"error": cause.Error()},
	}
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := u.payments.TransitionStatus(ctx, tx, p.ID, model.PaymentStatusPending, model.PaymentStatusFailed, entry, nil); err != nil {
			return err
		}
		_, err := u.transactions.UpdateStatusIfPending(ctx, tx, p.TransactionID, model.TransactionStatusFailed, nil)
		return err
	})
	if err != nil {
		u.log.Error().Err(err).Str("payment_id", p.ID).Msg("failed to close payment after gateway error")
	}
	p.Status = model.PaymentStatusFailed
}

func buildTransaction(customerID string, lines []model.CartLine, d *model.DiscountResult, v *model.Voucher, s CheckoutSettings, now time.Time) *model.Transaction {
	t := &model.Transaction{
		ID:             uuid.NewString(),
		CustomerID:     customerID,
		OriginalAmount: model.CartTotal(lines),
		ServiceFee:     s.ServiceFee,
		Currency:       s.Currency,
		Status:         model.TransactionStatusPending,
		CreatedAt:      now,
	}
	if d != nil {
		t.DiscountAmount = d.DiscountAmount
	}
	if v != nil {
		id := v.ID
		t.VoucherID = &id
	}
	t.FinalAmount = t.OriginalAmount - t.DiscountAmount

	t.Items = make([]model.TransactionItem, 0, len(lines))
	for i, l := range lines {
		t.Items = append(t.Items, model.TransactionItem{
			TransactionID: t.ID,
			ScopeTag:      l.ScopeTag,
			RefID:         l.RefID,
			Duration:      l.Duration,
			UnitPrice:     l.UnitPrice,
			Quantity:      l.Quantity,
			DiscountShare: d.ShareFor(i),
		})
	}
	return t
}

func productDetails(lines []model.CartLine) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%s:%s x%d", l.ScopeTag, l.RefID, l.Quantity))
	}
	return strings.Join(parts, ", ")
}
