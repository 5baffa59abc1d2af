// File: internal/usecase/voucher_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/billing"
	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/repository"
	"whatsapp-reseller/internal/infra/metrics"
)

// Compile-time check
var _ VoucherUseCase = (*voucherUC)(nil)

type VoucherUseCase interface {
	// Quote prices items and applies the voucher without side effects.
	// customerID may be empty for anonymous checks, which skips the
	// per-customer reuse rule.
	Quote(ctx context.Context, code string, items []CartItem, customerID string) (*VoucherQuote, error)
	// QuoteLines is Quote over already priced lines.
	QuoteLines(ctx context.Context, code string, lines []model.CartLine, customerID string) (*VoucherQuote, error)
}

type VoucherQuote struct {
	Voucher *model.Voucher
	Result  *model.DiscountResult
}

type voucherUC struct {
	vouchers repository.VoucherRepository
	packages repository.PackageRepository
	log      *zerolog.Logger
	now      func() time.Time
}

func NewVoucherUseCase(vouchers repository.VoucherRepository, packages repository.PackageRepository, logger *zerolog.Logger) *voucherUC {
	return &voucherUC{vouchers: vouchers, packages: packages, log: logger, now: time.Now}
}

func (u *voucherUC) Quote(ctx context.Context, code string, items []CartItem, customerID string) (*VoucherQuote, error) {
	lines, err := priceItems(ctx, u.packages, items)
	if err != nil {
		metrics.IncVoucherCheck("rejected")
		return nil, err
	}
	return u.QuoteLines(ctx, code, lines, customerID)
}

func (u *voucherUC) QuoteLines(ctx context.Context, code string, lines []model.CartLine, customerID string) (*VoucherQuote, error) {
	q, err := u.quote(ctx, code, lines, customerID)
	switch {
	case err == nil:
		metrics.IncVoucherCheck("valid")
	case errors.Is(err, domain.ErrBusinessRule), errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrValidation):
		metrics.IncVoucherCheck("rejected")
	default:
		metrics.IncVoucherCheck("error")
		u.log.Error().Err(err).Str("code", code).Msg("voucher quote failed")
	}
	return q, err
}

func (u *voucherUC) quote(ctx context.Context, code string, lines []model.CartLine, customerID string) (*VoucherQuote, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrVoucherNotFound
	}
	v, err := u.vouchers.FindByCode(ctx, nil, code)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrVoucherNotFound)
	}

	res, err := billing.Allocate(v, lines, u.now())
	if err != nil {
		return nil, err
	}

	if customerID != "" && !v.AllowMultiUse {
		used, err := u.vouchers.HasRedemption(ctx, nil, v.ID, customerID)
		if err != nil {
			return nil, err
		}
		if used {
			return nil, domain.ErrVoucherAlreadyUsed
		}
	}
	return &VoucherQuote{Voucher: v, Result: res}, nil
}
