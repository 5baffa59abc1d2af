// Package billing holds the pure pricing algorithms: voucher discount
// allocation and subscription period stacking. Nothing here performs I/O,
// so every function is safe for concurrent use.
package billing

import (
	"math"
	"time"

	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/model"
)

// CheckEligibility validates the voucher's own state at instant now.
// Per-customer reuse is not checked here because it needs a redemption lookup.
func CheckEligibility(v *model.Voucher, now time.Time) error {
	if v == nil {
		return domain.ErrVoucherNotFound
	}
	if !v.IsActive {
		return domain.ErrVoucherInactive
	}
	if now.Before(v.ValidFrom) {
		return domain.ErrVoucherNotYetValid
	}
	if v.ValidTo != nil && now.After(*v.ValidTo) {
		return domain.ErrVoucherExpired
	}
	if v.UsageExhausted() {
		return domain.ErrVoucherUsageLimit
	}
	return nil
}

// Allocate quotes the discount a voucher grants on a cart and splits it over
// the lines inside the voucher scope. It has no side effects; redeeming the
// voucher is the caller's job once payment succeeds.
func Allocate(v *model.Voucher, lines []model.CartLine, now time.Time) (*model.DiscountResult, error) {
	if err := CheckEligibility(v, now); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	original := model.CartTotal(lines)
	var applicable int64
	for _, l := range lines {
		if v.Matches(l) {
			applicable += l.LineTotal()
		}
	}
	if applicable <= 0 {
		return nil, domain.ErrVoucherNotApplicable
	}
	if v.MinAmount != nil && applicable < *v.MinAmount {
		return nil, domain.ErrVoucherMinAmount
	}

	discount := rawDiscount(v, applicable)
	if v.MaxDiscount != nil && discount > *v.MaxDiscount {
		discount = *v.MaxDiscount
	}
	discount = clamp(discount, 0, applicable)

	return &model.DiscountResult{
		OriginalAmount:   original,
		ApplicableAmount: applicable,
		DiscountAmount:   discount,
		FinalAmount:      original - discount,
		PerLine:          splitDiscount(v, lines, applicable, discount),
	}, nil
}

func rawDiscount(v *model.Voucher, applicable int64) int64 {
	switch v.Kind {
	case model.CalcPercentage:
		return int64(math.Round(float64(applicable) * v.Value / 100))
	default:
		value := int64(math.Round(v.Value))
		if value > applicable {
			return applicable
		}
		return value
	}
}

// splitDiscount gives each in-scope line discount*lineTotal/applicable.
// Shares are taken as differences of rounded cumulative amounts, so they are
// never negative and the final in-scope line absorbs the rounding remainder.
func splitDiscount(v *model.Voucher, lines []model.CartLine, applicable, discount int64) []model.LineDiscount {
	out := make([]model.LineDiscount, 0, len(lines))
	var cumTotal, cumShare int64
	for i, l := range lines {
		ld := model.LineDiscount{LineRef: i, RefID: l.RefID, LineTotal: l.LineTotal()}
		if v.Matches(l) {
			cumTotal += l.LineTotal()
			upTo := roundDiv(discount*cumTotal, applicable)
			ld.DiscountShare = upTo - cumShare
			cumShare = upTo
		}
		out = append(out, ld)
	}
	return out
}

// roundDiv is a/b rounded half up for non-negative operands.
func roundDiv(a, b int64) int64 {
	if b == 0 {
		return 0
	}
	return (2*a + b) / (2 * b)
}

func clamp(x, lo, hi int64) int64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
