package model

import (
	"strings"
	"time"
)

type CalcKind string

const (
	CalcPercentage  CalcKind = "percentage"
	CalcFixedAmount CalcKind = "fixed_amount"
)

func (k CalcKind) Valid() bool {
	return k == CalcPercentage || k == CalcFixedAmount
}

// NormalizeCalcKind resolves the calculation kind from the two legacy columns
// ("type" and "discount_type"), which older rows filled in swapped order.
// Both are treated as candidates; the first recognized value wins and
// fixed_amount is the fallback.
func NormalizeCalcKind(candidates ...string) CalcKind {
	for _, c := range candidates {
		k := CalcKind(strings.ToLower(strings.TrimSpace(c)))
		if k.Valid() {
			return k
		}
	}
	return CalcFixedAmount
}

// Voucher is a discount code. Kind is always the normalized value; the raw
// legacy columns are kept only for round-tripping to storage.
type Voucher struct {
	ID                 string
	Code               string
	LegacyType         string
	LegacyDiscountType string
	Kind               CalcKind
	Scope              string // "total" or a cart scope tag
	Value              float64
	MinAmount          *int64
	MaxDiscount        *int64
	MaxUses            *int64
	UsedCount          int64
	ValidFrom          time.Time
	ValidTo            *time.Time
	IsActive           bool
	AllowMultiUse      bool // allow the same customer to redeem more than once
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Normalize fills Kind from the legacy columns and lowercases Scope.
// Repositories call it once when a row is loaded.
func (v *Voucher) Normalize() {
	v.Kind = NormalizeCalcKind(v.LegacyType, v.LegacyDiscountType)
	v.Scope = strings.ToLower(strings.TrimSpace(v.Scope))
	if v.Scope == "" {
		v.Scope = ScopeTotal
	}
}

func (v *Voucher) UsageExhausted() bool {
	return v.MaxUses != nil && v.UsedCount >= *v.MaxUses
}

// Matches reports whether a cart line falls inside the voucher scope.
func (v *Voucher) Matches(l CartLine) bool {
	return v.Scope == ScopeTotal || strings.EqualFold(v.Scope, l.ScopeTag)
}

// VoucherRedemption records that a customer used a voucher for a transaction.
type VoucherRedemption struct {
	VoucherID     string
	CustomerID    string
	TransactionID string
	RedeemedAt    time.Time
}
