package model

import (
	"strings"
	"time"
)

type Duration string

const (
	DurationMonth Duration = "month"
	DurationYear  Duration = "year"
)

// ParseDuration accepts "month"/"year" (and their common plural/adjective
// forms); an empty value defaults to monthly.
func ParseDuration(s string) (Duration, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "month", "monthly", "months":
		return DurationMonth, true
	case "year", "yearly", "annual", "years":
		return DurationYear, true
	}
	return "", false
}

// PurchaseRecord is created once per paid package line; immutable.
type PurchaseRecord struct {
	ID                   string
	CustomerID           string
	TransactionID        string
	PackageID            string
	PackageGroup         string
	Duration             Duration
	PaidAt               time.Time
	AmountPaidForService int64
	TransactionAmount    int64 // charged amount of the whole transaction
	ServiceFee           int64
	CreatedAt            time.Time
}

// SubscriptionPeriod is derived from purchase records and never stored.
type SubscriptionPeriod struct {
	PurchaseRef     string    `json:"purchaseRef"`
	TransactionID   string    `json:"transactionId"`
	PackageID       string    `json:"packageId"`
	Duration        Duration  `json:"duration"`
	PaidAt          time.Time `json:"paidAt"`
	PeriodStart     time.Time `json:"periodStart"`
	PeriodEnd       time.Time `json:"periodEnd"`
	MonthsPurchased int       `json:"monthsPurchased"`
	ServiceAmount   int64     `json:"serviceAmount"` // monthly equivalent
}

// Contains reports whether t falls in [PeriodStart, PeriodEnd).
func (p SubscriptionPeriod) Contains(t time.Time) bool {
	return !t.Before(p.PeriodStart) && t.Before(p.PeriodEnd)
}
