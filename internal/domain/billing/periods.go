package billing

import (
	"math"
	"sort"
	"time"

	"whatsapp-reseller/internal/domain/model"
)

const monthsPerYear = 12

// MonthsPurchased infers how many months a purchase bought. Monthly purchases
// are priced against the package's monthly unit price and never count as less
// than one month, so a discounted renewal still buys a full month. Yearly
// purchases are always twelve months regardless of the amount paid.
func MonthsPurchased(r model.PurchaseRecord, monthlyUnitPrice int64) int {
	if r.Duration == model.DurationYear {
		return monthsPerYear
	}
	if monthlyUnitPrice <= 0 {
		return 1
	}
	months := int(math.Round(float64(r.AmountPaidForService) / float64(monthlyUnitPrice)))
	if months < 1 {
		return 1
	}
	return months
}

// ServiceAmount is the monthly-equivalent price of a purchase, for display.
// The base is what the record's own line paid after its discount share, never
// the whole transaction charge, so other lines and the service fee stay out.
func ServiceAmount(r model.PurchaseRecord, monthlyUnitPrice int64) int64 {
	amount := r.AmountPaidForService
	if monthlyUnitPrice > 0 && amount > monthlyUnitPrice {
		months := MonthsPurchased(r, monthlyUnitPrice)
		return int64(math.Round(float64(amount) / float64(months)))
	}
	return amount
}

// StackPeriods turns the purchase history of one package group into
// back-to-back validity windows. Records are ordered by PaidAt; the first
// period starts at the first payment and each later one starts where the
// previous ended, even when the renewal was paid before that.
func StackPeriods(records []model.PurchaseRecord, monthlyUnitPrice int64) []model.SubscriptionPeriod {
	return StackPeriodsBy(records, func(string) int64 { return monthlyUnitPrice })
}

// PriceFunc returns the monthly unit price of a package.
type PriceFunc func(packageID string) int64

// StackPeriodsBy is StackPeriods for a group whose records span price tiers:
// each record's months are inferred from its own package's price.
func StackPeriodsBy(records []model.PurchaseRecord, priceOf PriceFunc) []model.SubscriptionPeriod {
	if len(records) == 0 {
		return nil
	}
	sorted := make([]model.PurchaseRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PaidAt.Before(sorted[j].PaidAt)
	})

	cursor := sorted[0].PaidAt
	out := make([]model.SubscriptionPeriod, 0, len(sorted))
	for _, r := range sorted {
		unit := priceOf(r.PackageID)
		months := MonthsPurchased(r, unit)
		start := cursor
		var end time.Time
		if r.Duration == model.DurationYear {
			end = start.AddDate(1, 0, 0)
		} else {
			end = start.AddDate(0, months, 0)
		}
		out = append(out, model.SubscriptionPeriod{
			PurchaseRef:     r.ID,
			TransactionID:   r.TransactionID,
			PackageID:       r.PackageID,
			Duration:        r.Duration,
			PaidAt:          r.PaidAt,
			PeriodStart:     start,
			PeriodEnd:       end,
			MonthsPurchased: months,
			ServiceAmount:   ServiceAmount(r, unit),
		})
		cursor = end
	}
	return out
}

// CurrentPeriod returns the period containing now, if any.
func CurrentPeriod(periods []model.SubscriptionPeriod, now time.Time) (model.SubscriptionPeriod, bool) {
	for _, p := range periods {
		if p.Contains(now) {
			return p, true
		}
	}
	return model.SubscriptionPeriod{}, false
}
