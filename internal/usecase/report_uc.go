// File: internal/usecase/report_uc.go
package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"whatsapp-reseller/internal/domain/billing"
	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/repository"
)

// Compile-time check
var _ ReportUseCase = (*reportUC)(nil)

type ReportUseCase interface {
	// History derives subscription periods per package group from the
	// customer's purchase records. Periods are returned newest first.
	History(ctx context.Context, customerID string, now time.Time) ([]GroupHistory, error)
}

type GroupHistory struct {
	Group        string                     `json:"group"`
	PackageID    string                     `json:"packageId"`
	PackageName  string                     `json:"packageName"`
	MonthlyPrice int64                      `json:"monthlyPrice"`
	Periods      []model.SubscriptionPeriod `json:"periods"`
	Current      *model.SubscriptionPeriod  `json:"current,omitempty"`
	ActiveUntil  *time.Time                 `json:"activeUntil,omitempty"`
}

type reportUC struct {
	purchases repository.PurchaseRepository
	packages  repository.PackageRepository
	log       *zerolog.Logger
}

func NewReportUseCase(purchases repository.PurchaseRepository, packages repository.PackageRepository, logger *zerolog.Logger) *reportUC {
	return &reportUC{purchases: purchases, packages: packages, log: logger}
}

func (u *reportUC) History(ctx context.Context, customerID string, now time.Time) ([]GroupHistory, error) {
	records, err := u.purchases.ListByCustomer(ctx, nil, customerID)
	if err != nil {
		return nil, err
	}

	groups := map[string][]model.PurchaseRecord{}
	var order []string
	for _, r := range records {
		key := r.PackageGroup
		if key == "" {
			key = r.PackageID
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], *r)
	}
	sort.Strings(order)

	out := make([]GroupHistory, 0, len(order))
	for _, key := range order {
		recs := groups[key]
		latest := recs[0]
		for _, r := range recs[1:] {
			if r.PaidAt.After(latest.PaidAt) {
				latest = r
			}
		}

		h := GroupHistory{Group: key, PackageID: latest.PackageID}
		prices := u.monthlyPrices(ctx, recs)
		if pkg := prices[latest.PackageID]; pkg != nil {
			h.PackageName = pkg.Name
			h.MonthlyPrice = pkg.MonthlyPrice
		}

		// A group can mix tiers after an upgrade or downgrade; months are
		// inferred per record from that record's package. Records whose
		// package is gone fall back to the group's current price.
		periods := billing.StackPeriodsBy(recs, func(id string) int64 {
			if pkg := prices[id]; pkg != nil {
				return pkg.MonthlyPrice
			}
			return h.MonthlyPrice
		})
		if len(periods) > 0 {
			end := periods[len(periods)-1].PeriodEnd
			if end.After(now) {
				h.ActiveUntil = &end
			}
		}
		if cur, ok := billing.CurrentPeriod(periods, now); ok {
			h.Current = &cur
		}
		for i, j := 0, len(periods)-1; i < j; i, j = i+1, j-1 {
			periods[i], periods[j] = periods[j], periods[i]
		}
		h.Periods = periods
		out = append(out, h)
	}
	return out, nil
}

// monthlyPrices loads each distinct package referenced by recs once. Missing
// packages map to nil.
func (u *reportUC) monthlyPrices(ctx context.Context, recs []model.PurchaseRecord) map[string]*model.ServicePackage {
	out := make(map[string]*model.ServicePackage, len(recs))
	for _, r := range recs {
		if _, done := out[r.PackageID]; done {
			continue
		}
		pkg, err := u.packages.FindByID(ctx, nil, r.PackageID)
		if err != nil {
			u.log.Warn().Err(err).Str("package_id", r.PackageID).Msg("package missing for history")
			out[r.PackageID] = nil
			continue
		}
		out[r.PackageID] = pkg
	}
	return out
}
