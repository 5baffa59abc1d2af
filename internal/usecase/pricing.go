package usecase

import (
	"context"
	"errors"
	"strings"

	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/repository"
)

// CartItem is a requested cart row before prices are resolved.
type CartItem struct {
	ScopeTag string `json:"scopeTag"`
	ID       string `json:"id"`
	Quantity int64  `json:"quantity"`
	Duration string `json:"duration,omitempty"`
}

// priceItems resolves unit prices from the catalog. Clients never supply
// prices; a zero quantity means one.
func priceItems(ctx context.Context, packages repository.PackageRepository, items []CartItem) ([]model.CartLine, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	lines := make([]model.CartLine, 0, len(items))
	for _, it := range items {
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 0 {
			return nil, domain.ErrInvalidQuantity
		}
		dur, ok := model.ParseDuration(it.Duration)
		if !ok {
			return nil, domain.ErrInvalidDuration
		}

		switch strings.ToLower(strings.TrimSpace(it.ScopeTag)) {
		case model.ScopePackage:
			pkg, err := packages.FindByID(ctx, nil, it.ID)
			if err != nil {
				return nil, notFoundAs(err, domain.ErrPackageNotFound)
			}
			if !pkg.IsActive {
				return nil, domain.ErrPackageNotFound
			}
			price, err := pkg.PriceFor(dur)
			if err != nil {
				return nil, err
			}
			lines = append(lines, model.CartLine{ScopeTag: model.ScopePackage, RefID: pkg.ID, Duration: dur, UnitPrice: price, Quantity: qty})
		case model.ScopeAddon:
			addon, err := packages.FindAddonByID(ctx, nil, it.ID)
			if err != nil {
				return nil, notFoundAs(err, domain.ErrPackageNotFound)
			}
			if !addon.IsActive {
				return nil, domain.ErrPackageNotFound
			}
			lines = append(lines, model.CartLine{ScopeTag: model.ScopeAddon, RefID: addon.ID, Duration: model.DurationMonth, UnitPrice: addon.Price, Quantity: qty})
		default:
			return nil, domain.ErrInvalidArgument
		}
	}
	return lines, nil
}

func notFoundAs(err, target error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return target
	}
	return err
}
