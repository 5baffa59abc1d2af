package model

import (
	"time"

	"whatsapp-reseller/internal/domain"
)

// ServicePackage is a purchasable WhatsApp messaging package.
// Packages sharing a Group stack their subscription periods together.
type ServicePackage struct {
	ID           string
	Name         string
	Group        string
	MonthlyPrice int64
	YearlyPrice  int64
	IsActive     bool
	CreatedAt    time.Time
}

func (p *ServicePackage) IsZero() bool { return p == nil || p.ID == "" }

// PriceFor returns the unit price of the package for a billing duration.
func (p *ServicePackage) PriceFor(d Duration) (int64, error) {
	switch d {
	case DurationMonth:
		return p.MonthlyPrice, nil
	case DurationYear:
		if p.YearlyPrice > 0 {
			return p.YearlyPrice, nil
		}
		return p.MonthlyPrice * 12, nil
	}
	return 0, domain.ErrInvalidDuration
}

// GroupKey falls back to the package id for ungrouped packages.
func (p *ServicePackage) GroupKey() string {
	if p.Group != "" {
		return p.Group
	}
	return p.ID
}

// Addon is a one-off add-on (e.g. extra device slot) sold alongside packages.
type Addon struct {
	ID       string
	Name     string
	Price    int64
	IsActive bool
}

// Customer is the minimal profile needed to notify a buyer.
type Customer struct {
	ID    string
	Name  string
	Email string
	Phone string
}
