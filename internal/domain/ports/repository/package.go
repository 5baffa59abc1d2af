package repository

import (
	"context"

	"whatsapp-reseller/internal/domain/model"
)

type PackageRepository interface {
	Save(ctx context.Context, tx Tx, p *model.ServicePackage) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.ServicePackage, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.ServicePackage, error)
	FindAddonByID(ctx context.Context, tx Tx, id string) (*model.Addon, error)
}

type CustomerRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Customer) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Customer, error)
}
