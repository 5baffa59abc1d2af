//go:build !integration

package postgres

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/repository"
	red "whatsapp-reseller/internal/infra/redis"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// --- Mocks for Cache Decorator Tests ---

// mockInnerPackageRepo mocks the database repository that the package decorator wraps.
type mockInnerPackageRepo struct {
	SaveFunc          func(ctx context.Context, tx repository.Tx, p *model.ServicePackage) error
	FindByIDFunc      func(ctx context.Context, tx repository.Tx, id string) (*model.ServicePackage, error)
	ListAllFunc       func(ctx context.Context, tx repository.Tx) ([]*model.ServicePackage, error)
	FindAddonByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Addon, error)
}

func (m *mockInnerPackageRepo) Save(ctx context.Context, tx repository.Tx, p *model.ServicePackage) error {
	return m.SaveFunc(ctx, tx, p)
}
func (m *mockInnerPackageRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ServicePackage, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerPackageRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.ServicePackage, error) {
	return m.ListAllFunc(ctx, tx)
}
func (m *mockInnerPackageRepo) FindAddonByID(ctx context.Context, tx repository.Tx, id string) (*model.Addon, error) {
	return m.FindAddonByIDFunc(ctx, tx, id)
}

// mockRedisClient mocks our Redis client wrapper. Unset funcs behave as a
// healthy, empty cache.
type mockRedisClient struct {
	GetFunc func(ctx context.Context, key string) (string, error)
	SetFunc func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc func(ctx context.Context, keys ...string) error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc == nil {
		return "", red.Nil
	}
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc == nil {
		return nil
	}
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return true, nil
}
func (m *mockRedisClient) Exists(ctx context.Context, key string) (bool, error) { return false, nil }
func (m *mockRedisClient) Ping(ctx context.Context) error                       { return nil }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error)  { return 1, nil }
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}
func (m *mockRedisClient) DelIfEquals(ctx context.Context, key, value string) (bool, error) {
	return true, nil
}
func (m *mockRedisClient) Close() error { return nil }
