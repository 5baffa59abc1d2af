package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/repository"
	"whatsapp-reseller/internal/infra/metrics"
	red "whatsapp-reseller/internal/infra/redis"
)

var _ repository.PackageRepository = (*packageRepoCacheDecorator)(nil)

const packageListKey = "packages:all"

// packageRepoCacheDecorator caches catalog reads. Prices are read at checkout
// time only, so a stale entry is bounded by ttl and by Save invalidation.
type packageRepoCacheDecorator struct {
	inner repository.PackageRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewPackageRepoCacheDecorator(inner repository.PackageRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.PackageRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	l := logger.With().Str("component", "package_cache").Logger()
	return &packageRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: &l}
}

func packageKey(id string) string { return fmt.Sprintf("package:%s", id) }

func (d *packageRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ServicePackage, error) {
	key := packageKey(id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var p model.ServicePackage
		if json.Unmarshal([]byte(val), &p) == nil {
			metrics.IncCacheRequest("package", metrics.CacheHit)
			return &p, nil
		}
	} else if !errors.Is(err, red.Nil) {
		d.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		metrics.IncCacheRequest("package", metrics.CacheError)
	}

	metrics.IncCacheRequest("package", metrics.CacheMiss)
	p, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if p != nil {
		if b, err := json.Marshal(p); err == nil {
			_ = d.cache.Set(ctx, key, b, d.ttl)
		}
	}
	return p, nil
}

func (d *packageRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.ServicePackage, error) {
	val, err := d.cache.Get(ctx, packageListKey)
	if err == nil {
		var list []*model.ServicePackage
		if json.Unmarshal([]byte(val), &list) == nil {
			metrics.IncCacheRequest("package_list", metrics.CacheHit)
			return list, nil
		}
	} else if !errors.Is(err, red.Nil) {
		d.log.Warn().Err(err).Str("key", packageListKey).Msg("cache read failed")
		metrics.IncCacheRequest("package_list", metrics.CacheError)
	}

	metrics.IncCacheRequest("package_list", metrics.CacheMiss)
	list, err := d.inner.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		if b, err := json.Marshal(list); err == nil {
			_ = d.cache.Set(ctx, packageListKey, b, d.ttl)
		}
	}
	return list, nil
}

// Save invalidates the cached entry and the list before writing through.
func (d *packageRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, p *model.ServicePackage) error {
	_ = d.cache.Del(ctx, packageKey(p.ID))
	_ = d.cache.Del(ctx, packageListKey)
	return d.inner.Save(ctx, tx, p)
}

// Add-ons are not cached.
func (d *packageRepoCacheDecorator) FindAddonByID(ctx context.Context, tx repository.Tx, id string) (*model.Addon, error) {
	return d.inner.FindAddonByID(ctx, tx, id)
}
