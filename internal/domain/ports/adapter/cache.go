package adapter

import (
	"context"
	"time"

	"whatsapp-reseller/internal/domain/model"
)

// ReplayGuard remembers callback payloads that were already processed so an
// exact redelivery can be acknowledged without touching the database. It is
// an optimization only; correctness comes from the conditional transition.
type ReplayGuard interface {
	Seen(ctx context.Context, p model.CallbackPayload) (bool, error)
	Mark(ctx context.Context, p model.CallbackPayload) error
}

// Locker is a best-effort distributed mutex.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// RateLimiter counts hits per key in a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
