package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"whatsapp-reseller/internal/domain/ports/adapter"
	"whatsapp-reseller/internal/usecase"
)

const paymentExpirerLockKey = "lock:payment_expirer"

// PaymentExpirer periodically expires payments left pending longer than
// pendingTTL, through the same conditional transition the callback uses.
type PaymentExpirer struct {
	callbacks  usecase.CallbackUseCase
	locker     adapter.Locker // optional
	interval   time.Duration
	pendingTTL time.Duration
	batch      int
	log        *zerolog.Logger
	now        func() time.Time
}

func NewPaymentExpirer(callbacks usecase.CallbackUseCase, locker adapter.Locker, interval, pendingTTL time.Duration, batch int, logger *zerolog.Logger) *PaymentExpirer {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if pendingTTL <= 0 {
		pendingTTL = 24 * time.Hour
	}
	if batch <= 0 {
		batch = 200
	}
	l := logger.With().Str("component", "PaymentExpirer").Logger()
	return &PaymentExpirer{
		callbacks:  callbacks,
		locker:     locker,
		interval:   interval,
		pendingTTL: pendingTTL,
		batch:      batch,
		log:        &l,
		now:        time.Now,
	}
}

func (w *PaymentExpirer) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting payment expirer")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping payment expirer")
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Tick(ctx); err != nil {
				w.log.Error().Err(err).Msg("payment expirer error")
			}
		}
	}
}

func (w *PaymentExpirer) Tick(ctx context.Context) (int, error) {
	unlock, ok := acquire(ctx, w.locker, paymentExpirerLockKey, w.interval, w.log)
	if !ok {
		return 0, nil
	}
	defer unlock()

	n, err := w.callbacks.ExpireStale(ctx, w.now().Add(-w.pendingTTL), w.batch)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		w.log.Info().Int("count", n).Msg("expired stale payments")
	}
	return n, nil
}
