package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/ports/adapter"
	"whatsapp-reseller/internal/domain/ports/repository"
	"whatsapp-reseller/internal/usecase"
)

const outboxRelayLockKey = "lock:outbox_relay"

// OutboxRelay periodically re-submits due outbox events and returns stale
// processing claims to pending. It covers events whose inline dispatch was
// dropped, failed activations waiting for their retry, and workers that died
// mid-delivery. With a locker only one replica relays per tick.
type OutboxRelay struct {
	outbox     repository.OutboxRepository
	dispatcher usecase.EventDispatcher
	locker     adapter.Locker // optional
	interval   time.Duration
	staleAfter time.Duration
	batch      int
	log        *zerolog.Logger
	now        func() time.Time
}

func NewOutboxRelay(outbox repository.OutboxRepository, dispatcher usecase.EventDispatcher, locker adapter.Locker, interval, staleAfter time.Duration, batch int, logger *zerolog.Logger) *OutboxRelay {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if staleAfter <= 0 {
		staleAfter = 5 * time.Minute
	}
	if batch <= 0 {
		batch = 50
	}
	l := logger.With().Str("component", "OutboxRelay").Logger()
	return &OutboxRelay{
		outbox:     outbox,
		dispatcher: dispatcher,
		locker:     locker,
		interval:   interval,
		staleAfter: staleAfter,
		batch:      batch,
		log:        &l,
		now:        time.Now,
	}
}

func (w *OutboxRelay) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting outbox relay")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping outbox relay")
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Tick(ctx); err != nil {
				w.log.Error().Err(err).Msg("outbox relay tick failed")
			}
		}
	}
}

// Tick runs one relay pass and reports how many events were re-submitted.
func (w *OutboxRelay) Tick(ctx context.Context) (int, error) {
	unlock, ok := acquire(ctx, w.locker, outboxRelayLockKey, w.interval, w.log)
	if !ok {
		return 0, nil
	}
	defer unlock()

	now := w.now()
	released, err := w.outbox.ReleaseStale(ctx, nil, now.Add(-w.staleAfter))
	if err != nil {
		return 0, err
	}
	if released > 0 {
		w.log.Warn().Int64("count", released).Msg("released stale outbox claims")
	}

	due, err := w.outbox.ListDue(ctx, nil, now, w.batch)
	if err != nil {
		return 0, err
	}
	for _, ev := range due {
		w.dispatcher.Enqueue(ev.ID)
	}
	if len(due) > 0 {
		w.log.Debug().Int("count", len(due)).Msg("relayed outbox events")
	}
	return len(due), nil
}

// acquire takes the optional distributed lock. A nil locker always
// succeeds; a lock held elsewhere skips the tick.
func acquire(ctx context.Context, locker adapter.Locker, key string, ttl time.Duration, log *zerolog.Logger) (func(), bool) {
	if locker == nil {
		return func() {}, true
	}
	token, err := locker.TryLock(ctx, key, ttl)
	if err != nil {
		if !errors.Is(err, domain.ErrLockNotAcquired) {
			log.Warn().Err(err).Str("key", key).Msg("lock unavailable; skipping tick")
		}
		return nil, false
	}
	return func() {
		if err := locker.Unlock(context.Background(), key, token); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("unlock failed")
		}
	}, true
}
