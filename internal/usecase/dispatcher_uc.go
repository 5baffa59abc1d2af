// File: internal/usecase/dispatcher_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/adapter"
	"whatsapp-reseller/internal/domain/ports/repository"
	"whatsapp-reseller/internal/infra/metrics"
)

// TaskSubmitter runs tasks asynchronously; *worker.Pool satisfies it.
type TaskSubmitter interface {
	Submit(task func(ctx context.Context) error) error
}

// DispatchSettings controls outbox retries.
type DispatchSettings struct {
	MaxAttempts  int
	RetryBackoff time.Duration
}

// ActivationDispatcher delivers payment.paid outbox events: it runs the
// activator and then sends notifications. Delivery is at least once; a
// notification may repeat if the process dies between sending it and marking
// the event delivered. Activation itself is idempotent.
type ActivationDispatcher struct {
	outbox       repository.OutboxRepository
	payments     repository.PaymentRepository
	transactions repository.TransactionRepository
	customers    repository.CustomerRepository
	activator    adapter.Activator
	notifier     adapter.Notifier
	pool         TaskSubmitter
	settings     DispatchSettings
	log          *zerolog.Logger
	now          func() time.Time
}

var _ EventDispatcher = (*ActivationDispatcher)(nil)

func NewActivationDispatcher(
	outbox repository.OutboxRepository,
	payments repository.PaymentRepository,
	transactions repository.TransactionRepository,
	customers repository.CustomerRepository,
	activator adapter.Activator,
	notifier adapter.Notifier,
	pool TaskSubmitter,
	settings DispatchSettings,
	logger *zerolog.Logger,
) *ActivationDispatcher {
	if settings.MaxAttempts <= 0 {
		settings.MaxAttempts = 8
	}
	if settings.RetryBackoff <= 0 {
		settings.RetryBackoff = 30 * time.Second
	}
	return &ActivationDispatcher{
		outbox:       outbox,
		payments:     payments,
		transactions: transactions,
		customers:    customers,
		activator:    activator,
		notifier:     notifier,
		pool:         pool,
		settings:     settings,
		log:          logger,
		now:          time.Now,
	}
}

// Enqueue schedules delivery on the worker pool. A full queue is not an
// error: the event stays pending and the relay retries it.
func (d *ActivationDispatcher) Enqueue(eventID string) {
	if d.pool == nil {
		return
	}
	err := d.pool.Submit(func(ctx context.Context) error {
		return d.Deliver(ctx, eventID)
	})
	if err != nil {
		d.log.Warn().Err(err).Str("event_id", eventID).Msg("dispatch deferred to relay")
	}
}

// Deliver claims and processes one event. An event claimed elsewhere or
// already delivered is skipped.
func (d *ActivationDispatcher) Deliver(ctx context.Context, eventID string) error {
	ev, err := d.outbox.Claim(ctx, nil, eventID)
	if errors.Is(err, domain.ErrOutboxEventUnavailable) {
		return nil
	}
	if err != nil {
		return err
	}
	log := d.log.With().Str("event_id", ev.ID).Str("kind", ev.Kind).Logger()

	if ev.Kind != model.OutboxKindPaymentPaid {
		log.Error().Msg("unknown outbox event kind")
		metrics.IncOutboxEvent(ev.Kind, "unknown")
		return d.outbox.MarkRetry(ctx, nil, ev.ID, "unknown kind", d.now(), true)
	}

	var paid model.PaymentPaidEvent
	if err := json.Unmarshal(ev.Payload, &paid); err != nil {
		metrics.IncOutboxEvent(ev.Kind, "malformed")
		return d.outbox.MarkRetry(ctx, nil, ev.ID, err.Error(), d.now(), true)
	}

	start := time.Now()
	err = d.activate(ctx, paid)
	metrics.ObserveActivation(time.Since(start).Seconds())
	if err != nil {
		final := ev.Attempts >= d.settings.MaxAttempts
		next := d.now().Add(d.backoff(ev.Attempts))
		if mErr := d.outbox.MarkRetry(ctx, nil, ev.ID, err.Error(), next, final); mErr != nil {
			log.Error().Err(mErr).Msg("failed to reschedule outbox event")
		}
		if final {
			metrics.IncOutboxEvent(ev.Kind, "failed")
			log.Error().Err(err).Int("attempts", ev.Attempts).Msg("activation gave up")
		} else {
			metrics.IncOutboxEvent(ev.Kind, "retry")
			log.Warn().Err(err).Int("attempts", ev.Attempts).Time("next", next).Msg("activation failed; will retry")
		}
		return fmt.Errorf("%w: %v", domain.ErrActivationFailed, err)
	}

	d.notify(ctx, paid, log)

	if err := d.outbox.MarkDelivered(ctx, nil, ev.ID); err != nil {
		return err
	}
	metrics.IncOutboxEvent(ev.Kind, "delivered")
	return nil
}

// activate dates the purchase at the settlement time the event carries when
// the activator supports it, so a retried delivery does not shift periods.
func (d *ActivationDispatcher) activate(ctx context.Context, paid model.PaymentPaidEvent) error {
	if sa, ok := d.activator.(adapter.SettledActivator); ok && !paid.PaidAt.IsZero() {
		return sa.ActivateSettled(ctx, paid.TransactionID, paid.PaidAt)
	}
	return d.activator.UpdateTransactionOnPayment(ctx, paid.TransactionID, model.PaymentStatusPaid)
}

func (d *ActivationDispatcher) notify(ctx context.Context, paid model.PaymentPaidEvent, log zerolog.Logger) {
	if d.notifier == nil {
		return
	}
	notice := adapter.PaymentNotice{
		PaymentID:     paid.PaymentID,
		TransactionID: paid.TransactionID,
		Reference:     paid.Reference,
		PaidAt:        paid.PaidAt,
	}
	if t, err := d.transactions.FindByID(ctx, nil, paid.TransactionID); err == nil {
		notice.CustomerID = t.CustomerID
		notice.Amount = t.ChargeAmount()
		notice.Currency = t.Currency
		if c, err := d.customers.FindByID(ctx, nil, t.CustomerID); err == nil {
			notice.CustomerName = c.Name
			notice.Email = c.Email
			notice.Phone = c.Phone
		}
	} else {
		log.Warn().Err(err).Msg("notice without transaction details")
	}
	if notice.Amount == 0 && d.payments != nil {
		if p, err := d.payments.FindByID(ctx, nil, paid.PaymentID); err == nil {
			notice.Amount = p.Amount
		}
	}
	if err := d.notifier.NotifyPaymentSuccess(ctx, notice); err != nil {
		log.Warn().Err(err).Msg("payment notification failed")
	}
}

// backoff doubles per attempt, capped at 64x the base delay.
func (d *ActivationDispatcher) backoff(attempts int) time.Duration {
	shift := attempts - 1
	if shift < 0 {
		shift = 0
	}
	if shift > 6 {
		shift = 6
	}
	return d.settings.RetryBackoff * time.Duration(1<<uint(shift))
}
