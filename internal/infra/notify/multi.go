// Package notify fans a payment notice out to every configured channel.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/ports/adapter"
	"whatsapp-reseller/internal/infra/metrics"
)

var _ adapter.Notifier = (*Multi)(nil)

// Multi delivers to every channel even when some fail and reports the
// failures together.
type Multi struct {
	channels []adapter.Notifier
	log      *zerolog.Logger
}

func NewMulti(logger *zerolog.Logger, channels ...adapter.Notifier) *Multi {
	l := logger.With().Str("component", "notify").Logger()
	var cs []adapter.Notifier
	for _, c := range channels {
		if c != nil {
			cs = append(cs, c)
		}
	}
	return &Multi{channels: cs, log: &l}
}

func (m *Multi) Name() string { return "multi" }

func (m *Multi) NotifyPaymentSuccess(ctx context.Context, p adapter.PaymentNotice) error {
	var errs []error
	for _, c := range m.channels {
		if err := c.NotifyPaymentSuccess(ctx, p); err != nil {
			metrics.IncNotify(c.Name(), "error")
			m.log.Warn().Err(err).Str("channel", c.Name()).Str("transaction_id", p.TransactionID).Msg("notification failed")
			errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
			continue
		}
		metrics.IncNotify(c.Name(), "sent")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", domain.ErrNotificationFailed, errors.Join(errs...))
	}
	return nil
}

// Noop drops every notice.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) NotifyPaymentSuccess(context.Context, adapter.PaymentNotice) error { return nil }
