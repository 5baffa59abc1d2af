// File: internal/usecase/callback_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/adapter"
	"whatsapp-reseller/internal/domain/ports/repository"
	"whatsapp-reseller/internal/infra/metrics"
)

// Compile-time check
var _ CallbackUseCase = (*callbackUC)(nil)

// Callback outcomes. Every outcome except an error is acknowledged to the
// gateway with success.
const (
	OutcomeApplied         = "applied"
	OutcomeDuplicate       = "duplicate"
	OutcomeIgnoredTerminal = "ignored_terminal"
	OutcomeLostRace        = "lost_race"
)

const (
	SourceGateway     = "gateway"
	SourceExpirySweep = "expiry-sweep"
)

type CallbackUseCase interface {
	// HandleCallback verifies and applies one gateway notification. Redelivery
	// of the same notification is acknowledged without side effects.
	HandleCallback(ctx context.Context, p model.CallbackPayload) (*CallbackResult, error)
	// ExpireStale moves pending payments created before olderThan to expired.
	ExpireStale(ctx context.Context, olderThan time.Time, limit int) (int, error)
}

type CallbackResult struct {
	Outcome   string
	PaymentID string
	From      model.PaymentStatus
	To        model.PaymentStatus
	EventID   string // outbox event written for a paid transition
}

// EventDispatcher hands a committed outbox event to asynchronous delivery.
type EventDispatcher interface {
	Enqueue(eventID string)
}

type callbackUC struct {
	payments     repository.PaymentRepository
	transactions repository.TransactionRepository
	outbox       repository.OutboxRepository
	tm           repository.TransactionManager
	gateway      adapter.PaymentGateway
	replay       adapter.ReplayGuard // optional
	dispatcher   EventDispatcher     // optional; the relay picks up events otherwise
	orderPrefix  string
	log          *zerolog.Logger
	now          func() time.Time
}

func NewCallbackUseCase(
	payments repository.PaymentRepository,
	transactions repository.TransactionRepository,
	outbox repository.OutboxRepository,
	tm repository.TransactionManager,
	gateway adapter.PaymentGateway,
	replay adapter.ReplayGuard,
	dispatcher EventDispatcher,
	orderPrefix string,
	logger *zerolog.Logger,
) *callbackUC {
	return &callbackUC{
		payments:     payments,
		transactions: transactions,
		outbox:       outbox,
		tm:           tm,
		gateway:      gateway,
		replay:       replay,
		dispatcher:   dispatcher,
		orderPrefix:  orderPrefix,
		log:          logger,
		now:          time.Now,
	}
}

func (u *callbackUC) HandleCallback(ctx context.Context, p model.CallbackPayload) (*CallbackResult, error) {
	if !u.gateway.VerifyCallback(p) {
		u.log.Warn().Str("merchant_order_id", p.MerchantOrderID).Msg("callback signature mismatch")
		return nil, domain.ErrInvalidSignature
	}

	ref, err := model.ParseMerchantOrderID(p.MerchantOrderID, u.orderPrefix)
	if err != nil {
		return nil, err
	}

	if u.replay != nil {
		seen, err := u.replay.Seen(ctx, p)
		if err != nil {
			u.log.Warn().Err(err).Msg("replay guard unavailable; continuing")
		} else if seen {
			return &CallbackResult{Outcome: OutcomeDuplicate}, nil
		}
	}

	pay, err := u.resolvePayment(ctx, p.Reference, ref.TransactionID)
	if err != nil {
		return nil, err
	}
	log := u.log.With().Str("payment_id", pay.ID).Str("transaction_id", pay.TransactionID).Logger()

	if amt, err := strconv.ParseInt(strings.TrimSpace(p.Amount), 10, 64); err == nil && amt != pay.Amount {
		log.Warn().Int64("expected", pay.Amount).Int64("got", amt).Msg("callback amount mismatch")
	}

	target := model.StatusFromResultCode(p.ResultCode)
	res := &CallbackResult{PaymentID: pay.ID, From: pay.Status, To: target}

	if pay.Status == target {
		res.Outcome = OutcomeDuplicate
		u.markSeen(ctx, p)
		return res, nil
	}
	if pay.Status.IsTerminal() || !model.CanTransition(pay.Status, target) {
		log.Info().Str("current", string(pay.Status)).Str("requested", string(target)).Msg("ignoring callback for settled payment")
		res.Outcome = OutcomeIgnoredTerminal
		u.markSeen(ctx, p)
		return res, nil
	}

	won, eventID, err := u.transition(ctx, pay, target, SourceGateway, p.Raw, p.Reference)
	if err != nil {
		return nil, err
	}
	if !won {
		res.Outcome = OutcomeLostRace
		return res, nil
	}

	res.Outcome = OutcomeApplied
	res.EventID = eventID
	u.markSeen(ctx, p)
	log.Info().Str("from", string(res.From)).Str("to", string(target)).Msg("payment status updated")
	return res, nil
}

func (u *callbackUC) ExpireStale(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	pending, err := u.payments.ListPendingOlderThan(ctx, nil, olderThan, limit)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, pay := range pending {
		won, _, err := u.transition(ctx, pay, model.PaymentStatusExpired, SourceExpirySweep, nil, "")
		if err != nil {
			u.log.Error().Err(err).Str("payment_id", pay.ID).Msg("expire payment failed")
			continue
		}
		if won {
			expired++
		}
	}
	return expired, nil
}

// resolvePayment looks up by gateway reference first and falls back to the
// transaction id embedded in the merchant order id. A reference that points
// at a different transaction is treated as unknown.
func (u *callbackUC) resolvePayment(ctx context.Context, reference, transactionID string) (*model.Payment, error) {
	if reference = strings.TrimSpace(reference); reference != "" {
		pay, err := u.payments.FindByExternalReference(ctx, nil, reference)
		switch {
		case err == nil:
			if pay.TransactionID != transactionID {
				return nil, domain.ErrPaymentNotFound
			}
			return pay, nil
		case !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
	}
	pay, err := u.payments.FindByTransactionAndProvider(ctx, nil, transactionID, u.gateway.Name())
	if err != nil {
		return nil, notFoundAs(err, domain.ErrPaymentNotFound)
	}
	return pay, nil
}

// transition runs the conditional status update and its side effects in one
// database transaction. Only the caller that wins the update writes the
// outbox event or touches the transaction row.
func (u *callbackUC) transition(ctx context.Context, pay *model.Payment, target model.PaymentStatus, source string, raw map[string]string, reference string) (bool, string, error) {
	now := u.now()
	entry := model.CallbackEntry{ReceivedAt: now, Source: source, From: pay.Status, To: target, Payload: raw}
	var paidAt *time.Time
	if target == model.PaymentStatusPaid {
		paidAt = &now
	}
	if reference == "" {
		reference = pay.ExternalReference
	}

	var (
		won     bool
		eventID string
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		ok, err := u.payments.TransitionStatus(ctx, tx, pay.ID, pay.Status, target, entry, paidAt)
		if err != nil || !ok {
			return err
		}
		won = true

		if target != model.PaymentStatusPaid {
			_, err := u.transactions.UpdateStatusIfPending(ctx, tx, pay.TransactionID, model.TransactionStatusFor(target), nil)
			return err
		}

		payload, err := json.Marshal(model.PaymentPaidEvent{
			PaymentID:     pay.ID,
			TransactionID: pay.TransactionID,
			Provider:      pay.Provider,
			Reference:     reference,
			PaidAt:        now,
		})
		if err != nil {
			return err
		}
		ev := &model.OutboxEvent{
			ID:          ulid.Make().String(),
			Kind:        model.OutboxKindPaymentPaid,
			AggregateID: pay.ID,
			Payload:     payload,
			Status:      model.OutboxStatusPending,
			AvailableAt: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := u.outbox.Enqueue(ctx, tx, ev); err != nil {
			return err
		}
		eventID = ev.ID
		return nil
	})
	if err != nil || !won {
		return false, "", err
	}

	metrics.IncTransition(string(pay.Status), string(target), source)
	if eventID != "" && u.dispatcher != nil {
		u.dispatcher.Enqueue(eventID)
	}
	return true, eventID, nil
}

func (u *callbackUC) markSeen(ctx context.Context, p model.CallbackPayload) {
	if u.replay == nil {
		return
	}
	if err := u.replay.Mark(ctx, p); err != nil {
		u.log.Warn().Err(err).Msg("failed to remember callback")
	}
}
