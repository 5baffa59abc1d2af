package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"whatsapp-reseller/internal/config"
	"whatsapp-reseller/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*AdminNotifier)(nil)

// messageSender is the subset of *tgbotapi.BotAPI used here.
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// AdminNotifier posts a short line to every configured admin chat when a
// payment settles.
type AdminNotifier struct {
	bot      messageSender
	adminIDs []int64
	log      *zerolog.Logger
}

// NewAdminNotifier connects to the Bot API. It fails when the token is
// rejected by Telegram.
func NewAdminNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*AdminNotifier, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram token is empty")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return newAdminNotifier(bot, cfg.AdminIDs, logger), nil
}

func newAdminNotifier(bot messageSender, adminIDs []int64, logger *zerolog.Logger) *AdminNotifier {
	l := logger.With().Str("component", "telegram_notifier").Logger()
	return &AdminNotifier{bot: bot, adminIDs: adminIDs, log: &l}
}

func (n *AdminNotifier) Name() string { return "telegram" }

func (n *AdminNotifier) NotifyPaymentSuccess(ctx context.Context, p adapter.PaymentNotice) error {
	if len(n.adminIDs) == 0 {
		return nil
	}
	text := formatNotice(p)
	var errs []string
	for _, chatID := range n.adminIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := n.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			n.log.Warn().Err(err).Int64("chat_id", chatID).Msg("send admin alert failed")
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("telegram: %d of %d sends failed: %s", len(errs), len(n.adminIDs), strings.Join(errs, "; "))
	}
	return nil
}

func formatNotice(p adapter.PaymentNotice) string {
	var b strings.Builder
	b.WriteString("Payment received\n")
	fmt.Fprintf(&b, "Customer: %s (%s)\n", p.CustomerName, p.CustomerID)
	fmt.Fprintf(&b, "Amount: %d %s\n", p.Amount, p.Currency)
	fmt.Fprintf(&b, "Transaction: %s\n", p.TransactionID)
	if p.Reference != "" {
		fmt.Fprintf(&b, "Reference: %s\n", p.Reference)
	}
	fmt.Fprintf(&b, "Paid at: %s", p.PaidAt.UTC().Format("2006-01-02 15:04:05 MST"))
	return b.String()
}
