package email

import (
	"context"
	"errors"
	"fmt"
	"html"

	brevo "github.com/getbrevo/brevo-go/lib"

	"whatsapp-reseller/internal/config"
	"whatsapp-reseller/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*BrevoNotifier)(nil)

// transactionalSender is the subset of the Brevo transactional email API used here.
type transactionalSender interface {
	send(ctx context.Context, msg brevo.SendSmtpEmail) error
}

type brevoAPI struct{ client *brevo.APIClient }

func (a brevoAPI) send(ctx context.Context, msg brevo.SendSmtpEmail) error {
	_, resp, err := a.client.TransactionalEmailsApi.SendTransacEmail(ctx, msg)
	if err != nil {
		return err
	}
	if resp != nil && resp.StatusCode >= 300 {
		return fmt.Errorf("brevo API error: status %d", resp.StatusCode)
	}
	return nil
}

// BrevoNotifier emails the customer a payment receipt.
type BrevoNotifier struct {
	api         transactionalSender
	senderName  string
	senderEmail string
}

func NewBrevoNotifier(cfg config.BrevoConfig) (*BrevoNotifier, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("brevo api key is empty")
	}
	bc := brevo.NewConfiguration()
	bc.AddDefaultHeader("api-key", cfg.APIKey)
	return newBrevoNotifier(brevoAPI{client: brevo.NewAPIClient(bc)}, cfg.SenderName, cfg.SenderEmail), nil
}

func newBrevoNotifier(api transactionalSender, senderName, senderEmail string) *BrevoNotifier {
	return &BrevoNotifier{api: api, senderName: senderName, senderEmail: senderEmail}
}

func (n *BrevoNotifier) Name() string { return "brevo" }

// NotifyPaymentSuccess skips customers without an email address.
func (n *BrevoNotifier) NotifyPaymentSuccess(ctx context.Context, p adapter.PaymentNotice) error {
	if p.Email == "" {
		return nil
	}
	msg := brevo.SendSmtpEmail{
		Sender:      &brevo.SendSmtpEmailSender{Name: n.senderName, Email: n.senderEmail},
		To:          []brevo.SendSmtpEmailTo{{Email: p.Email, Name: p.CustomerName}},
		Subject:     fmt.Sprintf("Payment received for order %s", p.TransactionID),
		HtmlContent: receiptHTML(p),
		TextContent: receiptText(p),
	}
	if err := n.api.send(ctx, msg); err != nil {
		return fmt.Errorf("brevo send: %w", err)
	}
	return nil
}

func receiptText(p adapter.PaymentNotice) string {
	return fmt.Sprintf("Hi %s,\n\nWe received your payment of %d %s for order %s.\nYour WhatsApp package is now active.\n\nReference: %s\n",
		p.CustomerName, p.Amount, p.Currency, p.TransactionID, p.Reference)
}

func receiptHTML(p adapter.PaymentNotice) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
<h2>Payment received</h2>
<p>Hi %s,</p>
<p>We received your payment of <strong>%d %s</strong> for order <code>%s</code>. Your WhatsApp package is now active.</p>
<p style="color: #999; font-size: 12px;">Reference: %s</p>
</body></html>`,
		html.EscapeString(p.CustomerName), p.Amount, html.EscapeString(p.Currency),
		html.EscapeString(p.TransactionID), html.EscapeString(p.Reference))
}
