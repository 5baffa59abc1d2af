package adapter

import (
	"context"

	"whatsapp-reseller/internal/domain/model"
)

// InvoiceRequest is what checkout sends to the gateway.
type InvoiceRequest struct {
	MerchantOrderID string
	Amount          int64
	ProductDetails  string
	CustomerName    string
	Email           string
	Phone           string
	CallbackURL     string
	ReturnURL       string
	ExpiryMinutes   int
}

// InvoiceResult is the gateway's answer to an invoice request.
type InvoiceResult struct {
	Reference  string
	PaymentURL string
}

// PaymentGateway is the hex port for payment providers.
type PaymentGateway interface {
	Name() string
	// RequestPayment creates an invoice at the provider.
	RequestPayment(ctx context.Context, req InvoiceRequest) (InvoiceResult, error)
	// VerifyCallback checks the webhook signature over the declared fields.
	VerifyCallback(p model.CallbackPayload) bool
}
