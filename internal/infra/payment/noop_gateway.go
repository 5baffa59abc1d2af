package payment

import (
	"context"
	"fmt"

	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopGateway)(nil)

// NoopGateway is used in development: invoices point at a local URL and
// callbacks are signed like Duitku with the configured key, so the whole
// reconciliation path can be driven with curl.
type NoopGateway struct {
	merchantCode string
	apiKey       string
}

func NewNoopGateway(merchantCode, apiKey string) *NoopGateway {
	if merchantCode == "" {
		merchantCode = "DEV"
	}
	return &NoopGateway{merchantCode: merchantCode, apiKey: apiKey}
}

func (g *NoopGateway) Name() string { return "noop" }

func (g *NoopGateway) RequestPayment(ctx context.Context, in adapter.InvoiceRequest) (adapter.InvoiceResult, error) {
	ref := "DEV-" + in.MerchantOrderID
	return adapter.InvoiceResult{Reference: ref, PaymentURL: fmt.Sprintf("http://localhost/dev-pay/%s", ref)}, nil
}

func (g *NoopGateway) VerifyCallback(p model.CallbackPayload) bool {
	return p.MerchantCode == g.merchantCode && VerifyDuitkuCallbackSignature(g.apiKey, p)
}
