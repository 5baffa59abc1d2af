package payment

import (
	"fmt"

	"whatsapp-reseller/internal/config"
	"whatsapp-reseller/internal/domain/ports/adapter"
)

// NewGateway builds the gateway selected by config.
func NewGateway(cfg config.GatewayConfig) (adapter.PaymentGateway, error) {
	switch cfg.Provider {
	case "duitku":
		return NewDuitkuGateway(cfg), nil
	case "noop", "":
		return NewNoopGateway(cfg.MerchantCode, cfg.APIKey), nil
	default:
		return nil, fmt.Errorf("unknown payment gateway %q", cfg.Provider)
	}
}
