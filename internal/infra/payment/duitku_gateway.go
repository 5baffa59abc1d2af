package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"whatsapp-reseller/internal/config"
	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*DuitkuGateway)(nil)

// DuitkuGateway implements adapter.PaymentGateway using direct HTTP calls.
type DuitkuGateway struct {
	merchantCode string
	apiKey       string
	baseURL      string
	client       *http.Client
}

func NewDuitkuGateway(cfg config.GatewayConfig) *DuitkuGateway {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://sandbox.duitku.com/webapi/api/merchant"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DuitkuGateway{
		merchantCode: cfg.MerchantCode,
		apiKey:       cfg.APIKey,
		baseURL:      baseURL,
		client:       &http.Client{Timeout: timeout},
	}
}

func (g *DuitkuGateway) Name() string { return "duitku" }

type duitkuInquiryRequest struct {
	MerchantCode    string `json:"merchantCode"`
	PaymentAmount   int64  `json:"paymentAmount"`
	MerchantOrderID string `json:"merchantOrderId"`
	ProductDetails  string `json:"productDetails"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	CustomerVaName  string `json:"customerVaName,omitempty"`
	CallbackURL     string `json:"callbackUrl"`
	ReturnURL       string `json:"returnUrl"`
	Signature       string `json:"signature"`
	ExpiryPeriod    int    `json:"expiryPeriod,omitempty"`
}

// DuitkuInquiryResponse represents the response from the inquiry API.
type DuitkuInquiryResponse struct {
	MerchantCode  string `json:"merchantCode"`
	Reference     string `json:"reference"`
	PaymentURL    string `json:"paymentUrl"`
	VANumber      string `json:"vaNumber"`
	Amount        string `json:"amount"`
	StatusCode    string `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
}

// RequestPayment creates an invoice and returns the gateway reference.
func (g *DuitkuGateway) RequestPayment(ctx context.Context, in adapter.InvoiceRequest) (adapter.InvoiceResult, error) {
	body := duitkuInquiryRequest{
		MerchantCode:    g.merchantCode,
		PaymentAmount:   in.Amount,
		MerchantOrderID: in.MerchantOrderID,
		ProductDetails:  in.ProductDetails,
		Email:           in.Email,
		PhoneNumber:     in.Phone,
		CustomerVaName:  in.CustomerName,
		CallbackURL:     in.CallbackURL,
		ReturnURL:       in.ReturnURL,
		Signature:       InquirySignature(g.merchantCode, in.MerchantOrderID, strconv.FormatInt(in.Amount, 10), g.apiKey),
		ExpiryPeriod:    in.ExpiryMinutes,
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return adapter.InvoiceResult{}, fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v2/inquiry", bytes.NewBuffer(jsonData))
	if err != nil {
		return adapter.InvoiceResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return adapter.InvoiceResult{}, fmt.Errorf("%w: %v", domain.ErrGatewayRequestFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return adapter.InvoiceResult{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return adapter.InvoiceResult{}, fmt.Errorf("%w: http %d: %s", domain.ErrGatewayRequestFailed, resp.StatusCode, truncate(string(raw), 200))
	}

	var out DuitkuInquiryResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return adapter.InvoiceResult{}, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, truncate(string(raw), 200))
	}
	if out.StatusCode != "00" {
		return adapter.InvoiceResult{}, fmt.Errorf("%w: duitku status %s: %s", domain.ErrGatewayRequestFailed, out.StatusCode, out.StatusMessage)
	}
	return adapter.InvoiceResult{Reference: out.Reference, PaymentURL: out.PaymentURL}, nil
}

func (g *DuitkuGateway) VerifyCallback(p model.CallbackPayload) bool {
	if !strings.EqualFold(strings.TrimSpace(p.MerchantCode), g.merchantCode) {
		return false
	}
	return VerifyDuitkuCallbackSignature(g.apiKey, p)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
