//go:build !integration

package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"whatsapp-reseller/internal/config"
	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/adapter"
)

func TestCallbackSignature(t *testing.T) {
	// md5("D0001" + "150000" + "WAR-tx1-1700000000" + "secret")
	sig := CallbackSignature("D0001", "150000", "WAR-tx1-1700000000", "secret")
	if len(sig) != 32 {
		t.Fatalf("expected a 32 char hex digest, got %q", sig)
	}

	p := model.CallbackPayload{MerchantCode: "D0001", Amount: "150000", MerchantOrderID: "WAR-tx1-1700000000", Signature: sig}
	t.Run("should accept a valid signature in any case", func(t *testing.T) {
		upper := p
		upper.Signature = strings.ToUpper(sig)
		if !VerifyDuitkuCallbackSignature("secret", upper) {
			t.Error("expected signature to verify")
		}
	})

	t.Run("should reject a tampered amount", func(t *testing.T) {
		tampered := p
		tampered.Amount = "1"
		if VerifyDuitkuCallbackSignature("secret", tampered) {
			t.Error("expected tampered payload to fail")
		}
	})

	t.Run("should reject a missing signature", func(t *testing.T) {
		empty := p
		empty.Signature = ""
		if VerifyDuitkuCallbackSignature("secret", empty) {
			t.Error("expected empty signature to fail")
		}
	})

	t.Run("gateway checks the merchant code", func(t *testing.T) {
		g := NewDuitkuGateway(config.GatewayConfig{MerchantCode: "D0001", APIKey: "secret"})
		if !g.VerifyCallback(p) {
			t.Error("expected gateway to accept its own merchant")
		}
		other := p
		other.MerchantCode = "D9999"
		other.Signature = CallbackSignature("D9999", p.Amount, p.MerchantOrderID, "secret")
		if g.VerifyCallback(other) {
			t.Error("expected foreign merchant code to be rejected")
		}
	})
}

func TestDuitkuGateway_RequestPayment(t *testing.T) {
	t.Run("should send a signed inquiry and return the reference", func(t *testing.T) {
		var got duitkuInquiryRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v2/inquiry" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			_ = json.NewDecoder(r.Body).Decode(&got)
			_ = json.NewEncoder(w).Encode(DuitkuInquiryResponse{Reference: "DS1234", PaymentURL: "https://pay/DS1234", StatusCode: "00", StatusMessage: "SUCCESS"})
		}))
		defer srv.Close()

		g := NewDuitkuGateway(config.GatewayConfig{BaseURL: srv.URL, MerchantCode: "D0001", APIKey: "secret"})
		res, err := g.RequestPayment(context.Background(), adapter.InvoiceRequest{MerchantOrderID: "WAR-tx1-1700000000", Amount: 102500, Email: "a@b.c"})
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if res.Reference != "DS1234" || res.PaymentURL != "https://pay/DS1234" {
			t.Errorf("unexpected result: %+v", res)
		}
		if got.Signature != InquirySignature("D0001", "WAR-tx1-1700000000", "102500", "secret") {
			t.Errorf("unexpected inquiry signature %q", got.Signature)
		}
		if got.PaymentAmount != 102500 {
			t.Errorf("expected amount 102500, got %d", got.PaymentAmount)
		}
	})

	t.Run("should surface a gateway rejection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"Message":"Invalid signature"}`))
		}))
		defer srv.Close()

		g := NewDuitkuGateway(config.GatewayConfig{BaseURL: srv.URL, MerchantCode: "D0001", APIKey: "secret"})
		_, err := g.RequestPayment(context.Background(), adapter.InvoiceRequest{MerchantOrderID: "x", Amount: 1})
		if !errors.Is(err, domain.ErrGatewayRequestFailed) {
			t.Fatalf("expected ErrGatewayRequestFailed, got %v", err)
		}
	})
}

func TestNewGateway(t *testing.T) {
	if g, err := NewGateway(config.GatewayConfig{Provider: "noop"}); err != nil || g.Name() != "noop" {
		t.Errorf("expected noop gateway, got %v %v", g, err)
	}
	if _, err := NewGateway(config.GatewayConfig{Provider: "paypal"}); err == nil {
		t.Error("expected an error for an unknown provider")
	}
}
