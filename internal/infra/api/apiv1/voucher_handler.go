package apiv1

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/infra/logging"
	"whatsapp-reseller/internal/infra/redis"
	"whatsapp-reseller/internal/usecase"
)

type voucherCheckRequest struct {
	Code  string             `json:"code"`
	Items []usecase.CartItem `json:"items"`
}

type voucherView struct {
	Code        string         `json:"code"`
	Kind        model.CalcKind `json:"kind"`
	Scope       string         `json:"scope"`
	Value       float64        `json:"value"`
	MaxDiscount *int64         `json:"maxDiscount,omitempty"`
}

type voucherCheckResponse struct {
	IsValid bool              `json:"isValid"`
	Data    *voucherCheckData `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
}

type voucherCheckData struct {
	Voucher     voucherView           `json:"voucher"`
	Calculation *model.DiscountResult `json:"calculation"`
}

func (s *Server) handlePublicVoucherCheck(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && s.limit > 0 {
		ok, err := s.limiter.Allow(r.Context(), redis.VoucherCheckKey(clientIP(r)), s.limit, s.window)
		if err != nil {
			logging.With(r.Context(), s.log).Warn().Err(err).Msg("rate limiter unavailable")
		} else if !ok {
			writeJSON(w, http.StatusTooManyRequests, voucherCheckResponse{Error: domain.ErrRateLimited.Error()})
			return
		}
	}
	s.voucherCheck(w, r, "")
}

func (s *Server) handleCustomerVoucherCheck(w http.ResponseWriter, r *http.Request) {
	s.voucherCheck(w, r, customerFrom(r.Context()))
}

// voucherCheck answers 200 for rejected vouchers; only malformed requests and
// server failures use error statuses.
func (s *Server) voucherCheck(w http.ResponseWriter, r *http.Request, customerID string) {
	var req voucherCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, voucherCheckResponse{Error: "invalid request body"})
		return
	}

	q, err := s.vouchers.Quote(r.Context(), req.Code, req.Items, customerID)
	if err != nil {
		code := statusFor(err)
		if errors.Is(err, domain.ErrBusinessRule) || errors.Is(err, domain.ErrNotFound) {
			code = http.StatusOK
		}
		if code >= http.StatusInternalServerError {
			logging.With(r.Context(), s.log).Error().Err(err).Msg("voucher check failed")
		}
		writeJSON(w, code, voucherCheckResponse{Error: publicMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, voucherCheckResponse{
		IsValid: true,
		Data: &voucherCheckData{
			Voucher: voucherView{
				Code:        q.Voucher.Code,
				Kind:        q.Voucher.Kind,
				Scope:       q.Voucher.Scope,
				Value:       q.Voucher.Value,
				MaxDiscount: q.Voucher.MaxDiscount,
			},
			Calculation: q.Result,
		},
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
