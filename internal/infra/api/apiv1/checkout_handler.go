package apiv1

import (
	"encoding/json"
	"net/http"

	"whatsapp-reseller/internal/infra/logging"
	"whatsapp-reseller/internal/usecase"
)

type checkoutRequest struct {
	Items       []usecase.CartItem `json:"items"`
	VoucherCode string             `json:"voucherCode"`
}

type checkoutResponse struct {
	TransactionID   string `json:"transactionId"`
	PaymentID       string `json:"paymentId"`
	MerchantOrderID string `json:"merchantOrderId"`
	PaymentURL      string `json:"paymentUrl"`
	OriginalAmount  int64  `json:"originalAmount"`
	DiscountAmount  int64  `json:"discountAmount"`
	ServiceFee      int64  `json:"serviceFee"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "invalid request body"})
		return
	}

	res, err := s.checkout.Checkout(r.Context(), usecase.CheckoutInput{
		CustomerID:  customerFrom(r.Context()),
		Items:       req.Items,
		VoucherCode: req.VoucherCode,
	})
	if err != nil {
		code := statusFor(err)
		if code >= http.StatusInternalServerError {
			logging.With(r.Context(), s.log).Error().Err(err).Msg("checkout failed")
		}
		writeJSON(w, code, errorBody{Message: publicMessage(err)})
		return
	}

	t := res.Transaction
	writeJSON(w, http.StatusCreated, checkoutResponse{
		TransactionID:   t.ID,
		PaymentID:       res.Payment.ID,
		MerchantOrderID: res.Payment.MerchantOrderID,
		PaymentURL:      res.PaymentURL,
		OriginalAmount:  t.OriginalAmount,
		DiscountAmount:  t.DiscountAmount,
		ServiceFee:      t.ServiceFee,
		Amount:          t.ChargeAmount(),
		Currency:        t.Currency,
	})
}

func (s *Server) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	customerID := customerFrom(r.Context())
	groups, err := s.reports.History(r.Context(), customerID, s.now())
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("subscription history failed")
		writeJSON(w, statusFor(err), errorBody{Message: publicMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"customerId": customerID,
		"groups":     groups,
	})
}
