package apiv1

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/infra/logging"
	"whatsapp-reseller/internal/infra/metrics"
)

const maxCallbackBody = 64 << 10

// handleCallback answers 200 once the status write is committed, including
// for duplicates and settled payments, so the gateway stops retrying. Storage
// failures answer 500 and the gateway retries.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	code := http.StatusOK
	defer func() {
		metrics.CallbackDuration.WithLabelValues(strconv.Itoa(code)).Observe(time.Since(start).Seconds())
	}()
	log := logging.With(r.Context(), s.log)

	values, err := callbackValues(w, r)
	if err != nil {
		code = http.StatusBadRequest
		metrics.IncCallback("bad_request")
		writeJSON(w, code, errorBody{Success: false, Message: err.Error()})
		return
	}
	p := model.CallbackPayloadFromValues(values)
	if p.MerchantOrderID == "" || p.ResultCode == "" || p.Signature == "" {
		code = http.StatusBadRequest
		metrics.IncCallback("bad_request")
		writeJSON(w, code, errorBody{Success: false, Message: "missing required fields"})
		return
	}

	res, err := s.callbacks.HandleCallback(r.Context(), p)
	if err != nil {
		code = statusFor(err)
		if code != http.StatusBadRequest && code != http.StatusNotFound {
			code = http.StatusInternalServerError
		}
		metrics.IncCallback(callbackOutcome(err))
		ev := log.Warn()
		if code == http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Err(err).
			Str("merchant_order_id", p.MerchantOrderID).
			Str("signature", logging.Redact(p.Signature, false)).
			Msg("callback rejected")
		writeJSON(w, code, errorBody{Success: false, Message: publicMessage(err)})
		return
	}

	metrics.IncCallback(res.Outcome)
	log.Info().
		Str("payment_id", res.PaymentID).
		Str("outcome", res.Outcome).
		Msg("callback processed")
	writeJSON(w, code, errorBody{Success: true, Message: res.Outcome})
}

func callbackOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidSignature):
		return "bad_signature"
	case errors.Is(err, domain.ErrMalformedOrderID):
		return "bad_order_id"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// callbackValues flattens a form or JSON body into string values. Unknown
// fields are kept for the audit trail.
func callbackValues(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCallbackBody)
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	out := map[string]string{}

	if ct == "application/json" {
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		var raw map[string]any
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.New("invalid json body")
		}
		for k, v := range raw {
			switch t := v.(type) {
			case nil:
			case string:
				out[k] = t
			default:
				out[k] = fmt.Sprint(t)
			}
		}
		return out, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, errors.New("invalid form body")
	}
	for k, vs := range r.Form {
		if len(vs) > 0 {
			out[k] = strings.TrimSpace(vs[0])
		}
	}
	return out, nil
}
