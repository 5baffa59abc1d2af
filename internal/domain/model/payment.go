package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"whatsapp-reseller/internal/domain"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending" // invoice created; awaiting gateway result
	PaymentStatusPaid    PaymentStatus = "paid"    // settled by gateway
	PaymentStatusExpired PaymentStatus = "expired" // gateway or sweep expired the invoice
	PaymentStatusFailed  PaymentStatus = "failed"  // any other gateway result
)

// IsTerminal reports whether no further transition is accepted.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusExpired, PaymentStatusFailed:
		return true
	}
	return false
}

// CanTransition reports whether from -> to is an edge of the payment state
// machine: pending -> {paid, expired, failed}.
func CanTransition(from, to PaymentStatus) bool {
	return from == PaymentStatusPending && to.IsTerminal()
}

// StatusFromResultCode maps a gateway result code to the internal status.
func StatusFromResultCode(code string) PaymentStatus {
	switch strings.TrimSpace(code) {
	case "00":
		return PaymentStatusPaid
	case "01":
		return PaymentStatusPending
	case "02":
		return PaymentStatusExpired
	default:
		return PaymentStatusFailed
	}
}

// Payment records the gateway side of a transaction. After creation it is
// owned by the callback processor.
type Payment struct {
	ID                string
	TransactionID     string
	Provider          string // e.g. "duitku"
	MerchantOrderID   string
	ExternalReference string // gateway "reference"
	PaymentURL        string
	Amount            int64
	Status            PaymentStatus
	PaymentDate       *time.Time
	CallbackHistory   []CallbackEntry // append-only
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CallbackEntry is one audit record appended on every accepted transition.
type CallbackEntry struct {
	ReceivedAt time.Time         `json:"received_at"`
	Source     string            `json:"source"` // gateway | expiry-sweep
	From       PaymentStatus     `json:"from"`
	To         PaymentStatus     `json:"to"`
	Payload    map[string]string `json:"payload,omitempty"`
}

// CallbackPayload carries the declared webhook fields plus the raw form/JSON
// values for the audit trail.
type CallbackPayload struct {
	MerchantCode    string
	Amount          string
	MerchantOrderID string
	PaymentCode     string
	ResultCode      string
	Reference       string
	Signature       string
	Raw             map[string]string
}

// CallbackPayloadFromValues builds a payload from flat key/value pairs as
// delivered by the gateway.
func CallbackPayloadFromValues(v map[string]string) CallbackPayload {
	return CallbackPayload{
		MerchantCode:    v["merchantCode"],
		Amount:          v["amount"],
		MerchantOrderID: v["merchantOrderId"],
		PaymentCode:     v["paymentCode"],
		ResultCode:      v["resultCode"],
		Reference:       v["reference"],
		Signature:       v["signature"],
		Raw:             v,
	}
}

// OrderRef is the parsed form of a merchant order id:
// <PREFIX>-<transactionId>-<unix timestamp>.
type OrderRef struct {
	Prefix        string
	TransactionID string
	Timestamp     int64
}

func FormatMerchantOrderID(prefix, transactionID string, at time.Time) string {
	return fmt.Sprintf("%s-%s-%d", prefix, transactionID, at.Unix())
}

// ParseMerchantOrderID splits a merchant order id. The transaction id may
// itself contain dashes, so only the first and last segments are delimiters.
// An empty wantPrefix accepts any prefix.
func ParseMerchantOrderID(s, wantPrefix string) (OrderRef, error) {
	first := strings.Index(s, "-")
	last := strings.LastIndex(s, "-")
	if first <= 0 || last <= first+1 || last == len(s)-1 {
		return OrderRef{}, domain.ErrMalformedOrderID
	}
	ref := OrderRef{
		Prefix:        s[:first],
		TransactionID: s[first+1 : last],
	}
	ts, err := strconv.ParseInt(s[last+1:], 10, 64)
	if err != nil || ts <= 0 {
		return OrderRef{}, domain.ErrMalformedOrderID
	}
	ref.Timestamp = ts
	if wantPrefix != "" && !strings.EqualFold(ref.Prefix, wantPrefix) {
		return OrderRef{}, domain.ErrMalformedOrderID
	}
	return ref, nil
}
