package adapter

import (
	"context"
	"time"
)

// PaymentNotice is the content of a payment-success notification.
type PaymentNotice struct {
	PaymentID     string
	TransactionID string
	CustomerID    string
	CustomerName  string
	Email         string
	Phone         string
	Amount        int64
	Currency      string
	Reference     string
	PaidAt        time.Time
}

// Notifier delivers best-effort payment notifications.
type Notifier interface {
	Name() string
	NotifyPaymentSuccess(ctx context.Context, n PaymentNotice) error
}
