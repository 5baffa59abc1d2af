package model

import "time"

type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusPaid    TransactionStatus = "paid"
	TransactionStatusExpired TransactionStatus = "expired"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// TransactionStatusFor mirrors a terminal payment status onto the transaction.
func TransactionStatusFor(s PaymentStatus) TransactionStatus {
	switch s {
	case PaymentStatusPaid:
		return TransactionStatusPaid
	case PaymentStatusExpired:
		return TransactionStatusExpired
	case PaymentStatusFailed:
		return TransactionStatusFailed
	}
	return TransactionStatusPending
}

// Transaction is the money side of a checkout. It is created once and then
// changed only by the reconciliation workflow.
type Transaction struct {
	ID             string
	CustomerID     string
	OriginalAmount int64
	DiscountAmount int64
	ServiceFee     int64
	FinalAmount    int64 // OriginalAmount - DiscountAmount
	Currency       string
	VoucherID      *string
	Status         TransactionStatus
	Items          []TransactionItem
	CreatedAt      time.Time
	PaidAt         *time.Time
}

// ChargeAmount is what the gateway collects: the discounted cart plus the fee.
func (t *Transaction) ChargeAmount() int64 { return t.FinalAmount + t.ServiceFee }

// TransactionItem is a persisted cart line with its discount share.
type TransactionItem struct {
	ID            string
	TransactionID string
	ScopeTag      string
	RefID         string
	Duration      Duration
	UnitPrice     int64
	Quantity      int64
	DiscountShare int64
}

func (i TransactionItem) LineTotal() int64 { return i.UnitPrice * i.Quantity }

// AmountForService is what the customer actually paid for this line.
func (i TransactionItem) AmountForService() int64 { return i.LineTotal() - i.DiscountShare }
