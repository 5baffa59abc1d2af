package model

import (
	"encoding/json"
	"time"
)

type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "pending"
	OutboxStatusProcessing OutboxStatus = "processing"
	OutboxStatusDelivered  OutboxStatus = "delivered"
	OutboxStatusFailed     OutboxStatus = "failed"
)

const OutboxKindPaymentPaid = "payment.paid"

// OutboxEvent is persisted in the same database transaction as the state
// change that produced it and delivered asynchronously afterwards.
type OutboxEvent struct {
	ID          string // ULID
	Kind        string
	AggregateID string
	Payload     json.RawMessage
	Status      OutboxStatus
	Attempts    int
	LastError   string
	AvailableAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PaymentPaidEvent is the payload of a payment.paid outbox event.
type PaymentPaidEvent struct {
	PaymentID     string    `json:"payment_id"`
	TransactionID string    `json:"transaction_id"`
	Provider      string    `json:"provider"`
	Reference     string    `json:"reference"`
	PaidAt        time.Time `json:"paid_at"`
}
