package domain

import (
	"errors"
	"fmt"
)

// Error categories. Handlers map responses with errors.Is against these.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("entity not found")
	ErrBusinessRule = errors.New("business rule violated")
	ErrDownstream   = errors.New("downstream call failed")
)

var (
	// Common domain errors
	ErrInvalidArgument    = fmt.Errorf("%w: invalid argument", ErrValidation)
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrRateLimited        = errors.New("too many requests")
	ErrLockNotAcquired    = errors.New("lock is held by another owner")

	// Callback processing
	ErrInvalidSignature       = fmt.Errorf("%w: invalid callback signature", ErrValidation)
	ErrMalformedOrderID       = fmt.Errorf("%w: malformed merchant order id", ErrValidation)
	ErrPaymentNotFound        = fmt.Errorf("%w: payment", ErrNotFound)
	ErrTransactionNotFound    = fmt.Errorf("%w: transaction", ErrNotFound)
	ErrIllegalTransition      = fmt.Errorf("%w: illegal payment status transition", ErrBusinessRule)
	ErrActivationFailed       = fmt.Errorf("%w: activation", ErrDownstream)
	ErrNotificationFailed     = fmt.Errorf("%w: notification", ErrDownstream)
	ErrGatewayRequestFailed   = fmt.Errorf("%w: payment gateway request", ErrDownstream)
	ErrOutboxEventUnavailable = errors.New("outbox event already claimed")

	// Vouchers
	ErrVoucherNotFound      = fmt.Errorf("%w: voucher", ErrNotFound)
	ErrVoucherInactive      = fmt.Errorf("%w: voucher is not active", ErrBusinessRule)
	ErrVoucherNotYetValid   = fmt.Errorf("%w: voucher is not valid yet", ErrBusinessRule)
	ErrVoucherExpired       = fmt.Errorf("%w: voucher has expired", ErrBusinessRule)
	ErrVoucherUsageLimit    = fmt.Errorf("%w: voucher usage limit reached", ErrBusinessRule)
	ErrVoucherAlreadyUsed   = fmt.Errorf("%w: voucher already used by this customer", ErrBusinessRule)
	ErrVoucherMinAmount     = fmt.Errorf("%w: minimum purchase amount not met", ErrBusinessRule)
	ErrVoucherNotApplicable = fmt.Errorf("%w: voucher does not apply to any cart item", ErrBusinessRule)

	// Catalog / checkout
	ErrPackageNotFound = fmt.Errorf("%w: package", ErrNotFound)
	ErrEmptyCart       = fmt.Errorf("%w: cart is empty", ErrValidation)
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be positive", ErrValidation)
	ErrInvalidDuration = fmt.Errorf("%w: unsupported duration", ErrValidation)
)
