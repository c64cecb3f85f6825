package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business rule violation.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeInvalidAmount          = "INVALID_AMOUNT"
	ErrCodeInvalidCurrency        = "INVALID_CURRENCY"
	ErrCodeInvalidRefundAmount    = "INVALID_REFUND_AMOUNT"
	ErrCodeInvalidRefundReason    = "INVALID_REFUND_REASON"
	ErrCodeInsufficientFunds      = "INSUFFICIENT_FUNDS"
	ErrCodeInvalidTransition      = "INVALID_STATUS_TRANSITION"
	ErrCodeInvalidStatus          = "INVALID_STATUS"
	ErrCodeInvalidTransactionType = "INVALID_TRANSACTION_TYPE"
	ErrCodeTransactionNotFound    = "TRANSACTION_NOT_FOUND"
	ErrCodeWalletNotFound         = "WALLET_NOT_FOUND"
	ErrCodeInvalidIdempotencyKey  = "INVALID_IDEMPOTENCY_KEY"
	ErrCodeDuplicateKey           = "DUPLICATE_IDEMPOTENCY_KEY"
	ErrCodeMissingRequiredField   = "MISSING_REQUIRED_FIELD"
)

func NewInvalidAmountError(amount int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: fmt.Sprintf("invalid amount %d: must be between 1 and %d minor units", amount, MaxAmountMinorUnits),
	}
}

func NewInvalidCurrencyError(code string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidCurrency,
		Message: fmt.Sprintf("unsupported currency %q", code),
	}
}

func NewInvalidRefundAmountError(requested, original int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidRefundAmount,
		Message: fmt.Sprintf("refund amount %d exceeds original transaction amount %d", requested, original),
	}
}

func NewInvalidRefundReasonError(reason string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidRefundReason,
		Message: fmt.Sprintf("invalid refund reason %q", reason),
	}
}

func NewInsufficientFundsError(userID string, available, requested int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeInsufficientFunds,
		Message: fmt.Sprintf("insufficient funds for user %s: available %d, requested %d", userID, available, requested),
	}
}

func NewInvalidTransitionError(from, to TransactionStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

func NewInvalidStatusError(status string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidStatus,
		Message: fmt.Sprintf("unknown transaction status %q", status),
	}
}

func NewInvalidTransactionTypeError(txType string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransactionType,
		Message: fmt.Sprintf("invalid wallet transaction type %q", txType),
	}
}

func NewTransactionNotFoundError(id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeTransactionNotFound,
		Message: fmt.Sprintf("transaction %s not found", id),
	}
}

func NewWalletNotFoundError(userID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeWalletNotFound,
		Message: fmt.Sprintf("wallet for user %s not found", userID),
	}
}

func NewInvalidIdempotencyKeyError(reason string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidIdempotencyKey,
		Message: fmt.Sprintf("invalid idempotency key: %s", reason),
	}
}

func NewDuplicateKeyError(key string) *DomainError {
	return &DomainError{
		Code:    ErrCodeDuplicateKey,
		Message: fmt.Sprintf("idempotency key %s already reserved", key),
	}
}

func NewMissingRequiredFieldError(field string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required", field),
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
