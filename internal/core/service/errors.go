package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/flowpay/paycore/internal/core/domain"
)

// ServiceError is the typed error surfaced to callers of the payment core.
type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodePaymentIntentFailed     = "PAYMENT_INTENT_FAILED"
	ErrCodeRefundFailed            = "REFUND_FAILED"
	ErrCodeWalletTransactionFailed = "WALLET_TRANSACTION_FAILED"
	ErrCodeStatusUpdateFailed      = "STATUS_UPDATE_FAILED"
	ErrCodeRequestInProgress       = "REQUEST_IN_PROGRESS"
)

func NewPaymentIntentFailedError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodePaymentIntentFailed,
		Message:    "payment intent creation failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewRefundFailedError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeRefundFailed,
		Message:    "refund processing failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewWalletTransactionFailedError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeWalletTransactionFailed,
		Message:    "wallet transaction failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewStatusUpdateFailedError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeStatusUpdateFailed,
		Message:    "transaction status update failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewRequestInProgressError(key string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeRequestInProgress,
		Message:    fmt.Sprintf("request with idempotency key %s is still being processed, retry shortly", key),
		HTTPStatus: http.StatusConflict,
	}
}

// IsServiceError unwraps err into a ServiceError if it is one.
func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}

// ToHTTPStatus maps any core error to an HTTP-like status code.
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.HTTPStatus
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case domain.ErrCodeInvalidAmount,
			domain.ErrCodeInvalidCurrency,
			domain.ErrCodeInvalidRefundReason,
			domain.ErrCodeInvalidTransactionType,
			domain.ErrCodeInvalidStatus,
			domain.ErrCodeInvalidIdempotencyKey,
			domain.ErrCodeMissingRequiredField:
			return http.StatusBadRequest
		case domain.ErrCodeInvalidRefundAmount:
			return http.StatusUnprocessableEntity
		case domain.ErrCodeInsufficientFunds,
			domain.ErrCodeInvalidTransition,
			domain.ErrCodeDuplicateKey:
			return http.StatusConflict
		case domain.ErrCodeTransactionNotFound,
			domain.ErrCodeWalletNotFound:
			return http.StatusNotFound
		}
	}
	return http.StatusInternalServerError
}

// ToErrorCode extracts the stable error code for API responses.
func ToErrorCode(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Code
	}
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "INTERNAL_ERROR"
}
