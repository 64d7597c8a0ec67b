package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

type ErrorCode string

const (
	ValidationFailed     ErrorCode = "validation_error"
	LimitExceeded        ErrorCode = "limit_exceeded"
	InsufficientFunds    ErrorCode = "insufficient_funds"
	AccountNotFound      ErrorCode = "account_not_found"
	SameAccountTransfer  ErrorCode = "same_account_transfer"
	TransferCompensated  ErrorCode = "transfer_compensated"
	TransferNotFound     ErrorCode = "transfer_not_found"
	DuplicateTransaction ErrorCode = "duplicate_transaction"
	InvalidInput         ErrorCode = "invalid_input"
	InternalError        ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any AppError carrying the same code, so predefined errors work
// as sentinels with errors.Is even when a fresh AppError was built.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func (e *AppError) Unwrap() error {
	return e.cause
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause records the error that triggered e. The cause stays reachable
// through errors.Is and errors.As.
func (e *AppError) WithCause(cause error) *AppError {
	e.cause = cause
	if e.Details == "" && cause != nil {
		e.Details = cause.Error()
	}
	return e
}

func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ValidationFailed, InvalidInput, SameAccountTransfer:
		return http.StatusBadRequest
	case AccountNotFound, TransferNotFound:
		return http.StatusNotFound
	case LimitExceeded, InsufficientFunds, TransferCompensated:
		return http.StatusUnprocessableEntity
	case DuplicateTransaction:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// InsufficientFundsError reports a debit larger than the available balance.
type InsufficientFundsError struct {
	Balance   decimal.Decimal
	Requested decimal.Decimal
	Shortfall decimal.Decimal
}

func NewInsufficientFunds(balance, requested decimal.Decimal) *InsufficientFundsError {
	return &InsufficientFundsError{
		Balance:   balance,
		Requested: requested,
		Shortfall: requested.Sub(balance),
	}
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: balance %s, requested %s, shortfall %s",
		InsufficientFunds,
		e.Balance.StringFixed(2),
		e.Requested.StringFixed(2),
		e.Shortfall.StringFixed(2))
}

func (e *InsufficientFundsError) Is(target error) bool {
	var t *AppError
	if stderrors.As(target, &t) {
		return t.Code == InsufficientFunds
	}
	_, ok := target.(*InsufficientFundsError)
	return ok
}

// AppError converts e into the generic envelope used by the HTTP layer.
func (e *InsufficientFundsError) AppError() *AppError {
	return &AppError{
		Code:    InsufficientFunds,
		Message: "insufficient funds",
		Details: fmt.Sprintf("balance %s, requested %s, shortfall %s",
			e.Balance.StringFixed(2), e.Requested.StringFixed(2), e.Shortfall.StringFixed(2)),
		cause: e,
	}
}

// AsAppError normalizes err into an AppError. Unknown errors become
// internal errors carrying the original message as details.
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}

	var funds *InsufficientFundsError
	var appErr *AppError
	switch {
	case stderrors.As(err, &appErr):
		return appErr
	case stderrors.As(err, &funds):
		return funds.AppError()
	default:
		return NewAppError(InternalError, "an unexpected error occurred").WithCause(err)
	}
}

// Is and As re-export the standard library helpers so callers importing this
// package under the name errors keep access to them.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Predefined errors for common cases
var (
	ErrAccountNotFound      = NewAppError(AccountNotFound, "account not found")
	ErrTransferNotFound     = NewAppError(TransferNotFound, "transfer not found")
	ErrSameAccountTransfer  = NewAppError(SameAccountTransfer, "cannot transfer to the same account")
	ErrInvalidAccountID     = NewAppError(InvalidInput, "invalid account ID")
	ErrInsufficientFunds    = NewAppError(InsufficientFunds, "insufficient funds")
	ErrLimitExceeded        = NewAppError(LimitExceeded, "amount exceeds limit")
	ErrValidation           = NewAppError(ValidationFailed, "validation failed")
	ErrTransferCompensated  = NewAppError(TransferCompensated, "transfer failed and was refunded")
	ErrDuplicateTransaction = NewAppError(DuplicateTransaction, "transaction already processed")
	ErrInternal             = NewAppError(InternalError, "internal error")
)
