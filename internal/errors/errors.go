// Package errors provides custom error types for the Goldsphere API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
//
// Errors fall into three classes: state errors (invalid order transitions),
// business-rule errors (insufficient quantity, missing position) and
// persistence errors. Only persistence errors are Retryable.
package errors

import (
	"errors"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Retryable  bool   `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches AppErrors by code so wrapped copies compare equal to their sentinel.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Retryable:  sentinel.Retryable,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Retryable:  sentinel.Retryable,
		Internal:   sentinel.Internal,
	}
}

// IsRetryable reports whether err is a transient persistence fault the caller may retry.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken       = &AppError{Code: "INVALID_TOKEN", Message: "Invalid or expired token", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account temporarily locked after repeated failed logins", StatusCode: http.StatusTooManyRequests}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Persistence errors. These are infrastructure faults, never invariant violations.
var (
	ErrLockTimeout = &AppError{Code: "LOCK_TIMEOUT", Message: "The resource is busy, retry the request", StatusCode: http.StatusServiceUnavailable, Retryable: true}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Catalog and custody errors.
var (
	ErrProductNotFound        = &AppError{Code: "PRODUCT_NOT_FOUND", Message: "Product not found", StatusCode: http.StatusNotFound}
	ErrProductInactive        = &AppError{Code: "PRODUCT_INACTIVE", Message: "Product is not available for trading", StatusCode: http.StatusBadRequest}
	ErrCustodianNotFound      = &AppError{Code: "CUSTODIAN_NOT_FOUND", Message: "Custodian not found", StatusCode: http.StatusNotFound}
	ErrCustodyServiceNotFound = &AppError{Code: "CUSTODY_SERVICE_NOT_FOUND", Message: "Custody service not found", StatusCode: http.StatusNotFound}
	ErrCustodianInUse         = &AppError{Code: "CUSTODIAN_IN_USE", Message: "Custodian still offers custody services", StatusCode: http.StatusConflict}
)

// Portfolio and position errors.
var (
	ErrPortfolioNotFound     = &AppError{Code: "PORTFOLIO_NOT_FOUND", Message: "Portfolio not found", StatusCode: http.StatusNotFound}
	ErrPortfolioHasPositions = &AppError{Code: "PORTFOLIO_HAS_POSITIONS", Message: "Portfolio still holds active positions", StatusCode: http.StatusConflict}
	ErrPositionNotFound      = &AppError{Code: "POSITION_NOT_FOUND", Message: "No active position to sell from", StatusCode: http.StatusUnprocessableEntity}
	ErrInsufficientQuantity  = &AppError{Code: "INSUFFICIENT_QUANTITY", Message: "Insufficient quantity for this sale", StatusCode: http.StatusUnprocessableEntity}
)

// Order state errors.
var (
	ErrOrderNotFound       = &AppError{Code: "ORDER_NOT_FOUND", Message: "Order not found", StatusCode: http.StatusNotFound}
	ErrAlreadyTerminal     = &AppError{Code: "ORDER_ALREADY_TERMINAL", Message: "Order is already completed", StatusCode: http.StatusConflict}
	ErrAlreadyCancelled    = &AppError{Code: "ORDER_ALREADY_CANCELLED", Message: "Order is already cancelled", StatusCode: http.StatusConflict}
	ErrUnknownStatus       = &AppError{Code: "ORDER_UNKNOWN_STATUS", Message: "Order has an unknown status", StatusCode: http.StatusUnprocessableEntity}
	ErrInvalidTransition   = &AppError{Code: "ORDER_INVALID_TRANSITION", Message: "Order cannot make this status transition", StatusCode: http.StatusConflict}
	ErrOrderNotEditable    = &AppError{Code: "ORDER_NOT_EDITABLE", Message: "Order items can only change while the order is pending", StatusCode: http.StatusConflict}
	ErrAlreadyFulfilled    = &AppError{Code: "ORDER_ALREADY_FULFILLED", Message: "Order has already been fulfilled", StatusCode: http.StatusConflict}
	ErrInvalidOrderType    = &AppError{Code: "INVALID_ORDER_TYPE", Message: "Unsupported order type", StatusCode: http.StatusBadRequest}
	ErrCurrencyMismatch    = &AppError{Code: "CURRENCY_MISMATCH", Message: "Product currency does not match the order currency", StatusCode: http.StatusBadRequest}
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
)
