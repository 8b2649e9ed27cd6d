// Package errors provides custom error types for the ledger API.
// All service-layer errors should use AppError so the request layer can map
// them to responses without leaking internal details to clients.
package errors

import (
	stderrors "errors"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so wrapped
// copies still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// IsNotFound reports whether err is any of the not-found errors. Absence and
// foreign ownership are reported through the same errors.
func IsNotFound(err error) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	return appErr.StatusCode == http.StatusNotFound
}

// Authentication & authorization errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrForbidden    = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Storage errors.
var (
	ErrConflict       = &AppError{Code: "CONFLICT", Message: "The resource was modified concurrently, retry the request", StatusCode: http.StatusConflict}
	ErrStorageFailure = &AppError{Code: "STORAGE_FAILURE", Message: "The ledger store is unavailable", StatusCode: http.StatusServiceUnavailable}
)

// Balance errors.
var (
	ErrBalanceNotFound = &AppError{Code: "BALANCE_NOT_FOUND", Message: "Balance not found", StatusCode: http.StatusNotFound}
)

// Category errors.
var (
	ErrCategoryNotFound    = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryInUse       = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing transactions", StatusCode: http.StatusConflict}
	ErrCategoryHasChildren = &AppError{Code: "CATEGORY_HAS_CHILDREN", Message: "Category has child categories", StatusCode: http.StatusConflict}
	ErrSelfParentCategory  = &AppError{Code: "SELF_PARENT_CATEGORY", Message: "A category cannot be its own parent", StatusCode: http.StatusBadRequest}
	ErrCategoryCycle       = &AppError{Code: "CATEGORY_CYCLE", Message: "A category cannot be its own ancestor", StatusCode: http.StatusBadRequest}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInsufficientFunds   = &AppError{Code: "INSUFFICIENT_FUNDS", Message: "Insufficient balance", StatusCode: http.StatusBadRequest}
	ErrAlreadyReverted     = &AppError{Code: "ALREADY_REVERTED", Message: "Transaction has already been reverted", StatusCode: http.StatusConflict}
	ErrInvalidRevertTarget = &AppError{Code: "INVALID_REVERT_TARGET", Message: "A revert transaction cannot be reverted", StatusCode: http.StatusBadRequest}
	ErrInvalidStatus       = &AppError{Code: "INVALID_STATUS", Message: "Unsupported transaction status", StatusCode: http.StatusBadRequest}
)
