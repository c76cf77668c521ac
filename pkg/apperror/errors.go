package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error independently of its message
type Kind string

// Ledger error kinds
const (
	KindInvalidAmount          Kind = "invalid_amount"
	KindOrderNotFound          Kind = "order_not_found"
	KindOrderInTerminalState   Kind = "order_in_terminal_state"
	KindConcurrentModification Kind = "concurrent_modification"
	KindPersistenceFailure     Kind = "persistence_failure"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"kind,omitempty"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	cause   error
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *AppError) Unwrap() error {
	return e.cause
}

// Is reports whether target carries the same kind. Errors without a kind
// only match themselves.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if e.Kind == "" || t.Kind == "" {
		return e == t
	}
	return e.Kind == t.Kind
}

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict           = &AppError{Code: http.StatusConflict, Message: "Resource already exists"}
	ErrUnprocessable      = &AppError{Code: http.StatusUnprocessableEntity, Message: "Unprocessable entity"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Message: "Invalid username or password"}
	ErrTokenExpired       = &AppError{Code: http.StatusUnauthorized, Message: "Token has expired"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Message: "Invalid token"}
)

// Ledger errors, matched by kind with errors.Is
var (
	ErrInvalidAmount          = &AppError{Code: http.StatusBadRequest, Kind: KindInvalidAmount, Message: "Invalid amount"}
	ErrOrderNotFound          = &AppError{Code: http.StatusNotFound, Kind: KindOrderNotFound, Message: "Order not found"}
	ErrOrderInTerminalState   = &AppError{Code: http.StatusConflict, Kind: KindOrderInTerminalState, Message: "Order is in a terminal state"}
	ErrConcurrentModification = &AppError{Code: http.StatusConflict, Kind: KindConcurrentModification, Message: "Order is being modified concurrently, retry"}
	ErrPersistenceFailure     = &AppError{Code: http.StatusServiceUnavailable, Kind: KindPersistenceFailure, Message: "Storage unavailable"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// NewInvalidAmountError creates an invalid_amount error
func NewInvalidAmountError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindInvalidAmount,
		Message: message,
		Errors:  []FieldError{{Field: "amount", Message: message}},
	}
}

// NewOrderNotFoundError creates an order_not_found error for the given order reference
func NewOrderNotFoundError(ref string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindOrderNotFound,
		Message: "Order " + ref + " not found",
	}
}

// NewOrderInTerminalStateError creates an order_in_terminal_state error
func NewOrderInTerminalStateError(ref, status string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindOrderInTerminalState,
		Message: "Order " + ref + " is " + status,
	}
}

// NewConcurrentModificationError wraps a lock or serialization failure
func NewConcurrentModificationError(cause error) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindConcurrentModification,
		Message: ErrConcurrentModification.Message,
		cause:   cause,
	}
}

// NewPersistenceFailureError wraps a storage failure
func NewPersistenceFailureError(cause error) *AppError {
	return &AppError{
		Code:    http.StatusServiceUnavailable,
		Kind:    KindPersistenceFailure,
		Message: ErrPersistenceFailure.Message,
		cause:   cause,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// KindOf returns the kind of err, or an empty kind when it carries none
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}
