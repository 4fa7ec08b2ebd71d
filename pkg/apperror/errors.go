package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the category of a billing failure so clients can react to it
// without parsing messages.
type Kind string

const (
	KindValidation        Kind = "ValidationError"
	KindItemNotFound      Kind = "ItemNotFound"
	KindInsufficientStock Kind = "InsufficientStock"
	KindExpiredItem       Kind = "ExpiredItem"
	KindPriceNotSet       Kind = "PriceNotSet"
	KindPersistence       Kind = "PersistenceError"
	KindConfiguration     Kind = "ConfigurationError"
	KindUpstream          Kind = "UpstreamUnavailable"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`

	// Billing specific context. FailingItem is the catalog item id and
	// LineIndex the zero-based cart position of the offending line.
	Kind        Kind  `json:"kind,omitempty"`
	FailingItem *uint `json:"failing_item,omitempty"`
	LineIndex   *int  `json:"line_index,omitempty"`
	Retryable   bool  `json:"retryable,omitempty"`

	cause error
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

// Unwrap exposes the underlying store or transport error.
func (e *AppError) Unwrap() error {
	return e.cause
}

// Common errors
var (
	ErrNotFound       = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrBadRequest     = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict       = &AppError{Code: http.StatusConflict, Message: "Resource already exists"}
	ErrUnprocessable  = &AppError{Code: http.StatusUnprocessableEntity, Message: "Unprocessable entity"}
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
		Kind:    KindValidation,
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

// NewLineError creates a per-line billing error pointing at the cart row that
// caused it.
func NewLineError(kind Kind, lineIndex int, itemID uint, message string) *AppError {
	code := http.StatusUnprocessableEntity
	switch kind {
	case KindItemNotFound:
		code = http.StatusNotFound
	case KindInsufficientStock:
		code = http.StatusConflict
	}
	return &AppError{
		Code:        code,
		Message:     message,
		Kind:        kind,
		FailingItem: &itemID,
		LineIndex:   &lineIndex,
	}
}

// NewPersistenceError wraps a store failure. The caller decides whether to retry.
func NewPersistenceError(op string, err error) *AppError {
	return &AppError{
		Code:      http.StatusServiceUnavailable,
		Message:   fmt.Sprintf("failed to %s", op),
		Kind:      KindPersistence,
		Retryable: true,
		cause:     err,
	}
}

// NewConfigurationError reports a missing or invalid runtime setting.
func NewConfigurationError(message string) *AppError {
	return &AppError{
		Code:    http.StatusServiceUnavailable,
		Message: message,
		Kind:    KindConfiguration,
	}
}

// NewUpstreamError reports a failing third-party dependency.
func NewUpstreamError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Kind:    KindUpstream,
		cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
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
