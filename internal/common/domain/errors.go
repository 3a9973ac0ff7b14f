package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a DomainError for the transport layer.
type ErrorKind string

const (
	KindValidation      ErrorKind = "VALIDATION_ERROR"
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindForbidden       ErrorKind = "FORBIDDEN"
	KindConflict        ErrorKind = "CONFLICT"
	KindRoomUnavailable ErrorKind = "ROOM_UNAVAILABLE"
	KindStorageTimeout  ErrorKind = "STORAGE_TIMEOUT"
	KindStorageFailure  ErrorKind = "STORAGE_FAILURE"
)

// DomainError is an expected failure carrying a kind and a user-facing message.
type DomainError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *DomainError) Unwrap() error { return e.cause }

// HTTPStatus maps the error kind to an HTTP status code.
func (e *DomainError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict, KindRoomUnavailable:
		return http.StatusConflict
	case KindStorageTimeout, KindStorageFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether the caller may retry the failed operation.
func (e *DomainError) Retryable() bool {
	return e.Kind == KindStorageTimeout || e.Kind == KindStorageFailure
}

// NewValidationError creates an error for malformed or missing input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: message}
}

// NewNotFoundError creates an error for a missing entity.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// NewForbiddenError creates an error for an access violation.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Kind: KindForbidden, Message: message}
}

// NewConflictError creates an error for a state conflict.
func NewConflictError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Message: message}
}

// NewRoomUnavailableError creates an error for a stay that overlaps an existing booking.
func NewRoomUnavailableError(roomID string) *DomainError {
	return &DomainError{Kind: KindRoomUnavailable, Message: fmt.Sprintf("room %s is not available for the selected dates", roomID)}
}

// NewStorageTimeoutError wraps a storage call that exceeded its deadline.
func NewStorageTimeoutError(op string, cause error) *DomainError {
	return &DomainError{Kind: KindStorageTimeout, Message: fmt.Sprintf("storage timeout during %s", op), cause: cause}
}

// NewStorageFailureError wraps an unexpected storage failure.
func NewStorageFailureError(op string, cause error) *DomainError {
	return &DomainError{Kind: KindStorageFailure, Message: fmt.Sprintf("storage failure during %s", op), cause: cause}
}

// AsDomainError extracts a DomainError from an error chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsKind reports whether err is a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	de, ok := AsDomainError(err)
	return ok && de.Kind == kind
}

// IsRetryable reports whether err is a retryable storage failure.
func IsRetryable(err error) bool {
	de, ok := AsDomainError(err)
	return ok && de.Retryable()
}
