package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

// NewAuthenticationFailure rejects a webhook delivery whose signature is
// missing or does not match the shared secret.
func NewAuthenticationFailure(message string) error {
	return NewDomainError("AUTHENTICATION_FAILED", message, http.StatusUnauthorized, nil)
}

// NewTenantNotFound signals that every resolution strategy was exhausted.
// The attempted identifiers travel in Details for operator diagnosis.
func NewTenantNotFound(assistantID, phoneNumber, callID string) error {
	return &DomainError{
		Code:       "TENANT_NOT_FOUND",
		Message:    "no tenant matches the supplied identifiers",
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"assistant_id": assistantID,
			"phone_number": phoneNumber,
			"call_id":      callID,
		},
	}
}

// NewClassificationFailure wraps an unexpected scoring error. Callers treat
// it as score 0.0 rather than failing the event.
func NewClassificationFailure(err error) error {
	return &DomainError{
		Code:       "CLASSIFICATION_FAILED",
		Message:    "transcript classification failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewDeliveryFailure records a per-recipient send failure. It is stored on
// the attempt, never returned to the webhook caller.
func NewDeliveryFailure(recipient string, err error) error {
	return &DomainError{
		Code:       "DELIVERY_FAILED",
		Message:    fmt.Sprintf("alert delivery to %s failed", recipient),
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
