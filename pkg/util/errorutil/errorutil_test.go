package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantNotFoundCarriesIdentifiers(t *testing.T) {
	err := NewTenantNotFound("asst-1", "+15550001", "call-1")

	de := ToDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, "TENANT_NOT_FOUND", de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
	assert.Equal(t, "asst-1", de.Details["assistant_id"])
	assert.Equal(t, "+15550001", de.Details["phone_number"])
	assert.Equal(t, "call-1", de.Details["call_id"])
}

func TestErrorCodesAndStatuses(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewAuthenticationFailure("bad signature"), "AUTHENTICATION_FAILED", http.StatusUnauthorized},
		{NewValidationError("missing field", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{NewClassificationFailure(errors.New("boom")), "CLASSIFICATION_FAILED", http.StatusInternalServerError},
		{NewDeliveryFailure("+15550001", errors.New("gateway down")), "DELIVERY_FAILED", http.StatusBadGateway},
		{NewUnauthorized("no token"), "UNAUTHORIZED", http.StatusUnauthorized},
		{NewForbidden("wrong role"), "FORBIDDEN", http.StatusForbidden},
		{NewInternalError(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		de := ToDomainError(tc.err)
		require.NotNil(t, de, tc.code)
		assert.Equal(t, tc.code, de.Code)
		assert.Equal(t, tc.status, de.HTTPStatus)
	}
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	de := ToDomainError(fmt.Errorf("lookup: %w", pgx.ErrNoRows))
	require.NotNil(t, de)
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("disk full")
	de := ToDomainError(cause)
	require.NotNil(t, de)
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.ErrorIs(t, de, cause)
}

func TestToDomainErrorUnwrapsNested(t *testing.T) {
	inner := NewValidationError("bad payload", nil)
	de := ToDomainError(fmt.Errorf("processing: %w", inner))
	require.NotNil(t, de)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}
