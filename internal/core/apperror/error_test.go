package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("row lock timeout")

	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{name: "validation", err: NewValidation("bad"), wantCode: CodeValidation, wantStatus: http.StatusBadRequest},
		{name: "not found", err: NewNotFound("order", "x"), wantCode: CodeNotFound, wantStatus: http.StatusNotFound},
		{name: "has dependents", err: NewHasDependents("customer", "x", "orders"), wantCode: CodeHasDependents, wantStatus: http.StatusUnprocessableEntity},
		{name: "allocation failed", err: NewAllocationFailed("order-sequence", cause), wantCode: CodeAllocationFailed, wantStatus: http.StatusInternalServerError},
		{name: "transaction aborted", err: NewTransactionAborted("create order", cause), wantCode: CodeTransactionAborted, wantStatus: http.StatusInternalServerError},
		{name: "timeout", err: NewTimeout("slow"), wantCode: CodeTimeout, wantStatus: http.StatusGatewayTimeout},
		{name: "conflict", err: NewConflict("taken"), wantCode: CodeConflict, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestAllocationFailed_KeepsCause(t *testing.T) {
	sentinel := errors.New("sequence counter not provisioned")
	err := fmt.Errorf("create order: %w", NewAllocationFailed("order-sequence", sentinel))

	assert.True(t, IsAllocationFailed(err))
	assert.ErrorIs(t, err, sentinel)
	assert.False(t, IsNotFound(err))
}

func TestAsAppError(t *testing.T) {
	_, ok := AsAppError(errors.New("plain"))
	assert.False(t, ok)

	wrapped := fmt.Errorf("outer: %w", NewNotFound("batch", "b-1").WithDetail("hint", "check id"))
	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "b-1", appErr.Details["id"])
	assert.Equal(t, "check id", appErr.Details["hint"])
	assert.True(t, IsNotFound(wrapped))
}

func TestWithDetail_InitializesDetails(t *testing.T) {
	err := NewInternal(errors.New("boom")).WithDetail("entity", "route")
	assert.Equal(t, "route", err.Details["entity"])
	assert.Equal(t, "Internal server error", err.Message)
}
