package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"prodtrack/internal/core/apperror"
)

func TestTranslateWriteError(t *testing.T) {
	plain := errors.New("connection refused")

	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "unique violation",
			err:      fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "products_name_key"}),
			wantCode: apperror.CodeDuplicate,
		},
		{
			name:     "foreign key violation",
			err:      &pgconn.PgError{Code: "23503", ConstraintName: "orders_customer_id_fkey"},
			wantCode: apperror.CodeReferenceViolation,
		},
		{name: "other server error", err: &pgconn.PgError{Code: "40001"}},
		{name: "not a server error", err: plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateWriteError(tt.err, "product")
			if tt.wantCode == "" {
				assert.Same(t, tt.err, got)
				return
			}
			appErr, ok := apperror.AsAppError(got)
			if !ok {
				t.Fatalf("expected AppError, got %v", got)
			}
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestPgErrorCode(t *testing.T) {
	assert.Equal(t, "55P03", PgErrorCode(fmt.Errorf("lock: %w", &pgconn.PgError{Code: "55P03"})))
	assert.Equal(t, "", PgErrorCode(errors.New("boom")))
}
