package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"prodtrack/internal/core/apperror"
)

// PostgreSQL SQLSTATE codes mapped to application errors.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
)

// PgErrorCode returns the SQLSTATE of err, or "" if err is not a server error.
func PgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// TranslateWriteError maps constraint violations raised by INSERT/UPDATE to
// application errors. Other errors are returned unchanged.
func TranslateWriteError(err error, entity string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case CodeUniqueViolation:
		return apperror.NewDuplicate(entity, constraintField(pgErr), "").WithCause(err)
	case CodeForeignKeyViolation:
		return apperror.NewReferenceViolation(constraintField(pgErr)).WithCause(err)
	}
	return err
}

// constraintField guesses the offending column from the server error.
func constraintField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if pgErr.ConstraintName != "" {
		return pgErr.ConstraintName
	}
	return "value"
}
