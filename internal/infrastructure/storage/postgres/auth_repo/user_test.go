package auth_repo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodtrack/internal/core/apperror"
	"prodtrack/internal/domain/auth"
	"prodtrack/internal/infrastructure/storage/postgres"
)

func newRepo(t *testing.T) (pgxmock.PgxPoolIface, *UserRepo) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewUserRepo(postgres.NewTxManagerFromBeginner(mock, postgres.DefaultTxOptions()))
}

func TestUserRepo_GetByEmail(t *testing.T) {
	mock, repo := newRepo(t)
	u := auth.NewUser("op@example.com", "$2a$hash")
	name := "Operator"
	u.Name = &name

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("op@example.com").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "email", "password_hash", "name", "is_active", "is_admin",
			"last_login_at", "failed_login_attempts", "locked_until", "created_at", "updated_at",
		}).AddRow(u.ID, u.Email, u.PasswordHash, u.Name, true, false,
			(*time.Time)(nil), 0, (*time.Time)(nil), u.CreatedAt, u.UpdatedAt))

	got, err := repo.GetByEmail(context.Background(), "op@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "$2a$hash", got.PasswordHash)
	assert.True(t, got.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByEmail_NotFound(t *testing.T) {
	mock, repo := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.True(t, apperror.IsNotFound(err))
}

func TestUserRepo_Create_DuplicateEmail(t *testing.T) {
	mock, repo := newRepo(t)
	u := auth.NewUser("op@example.com", "$2a$hash")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(u.ID, u.Email, u.PasswordHash, u.Name, true, false, u.CreatedAt, u.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), u)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestUserRepo_ExistsByEmail(t *testing.T) {
	mock, repo := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("op@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.ExistsByEmail(context.Background(), "op@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserRepo_Update_Missing(t *testing.T) {
	mock, repo := newRepo(t)
	u := auth.NewUser("op@example.com", "$2a$hash")

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET")).
		WithArgs(u.ID, u.Name, u.IsActive, u.IsAdmin, u.LastLoginAt, u.FailedLoginAttempts, u.LockedUntil, u.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), u)
	assert.True(t, apperror.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
