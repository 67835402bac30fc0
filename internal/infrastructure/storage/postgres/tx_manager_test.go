package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "prodtrack/internal/core/numerator"
	"prodtrack/internal/core/tx"
	"prodtrack/internal/infrastructure/numerator"
	"prodtrack/pkg/logger"
)

func newMockManager(t *testing.T) (pgxmock.PgxPoolIface, *TxManager) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	opts := DefaultTxOptions()
	opts.StatementTimeout = 5 * time.Second
	opts.LockTimeout = 2 * time.Second
	return mock, NewTxManagerFromBeginner(mock, opts)
}

func expectBegin(mock pgxmock.PgxPoolIface) {
	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite})
	mock.ExpectExec(regexp.QuoteMeta("SET LOCAL statement_timeout = '5000ms'")).
		WillReturnResult(pgxmock.NewResult("SET", 0))
	mock.ExpectExec(regexp.QuoteMeta("SET LOCAL lock_timeout = '2000ms'")).
		WillReturnResult(pgxmock.NewResult("SET", 0))
}

func TestTxManager_Commit(t *testing.T) {
	mock, txm := newMockManager(t)
	expectBegin(mock)
	mock.ExpectCommit()

	var handle tx.Tx
	err := txm.RunInTransaction(context.Background(), func(ctx context.Context, h tx.Tx) error {
		handle = h
		assert.NotNil(t, txm.GetTx(ctx))
		return nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, handle.ID())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_RollbackOnError(t *testing.T) {
	mock, txm := newMockManager(t)
	expectBegin(mock)
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := txm.RunInTransaction(context.Background(), func(ctx context.Context, t tx.Tx) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_RollbackOnPanic(t *testing.T) {
	mock, txm := newMockManager(t)
	expectBegin(mock)
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = txm.RunInTransaction(context.Background(), func(ctx context.Context, t tx.Tx) error {
			panic("handler bug")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_NestedReusesTransaction(t *testing.T) {
	mock, txm := newMockManager(t)
	expectBegin(mock)
	mock.ExpectCommit()

	err := txm.RunInTransaction(context.Background(), func(ctx context.Context, outer tx.Tx) error {
		return txm.RunInTransaction(ctx, func(ctx context.Context, inner tx.Tx) error {
			assert.Equal(t, outer.ID(), inner.ID())
			return nil
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_BeginFailure(t *testing.T) {
	mock, txm := newMockManager(t)
	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite}).
		WillReturnError(errors.New("too many connections"))

	called := false
	err := txm.RunInTransaction(context.Background(), func(ctx context.Context, t tx.Tx) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
}

// The allocation runs on the caller's transaction: lock, write, then the
// caller's COMMIT. The allocator itself never commits.
func TestAllocateInsideTransaction_Commit(t *testing.T) {
	mock, txm := newMockManager(t)
	alloc := numerator.New(NewCounterStore(), logger.Nop())

	expectBegin(mock)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT last_value")).
		WithArgs("order-sequence").
		WillReturnRows(pgxmock.NewRows([]string{"last_value"}).AddRow(int64(6)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sequence_counters")).
		WithArgs(int64(7), "order-sequence").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	var got corenumerator.Allocation
	err := txm.RunInTransaction(context.Background(), func(ctx context.Context, t tx.Tx) error {
		var err error
		got, err = alloc.Allocate(ctx, t, corenumerator.KindOrder)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "P-000007", got.Formatted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateInsideTransaction_RollbackAfterInsertFailure(t *testing.T) {
	mock, txm := newMockManager(t)
	alloc := numerator.New(NewCounterStore(), logger.Nop())

	expectBegin(mock)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT last_value")).
		WithArgs("production-order-sequence").
		WillReturnRows(pgxmock.NewRows([]string{"last_value"}).AddRow(int64(999999)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sequence_counters")).
		WithArgs(int64(1000000), "production-order-sequence").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectRollback()

	insertErr := errors.New("insert production order: connection reset")
	var got corenumerator.Allocation
	err := txm.RunInTransaction(context.Background(), func(ctx context.Context, t tx.Tx) error {
		var err error
		got, err = alloc.Allocate(ctx, t, corenumerator.KindProductionOrder)
		if err != nil {
			return err
		}
		return insertErr
	})
	require.ErrorIs(t, err, insertErr)
	assert.Equal(t, "OP-1000000", got.Formatted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
