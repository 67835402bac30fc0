package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"prodtrack/internal/core/tx"
	"prodtrack/pkg/logger"
)

var tracer = otel.Tracer("prodtrack/tx")

// Compile-time check that TxManager implements tx.ReadOnlyManager interface.
var _ tx.ReadOnlyManager = (*TxManager)(nil)

// TxOptions configures transaction behavior.
type TxOptions struct {
	// IsolationLevel: pgx.Serializable, pgx.RepeatableRead, pgx.ReadCommitted
	IsolationLevel pgx.TxIsoLevel

	// AccessMode: pgx.ReadWrite, pgx.ReadOnly
	AccessMode pgx.TxAccessMode

	// StatementTimeout protects against long-running queries (default 30s)
	StatementTimeout time.Duration

	// LockTimeout bounds the wait for row locks such as sequence counters (default 10s)
	LockTimeout time.Duration

	// UseSavepoint creates savepoint for nested transactions
	// WARNING: Savepoints are expensive, use only when needed
	UseSavepoint bool
}

// DefaultTxOptions returns production-safe defaults.
func DefaultTxOptions() TxOptions {
	return TxOptions{
		IsolationLevel:   pgx.ReadCommitted,
		AccessMode:       pgx.ReadWrite,
		StatementTimeout: 30 * time.Second,
		LockTimeout:      10 * time.Second,
		UseSavepoint:     false,
	}
}

// Querier is the subset of pgx used by repositories. Both the pool and an
// open transaction satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Beginner is a Querier that can open transactions (pgxpool.Pool, pgxmock pool).
type Beginner interface {
	Querier
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TxManager manages database transactions with support for:
// - Nested transactions (with optional savepoints)
// - Statement and lock timeout protection
// - Context cancellation handling
// - Distributed tracing integration
type TxManager struct {
	pool Beginner
	opts TxOptions
}

// NewTxManager creates a new transaction manager.
func NewTxManager(pool *Pool, opts TxOptions) *TxManager {
	return &TxManager{pool: pool.Pool, opts: opts}
}

// NewTxManagerFromBeginner creates a transaction manager over any Beginner.
func NewTxManagerFromBeginner(b Beginner, opts TxOptions) *TxManager {
	return &TxManager{pool: b, opts: opts}
}

// txKey is the context key for active transaction.
type txKey struct{}

// Tx wraps pgx.Tx with metadata. It is the tx.Tx handle handed to callbacks.
type Tx struct {
	pgx.Tx
	id     string
	nested bool
}

// ID implements tx.Tx.
func (t *Tx) ID() string { return t.id }

// RunInTransaction executes fn within a transaction.
// If a transaction already exists in ctx, it will be reused (nested transaction).
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context, t tx.Tx) error) error {
	return m.RunInTransactionWithOptions(ctx, m.opts, fn)
}

// RunInTransactionWithOptions executes fn with custom transaction options.
func (m *TxManager) RunInTransactionWithOptions(ctx context.Context, opts TxOptions, fn func(ctx context.Context, t tx.Tx) error) error {
	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(
			attribute.String("tx.isolation", string(opts.IsolationLevel)),
			attribute.String("tx.access_mode", string(opts.AccessMode)),
		))
	defer span.End()

	var err error
	if existing := m.GetTx(ctx); existing != nil {
		err = m.handleNestedTransaction(ctx, existing, opts, fn)
	} else {
		err = m.startNewTransaction(ctx, opts, fn)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transaction rolled back")
	}
	return err
}

// startNewTransaction begins a new database transaction.
func (m *TxManager) startNewTransaction(ctx context.Context, opts TxOptions, fn func(ctx context.Context, t tx.Tx) error) error {
	pgxTx, err := m.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   opts.IsolationLevel,
		AccessMode: opts.AccessMode,
	})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	wrapped := &Tx{Tx: pgxTx, id: uuid.NewString()}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("tx.id", wrapped.id))

	// A panic inside fn must not leave the connection holding row locks
	defer func() {
		if p := recover(); p != nil {
			m.rollback(ctx, wrapped, fmt.Errorf("panic: %v", p))
			panic(p)
		}
	}()

	if err := m.applyTimeouts(ctx, wrapped, opts); err != nil {
		m.rollback(ctx, wrapped, err)
		return err
	}

	txCtx := context.WithValue(ctx, txKey{}, wrapped)
	if err := fn(txCtx, wrapped); err != nil {
		m.rollback(ctx, wrapped, err)
		return err
	}

	if err := pgxTx.Commit(ctx); err != nil {
		// Commit failure leaves the tx aborted; make sure the connection is released
		m.rollback(ctx, wrapped, err)
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// applyTimeouts sets per-transaction statement and lock timeouts.
func (m *TxManager) applyTimeouts(ctx context.Context, t *Tx, opts TxOptions) error {
	if opts.StatementTimeout > 0 {
		if _, err := t.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", opts.StatementTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set statement_timeout: %w", err)
		}
	}
	if opts.LockTimeout > 0 {
		if _, err := t.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", opts.LockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}
	return nil
}

// handleNestedTransaction manages nested transaction (reuses or creates savepoint).
func (m *TxManager) handleNestedTransaction(ctx context.Context, existing *Tx, opts TxOptions, fn func(ctx context.Context, t tx.Tx) error) error {
	if !opts.UseSavepoint {
		return fn(ctx, existing)
	}

	savepointName := fmt.Sprintf("sp_%d", time.Now().UnixNano())
	if _, err := existing.Exec(ctx, "SAVEPOINT "+savepointName); err != nil {
		return fmt.Errorf("create savepoint: %w", err)
	}

	nested := &Tx{Tx: existing.Tx, id: existing.id, nested: true}
	if err := fn(context.WithValue(ctx, txKey{}, nested), nested); err != nil {
		if _, rbErr := existing.Exec(ctx, "ROLLBACK TO SAVEPOINT "+savepointName); rbErr != nil {
			logger.Error(ctx, "rollback to savepoint failed", "savepoint", savepointName, "error", rbErr)
		}
		return err
	}

	if _, err := existing.Exec(ctx, "RELEASE SAVEPOINT "+savepointName); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}

	return nil
}

// rollback ends t after a failure.
// Uses background context so it completes even if the original context was cancelled.
func (m *TxManager) rollback(ctx context.Context, t *Tx, cause error) {
	if rbErr := t.Rollback(context.Background()); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
		logger.Error(ctx, "rollback failed", "tx_id", t.id, "error", rbErr, "original_error", cause)
	}
}

// GetTx returns the current transaction from context, or nil if none.
func (m *TxManager) GetTx(ctx context.Context) *Tx {
	if t, ok := ctx.Value(txKey{}).(*Tx); ok {
		return t
	}
	return nil
}

// GetQuerier returns the transaction in ctx, or the pool when there is none.
// This allows repos to work both inside and outside transactions.
func (m *TxManager) GetQuerier(ctx context.Context) Querier {
	if t := m.GetTx(ctx); t != nil {
		return t.Tx
	}
	return m.pool
}

// ReadOnly executes fn in a read-only transaction.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context, t tx.Tx) error) error {
	opts := m.opts
	opts.AccessMode = pgx.ReadOnly
	return m.RunInTransactionWithOptions(ctx, opts, fn)
}

// querierFor resolves the SQL handle behind a tx.Tx issued by this package.
func querierFor(t tx.Tx) (Querier, error) {
	pt, ok := t.(*Tx)
	if !ok || pt == nil || pt.Tx == nil {
		return nil, fmt.Errorf("postgres: unsupported transaction handle %T", t)
	}
	return pt.Tx, nil
}
