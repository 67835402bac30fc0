// Package memory provides an in-process transactional store.
//
// It mirrors the locking behaviour of the Postgres store closely enough to
// exercise allocation and creation workflows without a database: row locks
// are held until the owning transaction ends, writes become visible only on
// commit and are discarded on rollback.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"prodtrack/internal/core/tx"
)

// ErrTxDone is returned when a handle is used after its transaction ended.
var ErrTxDone = errors.New("transaction already ended")

// Compile-time check that TxManager implements tx.ReadOnlyManager.
var _ tx.ReadOnlyManager = (*TxManager)(nil)

type txKey struct{}

// Tx is an open in-memory unit of work.
type Tx struct {
	id string

	mu       sync.Mutex
	ended    bool
	held     map[any]any
	onCommit []func()
	onEnd    []func()
}

func newTx() *Tx {
	return &Tx{
		id:   uuid.NewString(),
		held: make(map[any]any),
	}
}

// ID implements tx.Tx.
func (t *Tx) ID() string { return t.id }

// attach registers per-transaction state under key together with hooks run
// on commit and on either outcome.
func (t *Tx) attach(key, state any, onCommit, onEnd func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ended {
		return ErrTxDone
	}
	t.held[key] = state
	if onCommit != nil {
		t.onCommit = append(t.onCommit, onCommit)
	}
	if onEnd != nil {
		t.onEnd = append(t.onEnd, onEnd)
	}
	return nil
}

func (t *Tx) lookup(key any) (any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ended {
		return nil, ErrTxDone
	}
	return t.held[key], nil
}

func (t *Tx) finish(commit bool) {
	t.mu.Lock()
	if t.ended {
		t.mu.Unlock()
		return
	}
	t.ended = true
	onCommit, onEnd := t.onCommit, t.onEnd
	t.onCommit, t.onEnd, t.held = nil, nil, nil
	t.mu.Unlock()

	if commit {
		for _, fn := range onCommit {
			fn()
		}
	}
	// Release in reverse acquisition order
	for i := len(onEnd) - 1; i >= 0; i-- {
		onEnd[i]()
	}
}

// TxManager runs functions inside in-memory transactions.
type TxManager struct{}

// NewTxManager creates a new in-memory transaction manager.
func NewTxManager() *TxManager {
	return &TxManager{}
}

// RunInTransaction executes fn within a transaction.
// If a transaction already exists in ctx, it will be reused.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context, t tx.Tx) error) (err error) {
	if existing := TxFromContext(ctx); existing != nil {
		return fn(ctx, existing)
	}

	t := newTx()
	txCtx := context.WithValue(ctx, txKey{}, t)

	committed := false
	defer func() {
		if !committed {
			t.finish(false)
		}
	}()

	if err := fn(txCtx, t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	t.finish(true)
	committed = true
	return nil
}

// ReadOnly executes fn in a transaction. The memory store does not enforce read-only access.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context, t tx.Tx) error) error {
	return m.RunInTransaction(ctx, fn)
}

// TxFromContext returns the active in-memory transaction, or nil if none.
func TxFromContext(ctx context.Context) *Tx {
	if t, ok := ctx.Value(txKey{}).(*Tx); ok {
		return t
	}
	return nil
}
