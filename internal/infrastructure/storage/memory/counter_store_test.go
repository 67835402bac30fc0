package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "prodtrack/internal/core/numerator"
	"prodtrack/internal/core/tx"
)

func newStore(t *testing.T) (*TxManager, *CounterStore) {
	t.Helper()
	store := NewCounterStore()
	store.Provision(corenumerator.KindOrder, 0)
	store.Provision(corenumerator.KindProductionOrder, 0)
	return NewTxManager(), store
}

func TestCounterStore_CommitAppliesWrite(t *testing.T) {
	txm, store := newStore(t)
	ctx := context.Background()

	err := txm.RunInTransaction(ctx, func(ctx context.Context, t tx.Tx) error {
		v, err := store.LockAndRead(ctx, t, corenumerator.KindOrder)
		if err != nil {
			return err
		}
		return store.Write(ctx, t, corenumerator.KindOrder, v+1)
	})
	require.NoError(t, err)

	v, ok := store.Value(corenumerator.KindOrder)
	require.True(t, ok)
	assert.Equal(t, int64(1), v)
}

func TestCounterStore_RollbackDiscardsWrite(t *testing.T) {
	txm, store := newStore(t)
	ctx := context.Background()
	boom := errors.New("insert failed")

	err := txm.RunInTransaction(ctx, func(ctx context.Context, t tx.Tx) error {
		if _, err := store.LockAndRead(ctx, t, corenumerator.KindOrder); err != nil {
			return err
		}
		if err := store.Write(ctx, t, corenumerator.KindOrder, 5); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	v, _ := store.Value(corenumerator.KindOrder)
	assert.Equal(t, int64(0), v)
}

func TestCounterStore_ReadYourWrites(t *testing.T) {
	txm, store := newStore(t)
	ctx := context.Background()

	err := txm.RunInTransaction(ctx, func(ctx context.Context, h tx.Tx) error {
		if _, err := store.LockAndRead(ctx, h, corenumerator.KindOrder); err != nil {
			return err
		}
		if err := store.Write(ctx, h, corenumerator.KindOrder, 9); err != nil {
			return err
		}
		v, err := store.LockAndRead(ctx, h, corenumerator.KindOrder)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(9), v)
		return nil
	})
	require.NoError(t, err)
}

func TestCounterStore_LockHeldUntilTransactionEnds(t *testing.T) {
	txm, store := newStore(t)
	ctx := context.Background()

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- txm.RunInTransaction(ctx, func(ctx context.Context, t tx.Tx) error {
			if _, err := store.LockAndRead(ctx, t, corenumerator.KindOrder); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	// A second transaction cannot take the same row while the first is open
	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err := txm.RunInTransaction(waitCtx, func(ctx context.Context, t tx.Tx) error {
		_, err := store.LockAndRead(ctx, t, corenumerator.KindOrder)
		return err
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-done)

	// Released after commit
	err = txm.RunInTransaction(ctx, func(ctx context.Context, t tx.Tx) error {
		_, err := store.LockAndRead(ctx, t, corenumerator.KindOrder)
		return err
	})
	require.NoError(t, err)
}

func TestCounterStore_KindsDoNotContend(t *testing.T) {
	txm, store := newStore(t)
	ctx := context.Background()

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- txm.RunInTransaction(ctx, func(ctx context.Context, t tx.Tx) error {
			if _, err := store.LockAndRead(ctx, t, corenumerator.KindOrder); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	err := txm.RunInTransaction(waitCtx, func(ctx context.Context, t tx.Tx) error {
		_, err := store.LockAndRead(ctx, t, corenumerator.KindProductionOrder)
		return err
	})
	require.NoError(t, err)

	close(release)
	require.NoError(t, <-done)
}

func TestCounterStore_NotProvisioned(t *testing.T) {
	txm := NewTxManager()
	store := NewCounterStore()
	ctx := context.Background()

	err := txm.RunInTransaction(ctx, func(ctx context.Context, t tx.Tx) error {
		_, err := store.LockAndRead(ctx, t, corenumerator.KindOrder)
		return err
	})
	require.ErrorIs(t, err, corenumerator.ErrNotProvisioned)
	assert.False(t, store.Provisioned(corenumerator.KindOrder), "lookup must not create the row")
}

func TestCounterStore_WriteWithoutLock(t *testing.T) {
	txm, store := newStore(t)
	ctx := context.Background()

	err := txm.RunInTransaction(ctx, func(ctx context.Context, t tx.Tx) error {
		return store.Write(ctx, t, corenumerator.KindOrder, 1)
	})
	require.ErrorIs(t, err, corenumerator.ErrLockNotHeld)
}

func TestCounterStore_HandleAfterEnd(t *testing.T) {
	txm, store := newStore(t)
	ctx := context.Background()

	var leaked tx.Tx
	require.NoError(t, txm.RunInTransaction(ctx, func(ctx context.Context, t tx.Tx) error {
		leaked = t
		return nil
	}))

	_, err := store.LockAndRead(ctx, leaked, corenumerator.KindOrder)
	require.ErrorIs(t, err, ErrTxDone)
}

func TestCounterStore_ProvisionKeepsExisting(t *testing.T) {
	store := NewCounterStore()
	store.Provision(corenumerator.KindOrder, 41)
	store.Provision(corenumerator.KindOrder, 0)

	v, ok := store.Value(corenumerator.KindOrder)
	require.True(t, ok)
	assert.Equal(t, int64(41), v)
}
