package numerator

import (
	"context"
	"errors"

	"prodtrack/internal/core/tx"
)

var (
	// ErrNotProvisioned means the counter row for a kind is missing.
	// It is a deployment fault: never retried, never repaired on the fly.
	ErrNotProvisioned = errors.New("sequence counter not provisioned")

	// ErrExhausted means the counter reached the int64 ceiling.
	ErrExhausted = errors.New("sequence counter exhausted")

	// ErrLockNotHeld is returned by a CounterStore when Write is called without
	// a prior LockAndRead for the same kind in the same transaction.
	ErrLockNotHeld = errors.New("sequence counter lock not held")
)

// Allocation is one issued business number.
type Allocation struct {
	Kind      Kind
	Value     int64
	Formatted string
}

func (a Allocation) String() string { return a.Formatted }

// Allocator issues gapless sequential numbers inside the caller's transaction.
// This is the domain contract - implementations live in infrastructure layer.
//
// The increment becomes durable only when t commits. If t rolls back the
// counter is unchanged and the same value is issued again.
type Allocator interface {
	Allocate(ctx context.Context, t tx.Tx, kind Kind) (Allocation, error)
}

// CounterStore persists the last issued value of every kind.
//
// LockAndRead takes an exclusive lock on the kind's counter which is held
// until t ends. Different kinds never contend. Write is valid only while the
// lock is held and is never committed by the store itself.
type CounterStore interface {
	LockAndRead(ctx context.Context, t tx.Tx, kind Kind) (int64, error)
	Write(ctx context.Context, t tx.Tx, kind Kind, value int64) error
}
