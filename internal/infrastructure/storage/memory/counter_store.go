package memory

import (
	"context"
	"fmt"
	"sync"

	corenumerator "prodtrack/internal/core/numerator"
	"prodtrack/internal/core/tx"
)

// Compile-time check that CounterStore implements corenumerator.CounterStore.
var _ corenumerator.CounterStore = (*CounterStore)(nil)

type counter struct {
	// lock holds one token while a transaction owns the row
	lock  chan struct{}
	value int64
}

type counterKey struct {
	store *CounterStore
	kind  corenumerator.Kind
}

// heldCounter is the view of a locked counter inside one transaction.
type heldCounter struct {
	value int64
	dirty bool
}

// CounterStore keeps one counter per sequence kind.
type CounterStore struct {
	mu       sync.Mutex
	counters map[corenumerator.Kind]*counter
}

// NewCounterStore creates an empty store. Call Provision before allocating.
func NewCounterStore() *CounterStore {
	return &CounterStore{counters: make(map[corenumerator.Kind]*counter)}
}

// Provision creates the counter for kind at value. Existing counters are left untouched.
func (s *CounterStore) Provision(kind corenumerator.Kind, value int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.counters[kind]; ok {
		return
	}
	s.counters[kind] = &counter{lock: make(chan struct{}, 1), value: value}
}

// Value returns the last committed value for kind.
func (s *CounterStore) Value(kind corenumerator.Kind) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[kind]
	if !ok {
		return 0, false
	}
	return c.value, true
}

// Provisioned reports whether a counter row exists for kind.
func (s *CounterStore) Provisioned(kind corenumerator.Kind) bool {
	_, ok := s.Value(kind)
	return ok
}

// LockAndRead implements corenumerator.CounterStore.
// It blocks until the counter is free or ctx is done. A transaction that
// already holds the lock reads its own pending value.
func (s *CounterStore) LockAndRead(ctx context.Context, t tx.Tx, kind corenumerator.Kind) (int64, error) {
	mt, err := asTx(t)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	c, ok := s.counters[kind]
	s.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("kind %q: %w", kind, corenumerator.ErrNotProvisioned)
	}

	key := counterKey{store: s, kind: kind}
	state, err := mt.lookup(key)
	if err != nil {
		return 0, err
	}
	if h, ok := state.(*heldCounter); ok {
		return h.value, nil
	}

	select {
	case c.lock <- struct{}{}:
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	s.mu.Lock()
	h := &heldCounter{value: c.value}
	s.mu.Unlock()

	err = mt.attach(key, h,
		func() {
			if h.dirty {
				s.mu.Lock()
				c.value = h.value
				s.mu.Unlock()
			}
		},
		func() { <-c.lock },
	)
	if err != nil {
		<-c.lock
		return 0, err
	}
	return h.value, nil
}

// Write implements corenumerator.CounterStore. The value is applied on commit.
func (s *CounterStore) Write(_ context.Context, t tx.Tx, kind corenumerator.Kind, value int64) error {
	mt, err := asTx(t)
	if err != nil {
		return err
	}
	if value < 0 {
		return fmt.Errorf("kind %q: negative counter value %d", kind, value)
	}

	state, err := mt.lookup(counterKey{store: s, kind: kind})
	if err != nil {
		return err
	}
	h, ok := state.(*heldCounter)
	if !ok {
		return fmt.Errorf("kind %q: %w", kind, corenumerator.ErrLockNotHeld)
	}
	h.value = value
	h.dirty = true
	return nil
}

func asTx(t tx.Tx) (*Tx, error) {
	mt, ok := t.(*Tx)
	if !ok || mt == nil {
		return nil, fmt.Errorf("memory store: unsupported transaction handle %T", t)
	}
	return mt, nil
}
