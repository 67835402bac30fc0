package numerator

import (
	"context"
	"sync"

	"prodtrack/internal/core/tx"
)

// MockAllocator is a test implementation of Allocator.
// Use in unit tests to avoid database dependencies.
type MockAllocator struct {
	AllocateFunc func(ctx context.Context, t tx.Tx, kind Kind) (Allocation, error)

	mu    sync.Mutex
	next  map[Kind]int64
	Calls []Kind
}

// Allocate implements Allocator.
func (m *MockAllocator) Allocate(ctx context.Context, t tx.Tx, kind Kind) (Allocation, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, kind)
	m.mu.Unlock()

	if m.AllocateFunc != nil {
		return m.AllocateFunc(ctx, t, kind)
	}

	// Default: per-kind counter starting at 1, never rolled back
	cfg, err := ConfigFor(kind)
	if err != nil {
		return Allocation{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.next == nil {
		m.next = make(map[Kind]int64)
	}
	m.next[kind]++
	v := m.next[kind]
	return Allocation{Kind: kind, Value: v, Formatted: cfg.Format(v)}, nil
}

// Ensure compile-time interface compliance.
var _ Allocator = (*MockAllocator)(nil)
