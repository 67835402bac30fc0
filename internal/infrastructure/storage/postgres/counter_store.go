package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"

	corenumerator "prodtrack/internal/core/numerator"
	"prodtrack/internal/core/tx"
)

// Compile-time check that CounterStore implements corenumerator.CounterStore.
var _ corenumerator.CounterStore = (*CounterStore)(nil)

const (
	lockCounterSQL = `
		SELECT last_value
		FROM sequence_counters
		WHERE kind = $1
		FOR UPDATE`

	writeCounterSQL = `
		UPDATE sequence_counters
		SET last_value = $1, updated_at = now()
		WHERE kind = $2`

	provisionCounterSQL = `
		INSERT INTO sequence_counters (kind, last_value)
		VALUES ($1, 0)
		ON CONFLICT (kind) DO NOTHING`

	listCountersSQL = `
		SELECT kind
		FROM sequence_counters
		WHERE kind = ANY($1)`
)

// CounterStore keeps sequence counters in the sequence_counters table,
// one row per kind.
//
// It runs only on the transaction handed to it and never commits. The row
// lock from LockAndRead is released by the caller's COMMIT or ROLLBACK.
type CounterStore struct{}

// NewCounterStore creates a new counter store.
func NewCounterStore() *CounterStore {
	return &CounterStore{}
}

// LockAndRead implements corenumerator.CounterStore using SELECT ... FOR UPDATE.
// A missing row is reported as ErrNotProvisioned and is never inserted here.
func (s *CounterStore) LockAndRead(ctx context.Context, t tx.Tx, kind corenumerator.Kind) (int64, error) {
	q, err := querierFor(t)
	if err != nil {
		return 0, err
	}

	var value int64
	if err := q.QueryRow(ctx, lockCounterSQL, string(kind)).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("kind %q: %w", kind, corenumerator.ErrNotProvisioned)
		}
		return 0, fmt.Errorf("lock counter: %w", err)
	}
	return value, nil
}

// Write implements corenumerator.CounterStore.
func (s *CounterStore) Write(ctx context.Context, t tx.Tx, kind corenumerator.Kind, value int64) error {
	q, err := querierFor(t)
	if err != nil {
		return err
	}
	if value < 0 {
		return fmt.Errorf("kind %q: negative counter value %d", kind, value)
	}

	tag, err := q.Exec(ctx, writeCounterSQL, value, string(kind))
	if err != nil {
		return fmt.Errorf("write counter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("kind %q: %w", kind, corenumerator.ErrNotProvisioned)
	}
	return nil
}

// Provision seeds a zero counter for every kind. Existing rows keep their value.
func (s *CounterStore) Provision(ctx context.Context, q Querier, kinds ...corenumerator.Kind) error {
	for _, kind := range kinds {
		if _, err := q.Exec(ctx, provisionCounterSQL, string(kind)); err != nil {
			return fmt.Errorf("provision counter %s: %w", kind, err)
		}
	}
	return nil
}

// Missing returns the kinds that have no counter row. Allocation for such a
// kind fails with ErrNotProvisioned, so readiness checks report them.
func (s *CounterStore) Missing(ctx context.Context, q Querier, kinds ...corenumerator.Kind) ([]corenumerator.Kind, error) {
	names := lo.Map(kinds, func(k corenumerator.Kind, _ int) string { return string(k) })

	rows, err := q.Query(ctx, listCountersSQL, names)
	if err != nil {
		return nil, fmt.Errorf("list counters: %w", err)
	}
	present, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list counters: %w", err)
	}

	return lo.Filter(kinds, func(k corenumerator.Kind, _ int) bool {
		return !lo.Contains(present, string(k))
	}), nil
}
