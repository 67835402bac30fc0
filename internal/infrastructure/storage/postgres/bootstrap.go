package postgres

import (
	"context"
	"fmt"

	corenumerator "prodtrack/internal/core/numerator"
	"prodtrack/internal/core/tx"
	"prodtrack/internal/infrastructure/storage/postgres/schema"
	"prodtrack/pkg/logger"
)

// Bootstrap creates missing tables and provisions a counter row for every
// sequence kind in one transaction. Existing counters keep their value.
func Bootstrap(ctx context.Context, txm *TxManager) error {
	exec := NewBatchExecutor(txm)
	counters := NewCounterStore()

	stmts := schema.Statements()
	queries := make([]BatchQuery, 0, len(stmts))
	for _, s := range stmts {
		queries = append(queries, BatchQuery{SQL: s})
	}

	err := txm.RunInTransaction(ctx, func(ctx context.Context, _ tx.Tx) error {
		if err := exec.ExecuteBatch(ctx, queries); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		return counters.Provision(ctx, txm.GetQuerier(ctx), corenumerator.Kinds()...)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "database schema ready",
		"statements", len(queries),
		"counters", len(corenumerator.Kinds()))
	return nil
}
