package domain

import (
	"context"

	"prodtrack/internal/core/numerator"
	"prodtrack/internal/core/tx"
)

// InsertNumbered stores an entity that carries the given business number.
// It runs inside the unit of work that allocated the number.
type InsertNumbered func(ctx context.Context, number string) error

// CreateNumbered allocates the next number of kind and hands it to insert,
// all in one unit of work. The entity and its number are stored together or
// not at all: any failure rolls back the counter increment with the insert.
//
// Structured errors (not found, validation, allocation failed) are returned
// as is. Anything else is reported as TRANSACTION_ABORTED for operation.
func CreateNumbered(
	ctx context.Context,
	txm tx.Manager,
	alloc numerator.Allocator,
	kind numerator.Kind,
	operation string,
	insert InsertNumbered,
) (numerator.Allocation, error) {
	var issued numerator.Allocation
	err := txm.RunInTransaction(ctx, func(ctx context.Context, t tx.Tx) error {
		a, err := alloc.Allocate(ctx, t, kind)
		if err != nil {
			return err
		}
		if err := insert(ctx, a.Formatted); err != nil {
			return err
		}
		issued = a
		return nil
	})
	if err != nil {
		return numerator.Allocation{}, AbortedUnlessApp(operation, err)
	}
	return issued, nil
}
