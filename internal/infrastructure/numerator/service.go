// Package numerator implements business number allocation on top of a
// transactional counter store.
// This is the infrastructure layer - it implements core/numerator.Allocator.
package numerator

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"prodtrack/internal/core/apperror"
	corenumerator "prodtrack/internal/core/numerator"
	"prodtrack/internal/core/tx"
	"prodtrack/pkg/logger"
)

var tracer = otel.Tracer("prodtrack/numerator")

// Compile-time check that Service implements corenumerator.Allocator.
var _ corenumerator.Allocator = (*Service)(nil)

// Service allocates numbers with lock, increment, write.
//
// Every call touches the store. There is no in-memory range cache: a cached
// range would survive a rollback and leave gaps.
type Service struct {
	store corenumerator.CounterStore
	log   *logger.Logger
}

// New creates an allocator over store.
func New(store corenumerator.CounterStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		store: store,
		log:   log.WithComponent("numerator"),
	}
}

// Allocate issues the next number for kind inside t.
//
// The counter lock taken here stays held until t ends, so concurrent callers
// for the same kind queue behind the first one. The write is not committed;
// the caller's commit makes it durable and the caller's rollback undoes it.
//
// Every failure is returned as an ALLOCATION_FAILED AppError whose cause
// chain keeps the original error (errors.Is(err, ErrNotProvisioned) holds
// for missing counters). Nothing is retried.
func (s *Service) Allocate(ctx context.Context, t tx.Tx, kind corenumerator.Kind) (corenumerator.Allocation, error) {
	if s == nil || s.store == nil {
		return corenumerator.Allocation{}, apperror.NewAllocationFailed(kind.String(),
			fmt.Errorf("numerator service is not initialized"))
	}
	if t == nil {
		return corenumerator.Allocation{}, apperror.NewAllocationFailed(kind.String(),
			fmt.Errorf("allocate %s: transaction handle is required", kind))
	}

	ctx, span := tracer.Start(ctx, "numerator.Allocate",
		trace.WithAttributes(
			attribute.String("sequence.kind", kind.String()),
			attribute.String("tx.id", t.ID()),
		))
	defer span.End()

	alloc, err := s.allocate(ctx, t, kind)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "allocation failed")
		s.report(ctx, t, kind, err)
		return corenumerator.Allocation{}, apperror.NewAllocationFailed(kind.String(), err)
	}

	span.SetAttributes(attribute.Int64("sequence.value", alloc.Value))
	s.log.WithContext(ctx).Debugw("number allocated",
		"kind", kind,
		"number", alloc.Formatted,
		"tx_id", t.ID(),
	)
	return alloc, nil
}

func (s *Service) allocate(ctx context.Context, t tx.Tx, kind corenumerator.Kind) (corenumerator.Allocation, error) {
	cfg, err := corenumerator.ConfigFor(kind)
	if err != nil {
		return corenumerator.Allocation{}, err
	}

	current, err := s.store.LockAndRead(ctx, t, kind)
	if err != nil {
		return corenumerator.Allocation{}, fmt.Errorf("lock counter %s: %w", kind, err)
	}
	if current < 0 {
		return corenumerator.Allocation{}, fmt.Errorf("counter %s holds negative value %d", kind, current)
	}
	if current == math.MaxInt64 {
		return corenumerator.Allocation{}, fmt.Errorf("counter %s: %w", kind, corenumerator.ErrExhausted)
	}

	next := current + 1
	if err := s.store.Write(ctx, t, kind, next); err != nil {
		return corenumerator.Allocation{}, fmt.Errorf("write counter %s: %w", kind, err)
	}

	return corenumerator.Allocation{
		Kind:      kind,
		Value:     next,
		Formatted: cfg.Format(next),
	}, nil
}

// report logs a failed allocation. Missing counters are an operator problem
// and are flagged for alerting.
func (s *Service) report(ctx context.Context, t tx.Tx, kind corenumerator.Kind, err error) {
	l := s.log.WithContext(ctx)
	switch {
	case errors.Is(err, corenumerator.ErrNotProvisioned):
		l.Errorw("sequence counter is not provisioned",
			"kind", kind,
			"tx_id", t.ID(),
			"alert", true,
			"error", err,
		)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		l.Warnw("number allocation interrupted",
			"kind", kind,
			"tx_id", t.ID(),
			"error", err,
		)
	default:
		l.Errorw("number allocation failed",
			"kind", kind,
			"tx_id", t.ID(),
			"error", err,
		)
	}
}
