package batch

import (
	"context"
	"fmt"

	"prodtrack/internal/core/apperror"
	"prodtrack/internal/core/id"
	"prodtrack/internal/core/tx"
	"prodtrack/internal/domain"
	"prodtrack/pkg/logger"
)

// EntityName is used in errors and dependents checks.
const EntityName = "batch"

// References resolves the entities a batch points to.
type References struct {
	ProductionOrders domain.Exister
	Products         domain.Exister
	Routes           domain.Exister
}

// Service provides business logic for production batches.
type Service struct {
	repo      Repository
	txManager tx.Manager
	refs      References
	log       *logger.Logger
}

// NewService creates a new Batch service.
func NewService(repo Repository, txm tx.Manager, refs References, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		repo:      repo,
		txManager: txm,
		refs:      refs,
		log:       log.WithComponent("batch"),
	}
}

// Create stores a batch after checking that its production order, product
// and route exist.
func (s *Service) Create(ctx context.Context, b *Batch) error {
	if err := b.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context, _ tx.Tx) error {
		if err := domain.RequireExists(ctx, s.refs.ProductionOrders, "production order", b.ProductionOrderID); err != nil {
			return err
		}
		if err := domain.RequireExists(ctx, s.refs.Products, "product", b.ProductID); err != nil {
			return err
		}
		if err := domain.RequireExists(ctx, s.refs.Routes, "route", b.RouteID); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, b); err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.AbortedUnlessApp("create batch", err)
	}

	s.log.WithContext(ctx).Infow("batch created",
		"batch_id", b.ID,
		"production_order_id", b.ProductionOrderID,
		"status", b.Status.String(),
	)
	return nil
}

// GetByID returns the batch.
func (s *Service) GetByID(ctx context.Context, batchID id.ID) (*Batch, error) {
	b, err := s.repo.GetByID(ctx, batchID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(EntityName, batchID.String())
		}
		return nil, err
	}
	return b, nil
}

// List returns a page of batches.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Batch], error) {
	return s.repo.List(ctx, filter.Normalize())
}

// ListByProductionOrder returns the batches of a production order.
func (s *Service) ListByProductionOrder(ctx context.Context, productionOrderID id.ID) ([]*Batch, error) {
	return s.repo.ListByProductionOrder(ctx, productionOrderID)
}

// Update changes status, visible number or planned quantity.
func (s *Service) Update(ctx context.Context, batchID id.ID, ch Changes) (*Batch, error) {
	var updated *Batch
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context, _ tx.Tx) error {
		b, err := s.GetByID(ctx, batchID)
		if err != nil {
			return err
		}
		from := b.Status
		b.Apply(ch)
		if err := b.Validate(ctx); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, b); err != nil {
			return fmt.Errorf("update batch: %w", err)
		}
		if from != b.Status {
			s.log.WithContext(ctx).Infow("batch status changed",
				"batch_id", b.ID,
				"from", from.String(),
				"to", b.Status.String(),
			)
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a batch.
func (s *Service) Delete(ctx context.Context, batchID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context, _ tx.Tx) error {
		if _, err := s.GetByID(ctx, batchID); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, batchID); err != nil {
			return fmt.Errorf("delete batch: %w", err)
		}
		return nil
	})
}
