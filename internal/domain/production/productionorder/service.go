package productionorder

import (
	"context"
	"fmt"

	"prodtrack/internal/core/apperror"
	"prodtrack/internal/core/id"
	"prodtrack/internal/core/numerator"
	"prodtrack/internal/core/tx"
	"prodtrack/internal/domain"
	"prodtrack/internal/domain/production/batch"
	"prodtrack/internal/domain/production/order"
	"prodtrack/pkg/logger"
)

// EntityName is used in errors and dependents checks.
const EntityName = "production order"

// OrderLookup resolves the customer order a production order fulfils.
type OrderLookup interface {
	domain.Exister
	GetByID(ctx context.Context, id id.ID) (*order.Order, error)
}

// BatchLister loads the batches of a production order.
type BatchLister interface {
	ListByProductionOrder(ctx context.Context, productionOrderID id.ID) ([]*batch.Batch, error)
}

// Details is a production order with its customer order and batches.
type Details struct {
	*ProductionOrder
	Order   *order.Order   `json:"order,omitempty"`
	Batches []*batch.Batch `json:"batches"`
}

// Service provides business logic for production orders.
type Service struct {
	repo      Repository
	txManager tx.Manager
	allocator numerator.Allocator
	orders    OrderLookup
	batches   BatchLister
	hooks     *domain.HookRegistry[*ProductionOrder]
	log       *logger.Logger
}

// NewService creates a new ProductionOrder service.
func NewService(
	repo Repository,
	txm tx.Manager,
	allocator numerator.Allocator,
	orders OrderLookup,
	batches BatchLister,
	log *logger.Logger,
) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		repo:      repo,
		txManager: txm,
		allocator: allocator,
		orders:    orders,
		batches:   batches,
		hooks:     domain.NewHookRegistry[*ProductionOrder](),
		log:       log.WithComponent("production_order"),
	}
}

// Hooks returns the hook registry for external registration.
func (s *Service) Hooks() *domain.HookRegistry[*ProductionOrder] {
	return s.hooks
}

// Create issues the next production order number and stores the production
// order in one unit of work: allocate, check the linked order (if any),
// insert. On any failure nothing is stored and the number is not consumed.
func (s *Service) Create(ctx context.Context, p *ProductionOrder) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	alloc, err := domain.CreateNumbered(ctx, s.txManager, s.allocator, numerator.KindProductionOrder, "create production order",
		func(ctx context.Context, number string) error {
			if p.OrderID != nil {
				if err := domain.RequireExists(ctx, s.orders, order.EntityName, *p.OrderID); err != nil {
					return err
				}
			}
			p.Number = number
			if err := s.repo.Create(ctx, p); err != nil {
				return fmt.Errorf("insert production order %s: %w", number, err)
			}
			return nil
		})
	if err != nil {
		p.Number = ""
		return err
	}

	s.log.WithContext(ctx).Infow("production order created",
		"production_order_id", p.ID,
		"number", alloc.Formatted,
		"order_id", p.OrderID,
	)
	return nil
}

// GetByID returns the production order.
func (s *Service) GetByID(ctx context.Context, productionOrderID id.ID) (*ProductionOrder, error) {
	p, err := s.repo.GetByID(ctx, productionOrderID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(EntityName, productionOrderID.String())
		}
		return nil, err
	}
	return p, nil
}

// GetDetails returns the production order with its order and batches.
func (s *Service) GetDetails(ctx context.Context, productionOrderID id.ID) (*Details, error) {
	p, err := s.GetByID(ctx, productionOrderID)
	if err != nil {
		return nil, err
	}

	d := &Details{ProductionOrder: p}
	if p.OrderID != nil {
		o, err := s.orders.GetByID(ctx, *p.OrderID)
		if err != nil {
			return nil, fmt.Errorf("load order of production order %s: %w", p.Number, err)
		}
		d.Order = o
	}

	d.Batches, err = s.batches.ListByProductionOrder(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load batches of production order %s: %w", p.Number, err)
	}
	if d.Batches == nil {
		d.Batches = []*batch.Batch{}
	}
	return d, nil
}

// List returns production orders matching filter, newest first.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*ProductionOrder], error) {
	return s.repo.List(ctx, filter.Normalize())
}

// Exists checks if a production order exists.
func (s *Service) Exists(ctx context.Context, productionOrderID id.ID) (bool, error) {
	return s.repo.Exists(ctx, productionOrderID)
}

// Update changes the editable fields. The number is never touched.
func (s *Service) Update(ctx context.Context, productionOrderID id.ID, ch Changes) (*ProductionOrder, error) {
	var updated *ProductionOrder
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context, _ tx.Tx) error {
		p, err := s.GetByID(ctx, productionOrderID)
		if err != nil {
			return err
		}
		p.Apply(ch)
		if err := p.Validate(ctx); err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, domain.BeforeUpdate, p); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update production order %s: %w", p.Number, err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a production order. Before-delete hooks refuse the delete
// while batches reference it.
func (s *Service) Delete(ctx context.Context, productionOrderID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context, _ tx.Tx) error {
		p, err := s.GetByID(ctx, productionOrderID)
		if err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, domain.BeforeDelete, p); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, productionOrderID); err != nil {
			return fmt.Errorf("delete production order %s: %w", p.Number, err)
		}
		s.log.WithContext(ctx).Infow("production order deleted",
			"production_order_id", productionOrderID,
			"number", p.Number,
		)
		return nil
	})
}
