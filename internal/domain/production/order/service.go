package order

import (
	"context"
	"fmt"

	"prodtrack/internal/core/apperror"
	"prodtrack/internal/core/id"
	"prodtrack/internal/core/numerator"
	"prodtrack/internal/core/tx"
	"prodtrack/internal/domain"
	"prodtrack/internal/domain/catalogs/customer"
	"prodtrack/pkg/logger"
)

// EntityName is used in errors and dependents checks.
const EntityName = "order"

// CustomerLookup resolves the customer an order belongs to.
type CustomerLookup interface {
	domain.Exister
	GetByID(ctx context.Context, id id.ID) (*customer.Customer, error)
}

// Details is an order together with its customer.
type Details struct {
	*Order
	Customer *customer.Customer `json:"customer"`
}

// Service provides business logic for customer orders.
type Service struct {
	repo      Repository
	txManager tx.Manager
	allocator numerator.Allocator
	customers CustomerLookup
	hooks     *domain.HookRegistry[*Order]
	log       *logger.Logger
}

// NewService creates a new Order service.
func NewService(
	repo Repository,
	txm tx.Manager,
	allocator numerator.Allocator,
	customers CustomerLookup,
	log *logger.Logger,
) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		repo:      repo,
		txManager: txm,
		allocator: allocator,
		customers: customers,
		hooks:     domain.NewHookRegistry[*Order](),
		log:       log.WithComponent("order"),
	}
}

// Hooks returns the hook registry for external registration.
func (s *Service) Hooks() *domain.HookRegistry[*Order] {
	return s.hooks
}

// Create issues the next order number and stores the order in one unit of
// work: allocate, check the customer, insert. On any failure nothing is
// stored and the number is not consumed.
func (s *Service) Create(ctx context.Context, o *Order) error {
	if err := o.Validate(ctx); err != nil {
		return err
	}

	alloc, err := domain.CreateNumbered(ctx, s.txManager, s.allocator, numerator.KindOrder, "create order",
		func(ctx context.Context, number string) error {
			if err := domain.RequireExists(ctx, s.customers, customer.EntityName, o.CustomerID); err != nil {
				return err
			}
			o.Number = number
			if err := s.repo.Create(ctx, o); err != nil {
				return fmt.Errorf("insert order %s: %w", number, err)
			}
			return nil
		})
	if err != nil {
		o.Number = ""
		return err
	}

	s.log.WithContext(ctx).Infow("order created",
		"order_id", o.ID,
		"number", alloc.Formatted,
		"customer_id", o.CustomerID,
	)
	return nil
}

// GetByID returns the order.
func (s *Service) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(EntityName, orderID.String())
		}
		return nil, err
	}
	return o, nil
}

// GetDetails returns the order with its customer.
func (s *Service) GetDetails(ctx context.Context, orderID id.ID) (*Details, error) {
	o, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	c, err := s.customers.GetByID(ctx, o.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("load customer of order %s: %w", o.Number, err)
	}
	return &Details{Order: o, Customer: c}, nil
}

// List returns orders matching filter, newest first.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Order], error) {
	return s.repo.List(ctx, filter.Normalize())
}

// Exists checks if an order exists.
func (s *Service) Exists(ctx context.Context, orderID id.ID) (bool, error) {
	return s.repo.Exists(ctx, orderID)
}

// Update changes the editable fields of an order. The number is never touched.
func (s *Service) Update(ctx context.Context, orderID id.ID, ch Changes) (*Order, error) {
	var updated *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context, _ tx.Tx) error {
		o, err := s.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		o.Apply(ch)
		if err := o.Validate(ctx); err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, domain.BeforeUpdate, o); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, o); err != nil {
			return fmt.Errorf("update order %s: %w", o.Number, err)
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an order. Before-delete hooks refuse the delete while
// production orders reference it.
func (s *Service) Delete(ctx context.Context, orderID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context, _ tx.Tx) error {
		o, err := s.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, domain.BeforeDelete, o); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, orderID); err != nil {
			return fmt.Errorf("delete order %s: %w", o.Number, err)
		}
		s.log.WithContext(ctx).Infow("order deleted", "order_id", orderID, "number", o.Number)
		return nil
	})
}
