package route

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"prodtrack/internal/core/apperror"
	"prodtrack/internal/core/id"
	"prodtrack/internal/core/tx"
	"prodtrack/internal/domain"
)

// EntityName is used in errors and dependents checks.
const EntityName = "route"

// Service provides business logic for master routes.
type Service struct {
	repo      Repository
	txManager tx.Manager
	products  domain.Exister
	stations  domain.Exister
	hooks     *domain.HookRegistry[*Route]
}

// NewService creates a new Route service.
func NewService(repo Repository, txm tx.Manager, products, stations domain.Exister) *Service {
	return &Service{
		repo:      repo,
		txManager: txm,
		products:  products,
		stations:  stations,
		hooks:     domain.NewHookRegistry[*Route](),
	}
}

// Hooks returns the hook registry for external registration.
func (s *Service) Hooks() *domain.HookRegistry[*Route] {
	return s.hooks
}

// Create stores a route and its steps. The product and every referenced
// work station must exist.
func (s *Service) Create(ctx context.Context, r *Route) error {
	if err := r.Validate(ctx); err != nil {
		return err
	}
	r.SortSteps()

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context, _ tx.Tx) error {
		if err := domain.RequireExists(ctx, s.products, "product", r.ProductID); err != nil {
			return err
		}

		stationIDs := lo.Uniq(lo.Map(r.Steps, func(step Step, _ int) id.ID {
			return step.StationID
		}))
		for _, stationID := range stationIDs {
			if err := domain.RequireExists(ctx, s.stations, "work station", stationID); err != nil {
				return err
			}
		}

		if err := s.repo.Create(ctx, r); err != nil {
			return fmt.Errorf("create route: %w", err)
		}
		return nil
	})
	return domain.AbortedUnlessApp("create route", err)
}

// GetByID returns the route with its steps ordered by sequence.
func (s *Service) GetByID(ctx context.Context, routeID id.ID) (*Route, error) {
	r, err := s.repo.GetByID(ctx, routeID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(EntityName, routeID.String())
		}
		return nil, err
	}
	r.SortSteps()
	return r, nil
}

// List returns routes with their steps.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Route], error) {
	return s.repo.List(ctx, filter.Normalize())
}

// Exists checks if a route exists.
func (s *Service) Exists(ctx context.Context, routeID id.ID) (bool, error) {
	return s.repo.Exists(ctx, routeID)
}

// Delete removes a route and its steps. Before-delete hooks refuse the
// delete while batches follow the route.
func (s *Service) Delete(ctx context.Context, routeID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context, _ tx.Tx) error {
		r, err := s.GetByID(ctx, routeID)
		if err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, domain.BeforeDelete, r); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, routeID); err != nil {
			return fmt.Errorf("delete route %s: %w", r.Name, err)
		}
		return nil
	})
}
