package domain

import (
	"context"
	"fmt"

	"prodtrack/internal/core/apperror"
	"prodtrack/internal/core/entity"
	"prodtrack/internal/core/id"
	"prodtrack/internal/core/tx"
	"prodtrack/pkg/logger"
)

// MasterService provides business logic shared by master-data entities
// (customers, products, work stations).
type MasterService[T entity.Validatable] struct {
	repo      MasterRepository[T]
	txManager tx.Manager
	hooks     *HookRegistry[T]

	// entityName for error messages
	entityName string
}

// MasterServiceConfig configures the master-data service.
type MasterServiceConfig[T entity.Validatable] struct {
	Repo       MasterRepository[T]
	TxManager  tx.Manager
	EntityName string
}

// NewMasterService creates a new master-data service.
func NewMasterService[T entity.Validatable](cfg MasterServiceConfig[T]) *MasterService[T] {
	return &MasterService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
	}
}

// Hooks returns the hook registry for external registration.
func (s *MasterService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// EntityName returns the name used in error messages.
func (s *MasterService[T]) EntityName() string {
	return s.entityName
}

func (s *MasterService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	// If entity already returns structured AppError, keep it.
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *MasterService[T]) normalizeGetErr(err error, entityID any) error {
	if err == nil {
		return nil
	}
	// Preserve existing AppError, but ensure not-found is mapped to the correct entity name.
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, entityID)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", entityID)
}

// Create creates a new entity.
func (s *MasterService[T]) Create(ctx context.Context, entity T) error {
	if err := entity.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	if err := s.hooks.Run(ctx, BeforeCreate, entity); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context, _ tx.Tx) error {
		if err := s.repo.Create(ctx, entity); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// After-create hooks run outside the transaction; the entity is already stored.
	if err := s.hooks.Run(ctx, AfterCreate, entity); err != nil {
		logger.Warn(ctx, "after-create hook failed", "entity", s.entityName, "error", err)
	}

	return nil
}

// GetByID retrieves entity by ID.
func (s *MasterService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	entity, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return entity, s.normalizeGetErr(err, entityID.String())
	}
	return entity, nil
}

// Update updates an existing entity.
func (s *MasterService[T]) Update(ctx context.Context, entity T) error {
	if err := entity.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	if err := s.hooks.Run(ctx, BeforeUpdate, entity); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context, _ tx.Tx) error {
		if err := s.repo.Update(ctx, entity); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return nil
	})
}

// Delete physically removes the entity.
// Before-delete hooks (dependents checks) run in the same transaction.
func (s *MasterService[T]) Delete(ctx context.Context, entityID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context, _ tx.Tx) error {
		entity, err := s.repo.GetByID(ctx, entityID)
		if err != nil {
			return s.normalizeGetErr(err, entityID.String())
		}

		if err := s.hooks.Run(ctx, BeforeDelete, entity); err != nil {
			return err
		}

		if err := s.repo.Delete(ctx, entityID); err != nil {
			return fmt.Errorf("delete %s: %w", s.entityName, err)
		}
		return nil
	})
}

// List retrieves entities with filtering.
func (s *MasterService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	return s.repo.List(ctx, filter.Normalize())
}

// Exists checks if entity exists.
func (s *MasterService[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return s.repo.Exists(ctx, entityID)
}

// RequireExists returns NOT_FOUND when the entity is missing.
func (s *MasterService[T]) RequireExists(ctx context.Context, entityID id.ID) error {
	return RequireExists(ctx, s.repo, s.entityName, entityID)
}

// AbortedUnlessApp keeps structured errors and turns anything else raised
// inside a rolled back unit of work into TRANSACTION_ABORTED.
func AbortedUnlessApp(operation string, err error) error {
	if err == nil || apperror.IsAppError(err) {
		return err
	}
	return apperror.NewTransactionAborted(operation, err)
}
