// Package domain provides core business logic interfaces and types.
package domain

import (
	"context"
	"fmt"

	"prodtrack/internal/core/apperror"
	"prodtrack/internal/core/entity"
	"prodtrack/internal/core/id"
)

// MaxListLimit caps page sizes requested by clients.
const MaxListLimit = 100

// --- Filter & Pagination ---

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search performs case-insensitive substring search on searchable fields
	Search string

	// IDs filters by specific IDs
	IDs []id.ID

	// OrderBy specifies sorting (e.g., "name", "-created_at")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   MaxListLimit,
		OrderBy: "-created_at",
	}
}

// Normalize clamps pagination to the allowed range.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 || f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Repository Interfaces ---

// MasterRepository defines CRUD operations for master-data entities.
// Implementations pick up the active transaction from ctx.
type MasterRepository[T entity.Validatable] interface {
	// Create inserts a new entity
	Create(ctx context.Context, entity T) error

	// GetByID retrieves entity by ID
	GetByID(ctx context.Context, id id.ID) (T, error)

	// Update modifies existing entity
	Update(ctx context.Context, entity T) error

	// Delete physically removes the entity
	Delete(ctx context.Context, id id.ID) error

	// List retrieves entities with filtering and pagination
	List(ctx context.Context, filter ListFilter) (ListResult[T], error)

	// Exists checks if entity with given ID exists
	Exists(ctx context.Context, id id.ID) (bool, error)
}

// --- Hooks ---

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	BeforeCreate HookEvent = "before_create"
	AfterCreate  HookEvent = "after_create"
	BeforeUpdate HookEvent = "before_update"
	BeforeDelete HookEvent = "before_delete"
)

// Hook is a function that runs at specific lifecycle points.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes all hooks for the specified event.
// The first failing hook stops the chain.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

// OnBeforeCreate registers a hook to run before create.
func (r *HookRegistry[T]) OnBeforeCreate(hook Hook[T]) {
	r.On(BeforeCreate, hook)
}

// OnAfterCreate registers a hook to run after create.
func (r *HookRegistry[T]) OnAfterCreate(hook Hook[T]) {
	r.On(AfterCreate, hook)
}

// OnBeforeUpdate registers a hook to run before update.
func (r *HookRegistry[T]) OnBeforeUpdate(hook Hook[T]) {
	r.On(BeforeUpdate, hook)
}

// OnBeforeDelete registers a hook to run before delete.
// Before-delete hooks run inside the deleting transaction.
func (r *HookRegistry[T]) OnBeforeDelete(hook Hook[T]) {
	r.On(BeforeDelete, hook)
}

// Exister reports whether an entity with the given ID exists.
type Exister interface {
	Exists(ctx context.Context, id id.ID) (bool, error)
}

// ReferenceCounter counts rows that reference the entity with the given ID.
type ReferenceCounter func(ctx context.Context, id id.ID) (int64, error)

// RequireExists returns NOT_FOUND for entityName when ex has no entity with entityID.
func RequireExists(ctx context.Context, ex Exister, entityName string, entityID id.ID) error {
	ok, err := ex.Exists(ctx, entityID)
	if err != nil {
		return fmt.Errorf("check %s %s: %w", entityName, entityID, err)
	}
	if !ok {
		return apperror.NewNotFound(entityName, entityID.String())
	}
	return nil
}

// RefuseIfReferenced builds a before-delete hook that fails with HAS_DEPENDENTS
// while count reports referencing rows.
func RefuseIfReferenced[T interface{ GetID() id.ID }](entityName, dependent string, count ReferenceCounter) Hook[T] {
	return func(ctx context.Context, entity T) error {
		n, err := count(ctx, entity.GetID())
		if err != nil {
			return fmt.Errorf("count %s of %s: %w", dependent, entityName, err)
		}
		if n > 0 {
			return apperror.NewHasDependents(entityName, entity.GetID().String(), dependent).
				WithDetail("count", n)
		}
		return nil
	}
}
