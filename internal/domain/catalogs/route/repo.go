package route

import (
	"context"

	"prodtrack/internal/core/id"
	"prodtrack/internal/domain"
)

// Repository defines the interface for Route persistence.
// Create and GetByID handle the route together with its steps.
type Repository interface {
	Create(ctx context.Context, r *Route) error
	GetByID(ctx context.Context, id id.ID) (*Route, error)
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Route], error)
	Exists(ctx context.Context, id id.ID) (bool, error)

	// Delete removes the route; its steps go with it.
	Delete(ctx context.Context, id id.ID) error

	// CountByProduct counts routes of a product.
	CountByProduct(ctx context.Context, productID id.ID) (int64, error)

	// CountByStation counts route steps performed at a work station.
	CountByStation(ctx context.Context, stationID id.ID) (int64, error)
}
