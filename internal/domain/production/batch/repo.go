package batch

import (
	"context"

	"prodtrack/internal/core/id"
	"prodtrack/internal/domain"
)

// Repository defines the interface for Batch persistence.
//
// List searches the visible number; a numeric search term also matches the
// status. Results are ordered newest first.
type Repository interface {
	domain.MasterRepository[*Batch]

	// ListByProductionOrder returns the batches of a production order.
	ListByProductionOrder(ctx context.Context, productionOrderID id.ID) ([]*Batch, error)

	// CountByProductionOrder counts the batches of a production order.
	CountByProductionOrder(ctx context.Context, productionOrderID id.ID) (int64, error)

	// CountByProduct counts batches of a product.
	CountByProduct(ctx context.Context, productID id.ID) (int64, error)

	// CountByRoute counts batches following a route.
	CountByRoute(ctx context.Context, routeID id.ID) (int64, error)
}
