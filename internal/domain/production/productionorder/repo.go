package productionorder

import (
	"context"

	"prodtrack/internal/core/id"
	"prodtrack/internal/domain"
)

// Repository defines the interface for ProductionOrder persistence.
// List searches the number and the detail text.
type Repository interface {
	domain.MasterRepository[*ProductionOrder]

	// CountByOrder counts production orders linked to a customer order.
	CountByOrder(ctx context.Context, orderID id.ID) (int64, error)
}
