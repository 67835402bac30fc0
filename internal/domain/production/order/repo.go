package order

import (
	"context"

	"prodtrack/internal/core/id"
	"prodtrack/internal/domain"
)

// Repository defines the interface for Order persistence.
// List searches the number and the detail text.
type Repository interface {
	domain.MasterRepository[*Order]

	// CountByCustomer counts orders placed by a customer.
	CountByCustomer(ctx context.Context, customerID id.ID) (int64, error)
}
