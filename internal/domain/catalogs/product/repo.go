package product

import (
	"prodtrack/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.MasterRepository[*Product]
}
