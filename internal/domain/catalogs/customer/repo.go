package customer

import (
	"prodtrack/internal/domain"
)

// Repository defines the interface for Customer persistence.
type Repository interface {
	domain.MasterRepository[*Customer]
}
