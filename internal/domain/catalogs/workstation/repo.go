package workstation

import (
	"prodtrack/internal/domain"
)

// Repository defines the interface for WorkStation persistence.
type Repository interface {
	domain.MasterRepository[*WorkStation]
}
