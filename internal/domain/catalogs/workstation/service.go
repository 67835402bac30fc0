package workstation

import (
	"prodtrack/internal/core/tx"
	"prodtrack/internal/domain"
)

// EntityName is used in errors and dependents checks.
const EntityName = "work station"

// Service provides business logic for the WorkStation catalog.
type Service struct {
	*domain.MasterService[*WorkStation]
}

// NewService creates a new WorkStation service.
func NewService(repo Repository, txm tx.Manager) *Service {
	return &Service{
		MasterService: domain.NewMasterService(domain.MasterServiceConfig[*WorkStation]{
			Repo:       repo,
			TxManager:  txm,
			EntityName: EntityName,
		}),
	}
}
