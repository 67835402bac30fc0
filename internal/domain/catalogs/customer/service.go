package customer

import (
	"prodtrack/internal/core/tx"
	"prodtrack/internal/domain"
)

// EntityName is used in errors and dependents checks.
const EntityName = "customer"

// Service provides business logic for the Customer catalog.
type Service struct {
	*domain.MasterService[*Customer]
}

// NewService creates a new Customer service.
func NewService(repo Repository, txm tx.Manager) *Service {
	return &Service{
		MasterService: domain.NewMasterService(domain.MasterServiceConfig[*Customer]{
			Repo:       repo,
			TxManager:  txm,
			EntityName: EntityName,
		}),
	}
}
