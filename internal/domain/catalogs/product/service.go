package product

import (
	"prodtrack/internal/core/tx"
	"prodtrack/internal/domain"
)

// EntityName is used in errors and dependents checks.
const EntityName = "product"

// Service provides business logic for the Product catalog.
type Service struct {
	*domain.MasterService[*Product]
}

// NewService creates a new Product service.
func NewService(repo Repository, txm tx.Manager) *Service {
	return &Service{
		MasterService: domain.NewMasterService(domain.MasterServiceConfig[*Product]{
			Repo:       repo,
			TxManager:  txm,
			EntityName: EntityName,
		}),
	}
}
