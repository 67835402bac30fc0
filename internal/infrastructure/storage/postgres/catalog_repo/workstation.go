package catalog_repo

import (
	"prodtrack/internal/domain/catalogs/workstation"
	"prodtrack/internal/infrastructure/storage/postgres"
)

// WorkStationRepo implements workstation.Repository.
type WorkStationRepo struct {
	*BaseCatalogRepo[*workstation.WorkStation]
}

// NewWorkStationRepo creates a new work station repository.
func NewWorkStationRepo(txm *postgres.TxManager) *WorkStationRepo {
	return &WorkStationRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			"work_stations",
			postgres.ExtractDBColumns[workstation.WorkStation](),
			func() *workstation.WorkStation { return &workstation.WorkStation{} },
		).WithEntityName(workstation.EntityName).WithSearch("name", "description").WithDefaultOrder("name ASC"),
	}
}

var _ workstation.Repository = (*WorkStationRepo)(nil)
