package catalog_repo

import (
	"prodtrack/internal/domain/catalogs/customer"
	"prodtrack/internal/infrastructure/storage/postgres"
)

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	*BaseCatalogRepo[*customer.Customer]
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txm *postgres.TxManager) *CustomerRepo {
	base := NewBaseCatalogRepo(
		txm,
		"customers",
		postgres.ExtractDBColumns[customer.Customer](),
		func() *customer.Customer { return &customer.Customer{} },
	).
		WithEntityName(customer.EntityName).
		WithSearch("name", "city", "phone").
		WithDefaultOrder("name ASC")

	return &CustomerRepo{BaseCatalogRepo: base}
}

var _ customer.Repository = (*CustomerRepo)(nil)
