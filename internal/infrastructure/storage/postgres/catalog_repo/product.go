package catalog_repo

import (
	"prodtrack/internal/domain/catalogs/product"
	"prodtrack/internal/infrastructure/storage/postgres"
)

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			"products",
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		).WithEntityName(product.EntityName).WithSearch("name").WithDefaultOrder("name ASC"),
	}
}

var _ product.Repository = (*ProductRepo)(nil)
