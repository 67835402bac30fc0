// Package document_repo provides PostgreSQL implementations for production
// documents: customer orders, production orders and batches.
package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"prodtrack/internal/infrastructure/storage/postgres"
	"prodtrack/internal/infrastructure/storage/postgres/catalog_repo"
)

// BaseDocumentRepo adds business-number lookups to the shared table repository.
type BaseDocumentRepo[T any] struct {
	*catalog_repo.BaseCatalogRepo[T]
}

// NewBaseDocumentRepo creates a new base document repository.
// Documents are listed newest first.
func NewBaseDocumentRepo[T any](
	txm *postgres.TxManager,
	tableName string,
	entityName string,
	selectCols []string,
	newFn func() T,
) *BaseDocumentRepo[T] {
	base := catalog_repo.NewBaseCatalogRepo(txm, tableName, selectCols, newFn).
		WithEntityName(entityName).
		WithDefaultOrder("created_at DESC")
	return &BaseDocumentRepo[T]{BaseCatalogRepo: base}
}

// GetByNumber retrieves a document by its business number.
func (r *BaseDocumentRepo[T]) GetByNumber(ctx context.Context, number string) (T, error) {
	q := r.Builder().
		Select(r.Columns()...).
		From(r.TableName()).
		Where(squirrel.Eq{"number": number}).
		Limit(1)
	return r.FindOne(ctx, q, number)
}
