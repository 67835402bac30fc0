package document_repo

import (
	"context"
	"strconv"

	"github.com/Masterminds/squirrel"

	"prodtrack/internal/core/id"
	"prodtrack/internal/domain/production/batch"
	"prodtrack/internal/infrastructure/storage/postgres"
	"prodtrack/internal/infrastructure/storage/postgres/catalog_repo"
)

// BatchRepo implements batch.Repository.
type BatchRepo struct {
	*catalog_repo.BaseCatalogRepo[*batch.Batch]
}

// NewBatchRepo creates a new batch repository.
func NewBatchRepo(txm *postgres.TxManager) *BatchRepo {
	base := catalog_repo.NewBaseCatalogRepo(
		txm,
		"batches",
		postgres.ExtractDBColumns[batch.Batch](),
		func() *batch.Batch { return &batch.Batch{} },
	).
		WithEntityName(batch.EntityName).
		WithSearchFunc(batchSearch)
	return &BatchRepo{BaseCatalogRepo: base}
}

var _ batch.Repository = (*BatchRepo)(nil)

// batchSearch matches the visible number; a numeric term also matches the status code.
func batchSearch(term string) squirrel.Sqlizer {
	cond := squirrel.Or{squirrel.ILike{"visible_number": "%" + term + "%"}}
	if n, err := strconv.ParseInt(term, 10, 16); err == nil {
		cond = append(cond, squirrel.Eq{"status": int16(n)})
	}
	return cond
}

// ListByProductionOrder returns the batches of a production order, oldest first.
func (r *BatchRepo) ListByProductionOrder(ctx context.Context, productionOrderID id.ID) ([]*batch.Batch, error) {
	items, err := r.FindAll(ctx, squirrel.Eq{"production_order_id": productionOrderID}, "created_at ASC, id ASC")
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*batch.Batch{}
	}
	return items, nil
}

// CountByProductionOrder counts the batches of a production order.
func (r *BatchRepo) CountByProductionOrder(ctx context.Context, productionOrderID id.ID) (int64, error) {
	return r.CountBy(ctx, "production_order_id", productionOrderID)
}

// CountByProduct counts batches of a product.
func (r *BatchRepo) CountByProduct(ctx context.Context, productID id.ID) (int64, error) {
	return r.CountBy(ctx, "product_id", productID)
}

// CountByRoute counts batches following a route.
func (r *BatchRepo) CountByRoute(ctx context.Context, routeID id.ID) (int64, error) {
	return r.CountBy(ctx, "route_id", routeID)
}
