package document_repo

import (
	"context"

	"prodtrack/internal/core/id"
	"prodtrack/internal/domain/production/productionorder"
	"prodtrack/internal/infrastructure/storage/postgres"
)

// ProductionOrderRepo implements productionorder.Repository.
type ProductionOrderRepo struct {
	*BaseDocumentRepo[*productionorder.ProductionOrder]
}

// NewProductionOrderRepo creates a new production order repository.
func NewProductionOrderRepo(txm *postgres.TxManager) *ProductionOrderRepo {
	base := NewBaseDocumentRepo(
		txm,
		"production_orders",
		productionorder.EntityName,
		postgres.ExtractDBColumns[productionorder.ProductionOrder](),
		func() *productionorder.ProductionOrder { return &productionorder.ProductionOrder{} },
	)
	base.WithSearch("number", "detail")
	return &ProductionOrderRepo{BaseDocumentRepo: base}
}

var _ productionorder.Repository = (*ProductionOrderRepo)(nil)

// CountByOrder counts production orders linked to a customer order.
func (r *ProductionOrderRepo) CountByOrder(ctx context.Context, orderID id.ID) (int64, error) {
	return r.CountBy(ctx, "order_id", orderID)
}
