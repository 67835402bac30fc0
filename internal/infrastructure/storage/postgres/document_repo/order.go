package document_repo

import (
	"context"

	"prodtrack/internal/core/id"
	"prodtrack/internal/domain/production/order"
	"prodtrack/internal/infrastructure/storage/postgres"
)

// OrderRepo implements order.Repository.
type OrderRepo struct {
	*BaseDocumentRepo[*order.Order]
}

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txm *postgres.TxManager) *OrderRepo {
	base := NewBaseDocumentRepo(
		txm,
		"orders",
		order.EntityName,
		postgres.ExtractDBColumns[order.Order](),
		func() *order.Order { return &order.Order{} },
	)
	base.WithSearch("number", "detail")
	return &OrderRepo{BaseDocumentRepo: base}
}

var _ order.Repository = (*OrderRepo)(nil)

// CountByCustomer counts orders placed by a customer.
func (r *OrderRepo) CountByCustomer(ctx context.Context, customerID id.ID) (int64, error) {
	return r.CountBy(ctx, "customer_id", customerID)
}
