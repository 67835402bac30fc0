package dto

import (
	"prodtrack/internal/core/types"
	"prodtrack/internal/domain/production/batch"
	"prodtrack/internal/domain/production/order"
	"prodtrack/internal/domain/production/productionorder"
)

// --- Order ---

// CreateOrderRequest is the request body for creating a customer order.
// The number is issued by the server.
type CreateOrderRequest struct {
	CustomerID        string  `json:"customerId" binding:"required"`
	EstimatedDelivery *Date   `json:"estimatedDelivery"`
	Detail            *string `json:"detail"`
	Notes             *string `json:"notes"`
}

// ToEntity converts the request into an Order.
func (r CreateOrderRequest) ToEntity() (*order.Order, error) {
	customerID, err := ParseID("customerId", r.CustomerID)
	if err != nil {
		return nil, err
	}
	o := order.NewOrder(customerID)
	o.Apply(order.Changes{
		EstimatedDelivery: r.EstimatedDelivery.Ptr(),
		Detail:            r.Detail,
		Notes:             r.Notes,
	})
	return o, nil
}

// UpdateOrderRequest changes the editable fields of an order.
type UpdateOrderRequest struct {
	EstimatedDelivery *Date   `json:"estimatedDelivery"`
	Detail            *string `json:"detail"`
	Notes             *string `json:"notes"`
}

// ToChanges converts the request into order changes.
func (r UpdateOrderRequest) ToChanges() (order.Changes, error) {
	return order.Changes{
		EstimatedDelivery: r.EstimatedDelivery.Ptr(),
		Detail:            r.Detail,
		Notes:             r.Notes,
	}, nil
}

// --- Production order ---

// CreateProductionOrderRequest is the request body for creating a production order.
type CreateProductionOrderRequest struct {
	OrderID           *string `json:"orderId"`
	EstimatedDelivery *Date   `json:"estimatedDelivery"`
	Detail            *string `json:"detail"`
	Notes             *string `json:"notes"`
}

// ToEntity converts the request into a ProductionOrder.
func (r CreateProductionOrderRequest) ToEntity() (*productionorder.ProductionOrder, error) {
	orderID, err := ParseOptionalID("orderId", r.OrderID)
	if err != nil {
		return nil, err
	}
	p := productionorder.NewProductionOrder(orderID)
	p.Apply(productionorder.Changes{
		EstimatedDelivery: r.EstimatedDelivery.Ptr(),
		Detail:            r.Detail,
		Notes:             r.Notes,
	})
	return p, nil
}

// UpdateProductionOrderRequest changes the editable fields of a production order.
type UpdateProductionOrderRequest struct {
	EstimatedDelivery *Date   `json:"estimatedDelivery"`
	Detail            *string `json:"detail"`
	Notes             *string `json:"notes"`
}

// ToChanges converts the request into production order changes.
func (r UpdateProductionOrderRequest) ToChanges() (productionorder.Changes, error) {
	return productionorder.Changes{
		EstimatedDelivery: r.EstimatedDelivery.Ptr(),
		Detail:            r.Detail,
		Notes:             r.Notes,
	}, nil
}

// --- Batch ---

// CreateBatchRequest is the request body for creating a batch.
type CreateBatchRequest struct {
	ProductionOrderID string          `json:"productionOrderId" binding:"required"`
	ProductID         string          `json:"productId" binding:"required"`
	RouteID           string          `json:"routeId" binding:"required"`
	Status            *int16          `json:"status" binding:"omitempty,min=1,max=3"`
	VisibleNumber     *string         `json:"visibleNumber" binding:"omitempty,max=50"`
	PlannedQuantity   *types.Quantity `json:"plannedQuantity"`
}

// ToEntity converts the request into a Batch.
func (r CreateBatchRequest) ToEntity() (*batch.Batch, error) {
	poID, err := ParseID("productionOrderId", r.ProductionOrderID)
	if err != nil {
		return nil, err
	}
	productID, err := ParseID("productId", r.ProductID)
	if err != nil {
		return nil, err
	}
	routeID, err := ParseID("routeId", r.RouteID)
	if err != nil {
		return nil, err
	}

	b := batch.NewBatch(poID, productID, routeID)
	b.Apply(batch.Changes{
		Status:          statusPtr(r.Status),
		VisibleNumber:   r.VisibleNumber,
		PlannedQuantity: r.PlannedQuantity,
	})
	return b, nil
}

// UpdateBatchRequest changes status, visible number or planned quantity.
type UpdateBatchRequest struct {
	Status          *int16          `json:"status"`
	VisibleNumber   *string         `json:"visibleNumber"`
	PlannedQuantity *types.Quantity `json:"plannedQuantity"`
}

// ToChanges converts the request into batch changes.
// An out of range status is rejected by batch validation.
func (r UpdateBatchRequest) ToChanges() batch.Changes {
	return batch.Changes{
		Status:          statusPtr(r.Status),
		VisibleNumber:   r.VisibleNumber,
		PlannedQuantity: r.PlannedQuantity,
	}
}

func statusPtr(v *int16) *batch.Status {
	if v == nil {
		return nil
	}
	s := batch.Status(*v)
	return &s
}
