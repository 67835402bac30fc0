// Package productionorder provides production orders (OP).
// A production order may fulfil a customer order and groups the batches
// manufactured for it. Its business number (OP-000001) is issued on create.
package productionorder

import (
	"context"
	"time"

	"prodtrack/internal/core/apperror"
	"prodtrack/internal/core/entity"
	"prodtrack/internal/core/id"
)

// ProductionOrder is a work order for the shop floor.
type ProductionOrder struct {
	entity.BaseEntity

	// Number is the business number, assigned on create and never changed
	Number string `db:"number" json:"number"`

	OrderDate time.Time `db:"order_date" json:"orderDate"`

	// OrderID links the customer order this production order fulfils, if any
	OrderID *id.ID `db:"order_id" json:"orderId,omitempty"`

	EstimatedDelivery *time.Time `db:"estimated_delivery" json:"estimatedDelivery,omitempty"`
	Detail            *string    `db:"detail" json:"detail,omitempty"`
	Notes             *string    `db:"notes" json:"notes,omitempty"`
}

// NewProductionOrder creates a ProductionOrder dated today.
func NewProductionOrder(orderID *id.ID) *ProductionOrder {
	base := entity.NewBaseEntity()
	return &ProductionOrder{
		BaseEntity: base,
		OrderDate:  truncateDay(base.CreatedAt),
		OrderID:    orderID,
	}
}

// Changes holds the editable fields of a production order. Nil fields are left as is.
type Changes struct {
	EstimatedDelivery *time.Time
	Detail            *string
	Notes             *string
}

// Apply copies the set fields of ch into p.
func (p *ProductionOrder) Apply(ch Changes) {
	if ch.EstimatedDelivery != nil {
		d := truncateDay(*ch.EstimatedDelivery)
		p.EstimatedDelivery = &d
	}
	if ch.Detail != nil {
		p.Detail = ch.Detail
	}
	if ch.Notes != nil {
		p.Notes = ch.Notes
	}
	p.Touch()
}

// Validate implements entity.Validatable interface.
func (p *ProductionOrder) Validate(_ context.Context) error {
	if p.OrderID != nil && id.IsNil(*p.OrderID) {
		return apperror.NewValidation("order id is empty").
			WithDetail("field", "orderId")
	}
	if p.EstimatedDelivery != nil && p.EstimatedDelivery.Before(truncateDay(p.OrderDate)) {
		return apperror.NewValidation("estimated delivery precedes the order date").
			WithDetail("field", "estimatedDelivery")
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
