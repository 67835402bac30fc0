// Package order provides customer orders.
// Every order carries a business number (P-000001) issued when it is created.
package order

import (
	"context"
	"time"

	"prodtrack/internal/core/apperror"
	"prodtrack/internal/core/entity"
	"prodtrack/internal/core/id"
)

// Order is a customer order.
type Order struct {
	entity.BaseEntity

	// Number is the business number, assigned on create and never changed
	Number string `db:"number" json:"number"`

	OrderDate  time.Time `db:"order_date" json:"orderDate"`
	CustomerID id.ID     `db:"customer_id" json:"customerId"`

	EstimatedDelivery *time.Time `db:"estimated_delivery" json:"estimatedDelivery,omitempty"`
	Detail            *string    `db:"detail" json:"detail,omitempty"`
	Notes             *string    `db:"notes" json:"notes,omitempty"`
}

// NewOrder creates an Order dated today. The number is assigned by the service.
func NewOrder(customerID id.ID) *Order {
	base := entity.NewBaseEntity()
	return &Order{
		BaseEntity: base,
		OrderDate:  truncateDay(base.CreatedAt),
		CustomerID: customerID,
	}
}

// Changes holds the editable fields of an order. Nil fields are left as is.
type Changes struct {
	EstimatedDelivery *time.Time
	Detail            *string
	Notes             *string
}

// Apply copies the set fields of ch into o.
func (o *Order) Apply(ch Changes) {
	if ch.EstimatedDelivery != nil {
		d := truncateDay(*ch.EstimatedDelivery)
		o.EstimatedDelivery = &d
	}
	if ch.Detail != nil {
		o.Detail = ch.Detail
	}
	if ch.Notes != nil {
		o.Notes = ch.Notes
	}
	o.Touch()
}

// Validate implements entity.Validatable interface.
func (o *Order) Validate(_ context.Context) error {
	if id.IsNil(o.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	if o.EstimatedDelivery != nil && o.EstimatedDelivery.Before(truncateDay(o.OrderDate)) {
		return apperror.NewValidation("estimated delivery precedes the order date").
			WithDetail("field", "estimatedDelivery")
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
