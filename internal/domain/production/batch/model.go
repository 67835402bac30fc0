// Package batch provides production batches (lots).
// A batch belongs to a production order and follows a product's route.
package batch

import (
	"context"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"prodtrack/internal/core/apperror"
	"prodtrack/internal/core/entity"
	"prodtrack/internal/core/id"
	"prodtrack/internal/core/types"
)

const maxVisibleNumberLength = 50

// Status is the shop floor state of a batch.
type Status int16

const (
	StatusWaiting   Status = 1 // waiting to start
	StatusInProcess Status = 2
	StatusReleased  Status = 3
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return s >= StatusWaiting && s <= StatusReleased
}

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusInProcess:
		return "in_process"
	case StatusReleased:
		return "released"
	}
	return "unknown"
}

// Batch is a production lot.
type Batch struct {
	entity.BaseEntity

	// VisibleNumber is printed on labels and QR codes
	VisibleNumber *string `db:"visible_number" json:"visibleNumber,omitempty"`
	Status        Status  `db:"status" json:"status"`

	ProductionOrderID id.ID `db:"production_order_id" json:"productionOrderId"`
	ProductID         id.ID `db:"product_id" json:"productId"`
	RouteID           id.ID `db:"route_id" json:"routeId"`

	PlannedQuantity types.Quantity `db:"planned_quantity" json:"plannedQuantity"`
}

// NewBatch creates a waiting Batch.
func NewBatch(productionOrderID, productID, routeID id.ID) *Batch {
	return &Batch{
		BaseEntity:        entity.NewBaseEntity(),
		Status:            StatusWaiting,
		ProductionOrderID: productionOrderID,
		ProductID:         productID,
		RouteID:           routeID,
		PlannedQuantity:   decimal.Zero,
	}
}

// Changes holds the editable fields of a batch. Nil fields are left as is.
type Changes struct {
	Status          *Status
	VisibleNumber   *string
	PlannedQuantity *types.Quantity
}

// Apply copies the set fields of ch into b.
func (b *Batch) Apply(ch Changes) {
	if ch.Status != nil {
		b.Status = *ch.Status
	}
	if ch.VisibleNumber != nil {
		b.VisibleNumber = ch.VisibleNumber
	}
	if ch.PlannedQuantity != nil {
		b.PlannedQuantity = types.NormalizeQuantity(*ch.PlannedQuantity)
	}
	b.Touch()
}

// Validate implements entity.Validatable interface.
func (b *Batch) Validate(_ context.Context) error {
	if !b.Status.IsValid() {
		return apperror.NewValidation("status must be 1 (waiting), 2 (in process) or 3 (released)").
			WithDetail("field", "status").
			WithDetail("value", int(b.Status))
	}
	if b.VisibleNumber != nil && utf8.RuneCountInString(*b.VisibleNumber) > maxVisibleNumberLength {
		return apperror.NewValidation("visible number is too long").
			WithDetail("field", "visibleNumber").
			WithDetail("max", maxVisibleNumberLength)
	}
	refs := []struct {
		field string
		id    id.ID
	}{
		{"productionOrderId", b.ProductionOrderID},
		{"productId", b.ProductID},
		{"routeId", b.RouteID},
	}
	for _, ref := range refs {
		if id.IsNil(ref.id) {
			return apperror.NewValidation(ref.field + " is required").
				WithDetail("field", ref.field)
		}
	}
	if b.PlannedQuantity.IsNegative() {
		return apperror.NewValidation("planned quantity cannot be negative").
			WithDetail("field", "plannedQuantity")
	}
	return nil
}
