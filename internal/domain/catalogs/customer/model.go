// Package customer provides the Customer catalog.
// Customers place orders; a customer with orders cannot be deleted.
package customer

import (
	"context"
	"strings"
	"unicode/utf8"

	"prodtrack/internal/core/apperror"
	"prodtrack/internal/core/entity"
)

const (
	maxNameLength  = 255
	maxPhoneLength = 50
)

// Customer is a party that places orders.
type Customer struct {
	entity.BaseEntity

	Name    string  `db:"name" json:"name"`
	Address *string `db:"address" json:"address,omitempty"`
	City    *string `db:"city" json:"city,omitempty"`
	Phone   *string `db:"phone" json:"phone,omitempty"`
}

// NewCustomer creates a Customer with a generated ID.
func NewCustomer(name string) *Customer {
	return &Customer{
		BaseEntity: entity.NewBaseEntity(),
		Name:       strings.TrimSpace(name),
	}
}

// Validate implements entity.Validatable interface.
func (c *Customer) Validate(_ context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if utf8.RuneCountInString(c.Name) > maxNameLength {
		return apperror.NewValidation("name is too long").
			WithDetail("field", "name").
			WithDetail("max", maxNameLength)
	}
	if c.Phone != nil && utf8.RuneCountInString(*c.Phone) > maxPhoneLength {
		return apperror.NewValidation("phone is too long").
			WithDetail("field", "phone").
			WithDetail("max", maxPhoneLength)
	}
	return nil
}
