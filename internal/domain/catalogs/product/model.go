// Package product provides the Product catalog.
package product

import (
	"context"
	"strings"
	"unicode/utf8"

	"prodtrack/internal/core/apperror"
	"prodtrack/internal/core/entity"
)

const maxNameLength = 100

// Product is a manufactured item. Routes and batches reference it.
type Product struct {
	entity.BaseEntity

	// Name is unique across products
	Name string `db:"name" json:"name"`
}

// NewProduct creates a Product with a generated ID.
func NewProduct(name string) *Product {
	return &Product{
		BaseEntity: entity.NewBaseEntity(),
		Name:       strings.TrimSpace(name),
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(_ context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if utf8.RuneCountInString(p.Name) > maxNameLength {
		return apperror.NewValidation("name is too long").
			WithDetail("field", "name").
			WithDetail("max", maxNameLength)
	}
	return nil
}
