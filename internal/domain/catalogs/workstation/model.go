// Package workstation provides the WorkStation catalog.
// Work stations are the places a route step is performed at.
package workstation

import (
	"context"
	"strings"
	"unicode/utf8"

	"prodtrack/internal/core/apperror"
	"prodtrack/internal/core/entity"
)

const maxNameLength = 100

// WorkStation is a place on the shop floor.
type WorkStation struct {
	entity.BaseEntity

	// Name is unique across work stations
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
}

// NewWorkStation creates a WorkStation with a generated ID.
func NewWorkStation(name string, description *string) *WorkStation {
	return &WorkStation{
		BaseEntity:  entity.NewBaseEntity(),
		Name:        strings.TrimSpace(name),
		Description: description,
	}
}

// Validate implements entity.Validatable interface.
func (w *WorkStation) Validate(_ context.Context) error {
	if strings.TrimSpace(w.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if utf8.RuneCountInString(w.Name) > maxNameLength {
		return apperror.NewValidation("name is too long").
			WithDetail("field", "name").
			WithDetail("max", maxNameLength)
	}
	return nil
}
