// Package route provides master routes: the ordered work station steps a
// product goes through.
package route

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"prodtrack/internal/core/apperror"
	"prodtrack/internal/core/entity"
	"prodtrack/internal/core/id"
)

const maxNameLength = 100

// Route is a master route for one product.
type Route struct {
	entity.BaseEntity

	// Name is unique across routes
	Name      string `db:"name" json:"name"`
	ProductID id.ID  `db:"product_id" json:"productId"`

	// Steps are ordered by Sequence
	Steps []Step `db:"-" json:"steps"`
}

// Step is one operation of a route, performed at a work station.
type Step struct {
	ID        id.ID `db:"id" json:"id"`
	RouteID   id.ID `db:"route_id" json:"routeId"`
	StationID id.ID `db:"station_id" json:"stationId"`
	Sequence  int   `db:"sequence" json:"sequence"`
}

// NewRoute creates a Route with a generated ID and attaches steps to it.
func NewRoute(name string, productID id.ID, steps []Step) *Route {
	r := &Route{
		BaseEntity: entity.NewBaseEntity(),
		Name:       strings.TrimSpace(name),
		ProductID:  productID,
	}
	for _, s := range steps {
		r.AddStep(s.StationID, s.Sequence)
	}
	return r
}

// AddStep appends a step bound to this route.
func (r *Route) AddStep(stationID id.ID, sequence int) {
	r.Steps = append(r.Steps, Step{
		ID:        id.New(),
		RouteID:   r.ID,
		StationID: stationID,
		Sequence:  sequence,
	})
}

// SortSteps orders steps by sequence.
func (r *Route) SortSteps() {
	sort.SliceStable(r.Steps, func(i, j int) bool {
		return r.Steps[i].Sequence < r.Steps[j].Sequence
	})
}

// Validate implements entity.Validatable interface.
func (r *Route) Validate(_ context.Context) error {
	if strings.TrimSpace(r.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if utf8.RuneCountInString(r.Name) > maxNameLength {
		return apperror.NewValidation("name is too long").
			WithDetail("field", "name").
			WithDetail("max", maxNameLength)
	}
	if id.IsNil(r.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}

	seen := make(map[int]struct{}, len(r.Steps))
	for i, s := range r.Steps {
		if id.IsNil(s.StationID) {
			return apperror.NewValidation("step work station is required").
				WithDetail("field", "steps").
				WithDetail("index", i)
		}
		if s.Sequence < 1 {
			return apperror.NewValidation("step sequence must be at least 1").
				WithDetail("field", "steps").
				WithDetail("index", i)
		}
		if _, dup := seen[s.Sequence]; dup {
			return apperror.NewValidation("step sequence is repeated").
				WithDetail("field", "steps").
				WithDetail("sequence", s.Sequence)
		}
		seen[s.Sequence] = struct{}{}
	}
	return nil
}
