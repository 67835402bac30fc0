package dto

import (
	"github.com/samber/lo"

	"prodtrack/internal/domain/catalogs/customer"
	"prodtrack/internal/domain/catalogs/product"
	"prodtrack/internal/domain/catalogs/route"
	"prodtrack/internal/domain/catalogs/workstation"
)

// --- Customer ---

// CreateCustomerRequest is the request body for creating a customer.
type CreateCustomerRequest struct {
	Name    string  `json:"name" binding:"required,max=255"`
	Address *string `json:"address"`
	City    *string `json:"city" binding:"omitempty,max=100"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
}

// ToEntity converts the request into a Customer.
func (r CreateCustomerRequest) ToEntity() *customer.Customer {
	c := customer.NewCustomer(r.Name)
	c.Address = r.Address
	c.City = r.City
	c.Phone = r.Phone
	return c
}

// UpdateCustomerRequest changes the set fields of a customer.
type UpdateCustomerRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=255"`
	Address *string `json:"address"`
	City    *string `json:"city" binding:"omitempty,max=100"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
}

// ApplyTo copies the set fields onto c.
func (r UpdateCustomerRequest) ApplyTo(c *customer.Customer) *customer.Customer {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Address != nil {
		c.Address = r.Address
	}
	if r.City != nil {
		c.City = r.City
	}
	if r.Phone != nil {
		c.Phone = r.Phone
	}
	c.Touch()
	return c
}

// --- Product ---

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// ToEntity converts the request into a Product.
func (r CreateProductRequest) ToEntity() *product.Product {
	return product.NewProduct(r.Name)
}

// UpdateProductRequest renames a product.
type UpdateProductRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// ApplyTo copies the name onto p.
func (r UpdateProductRequest) ApplyTo(p *product.Product) *product.Product {
	p.Name = r.Name
	p.Touch()
	return p
}

// --- Work station ---

// CreateWorkStationRequest is the request body for creating a work station.
type CreateWorkStationRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description"`
}

// ToEntity converts the request into a WorkStation.
func (r CreateWorkStationRequest) ToEntity() *workstation.WorkStation {
	return workstation.NewWorkStation(r.Name, r.Description)
}

// UpdateWorkStationRequest changes the set fields of a work station.
type UpdateWorkStationRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
}

// ApplyTo copies the set fields onto w.
func (r UpdateWorkStationRequest) ApplyTo(w *workstation.WorkStation) *workstation.WorkStation {
	if r.Name != nil {
		w.Name = *r.Name
	}
	if r.Description != nil {
		w.Description = r.Description
	}
	w.Touch()
	return w
}

// --- Route ---

// RouteStepRequest is one step of a route.
type RouteStepRequest struct {
	StationID string `json:"stationId" binding:"required"`
	Sequence  int    `json:"sequence" binding:"required,min=1"`
}

// CreateRouteRequest is the request body for creating a master route.
type CreateRouteRequest struct {
	Name      string             `json:"name" binding:"required,max=100"`
	ProductID string             `json:"productId" binding:"required"`
	Steps     []RouteStepRequest `json:"steps" binding:"dive"`
}

// ToEntity converts the request into a Route.
func (r CreateRouteRequest) ToEntity() (*route.Route, error) {
	productID, err := ParseID("productId", r.ProductID)
	if err != nil {
		return nil, err
	}
	steps := make([]route.Step, 0, len(r.Steps))
	for _, s := range r.Steps {
		stationID, err := ParseID("steps.stationId", s.StationID)
		if err != nil {
			return nil, err
		}
		steps = append(steps, route.Step{StationID: stationID, Sequence: s.Sequence})
	}
	return route.NewRoute(r.Name, productID, steps), nil
}

// RouteStepResponse is one step of a route in responses.
type RouteStepResponse struct {
	ID        string `json:"id"`
	StationID string `json:"stationId"`
	Sequence  int    `json:"sequence"`
}

// RouteResponse is a master route with its ordered steps.
type RouteResponse struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	ProductID string              `json:"productId"`
	Steps     []RouteStepResponse `json:"steps"`
}

// FromRoute converts a Route into its response.
func FromRoute(r *route.Route) RouteResponse {
	return RouteResponse{
		ID:        r.ID.String(),
		Name:      r.Name,
		ProductID: r.ProductID.String(),
		Steps: lo.Map(r.Steps, func(s route.Step, _ int) RouteStepResponse {
			return RouteStepResponse{
				ID:        s.ID.String(),
				StationID: s.StationID.String(),
				Sequence:  s.Sequence,
			}
		}),
	}
}
