package handlers

import (
	"github.com/gin-gonic/gin"

	"prodtrack/internal/domain/catalogs/route"
	"prodtrack/internal/infrastructure/http/v1/dto"
)

// RouteHandler handles master route endpoints.
type RouteHandler struct {
	*BaseHandler
	service *route.Service
}

// NewRouteHandler creates a new route handler.
func NewRouteHandler(base *BaseHandler, service *route.Service) *RouteHandler {
	return &RouteHandler{BaseHandler: base, service: service}
}

// List handles GET /production/routes
func (h *RouteHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	result, err := h.service.List(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, dto.FromRoute))
}

// Get handles GET /production/routes/:id
func (h *RouteHandler) Get(c *gin.Context) {
	routeID, ok := h.ParamID(c)
	if !ok {
		return
	}

	r, err := h.service.GetByID(c.Request.Context(), routeID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromRoute(r))
}

// Create handles POST /production/routes
func (h *RouteHandler) Create(c *gin.Context) {
	var req dto.CreateRouteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	r, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), r); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromRoute(r))
}

// Delete handles DELETE /production/routes/:id
func (h *RouteHandler) Delete(c *gin.Context) {
	routeID, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), routeID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
