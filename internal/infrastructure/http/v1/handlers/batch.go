package handlers

import (
	"github.com/gin-gonic/gin"

	"prodtrack/internal/domain/production/batch"
	"prodtrack/internal/infrastructure/http/v1/dto"
)

// BatchHandler handles production batch endpoints.
type BatchHandler struct {
	*BaseHandler
	service *batch.Service
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(base *BaseHandler, service *batch.Service) *BatchHandler {
	return &BatchHandler{BaseHandler: base, service: service}
}

// List handles GET /batches?page=&per_page=&search=
// A numeric search term also matches the batch status.
func (h *BatchHandler) List(c *gin.Context) {
	var req dto.PageRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := req.ToFilter()
	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewPageResponse(req, result, dto.Identity[*batch.Batch]))
}

// Get handles GET /batches/:id
func (h *BatchHandler) Get(c *gin.Context) {
	batchID, ok := h.ParamID(c)
	if !ok {
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), batchID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, b)
}

// Create handles POST /batches
func (h *BatchHandler) Create(c *gin.Context) {
	var req dto.CreateBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), b); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, b)
}

// Update handles PUT /batches/:id
func (h *BatchHandler) Update(c *gin.Context) {
	batchID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req dto.UpdateBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b, err := h.service.Update(c.Request.Context(), batchID, req.ToChanges())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, b)
}

// Delete handles DELETE /batches/:id
func (h *BatchHandler) Delete(c *gin.Context) {
	batchID, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), batchID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
