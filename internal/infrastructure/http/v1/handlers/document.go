package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"prodtrack/internal/core/id"
	"prodtrack/internal/domain"
	"prodtrack/internal/infrastructure/http/v1/dto"
)

// DocumentService is the service surface shared by numbered documents
// (orders and production orders). T is the document, D its detailed view and
// C the set of editable fields.
type DocumentService[T any, D any, C any] interface {
	Create(ctx context.Context, doc T) error
	GetDetails(ctx context.Context, id id.ID) (D, error)
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error)
	Update(ctx context.Context, id id.ID, changes C) (T, error)
	Delete(ctx context.Context, id id.ID) error
}

// DocumentHandler provides generic HTTP handlers for numbered documents.
// The business number is issued by the service on create and is never
// accepted from clients.
type DocumentHandler[T any, D any, C any, CreateDTO any, UpdateDTO any] struct {
	*BaseHandler
	service DocumentService[T, D, C]

	mapCreateDTO func(dto CreateDTO) (T, error)
	mapUpdateDTO func(dto UpdateDTO) (C, error)
}

// DocumentHandlerConfig configures the document handler.
type DocumentHandlerConfig[T any, D any, C any, CreateDTO any, UpdateDTO any] struct {
	Service      DocumentService[T, D, C]
	MapCreateDTO func(dto CreateDTO) (T, error)
	MapUpdateDTO func(dto UpdateDTO) (C, error)
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler[T any, D any, C any, CreateDTO any, UpdateDTO any](
	base *BaseHandler,
	cfg DocumentHandlerConfig[T, D, C, CreateDTO, UpdateDTO],
) *DocumentHandler[T, D, C, CreateDTO, UpdateDTO] {
	return &DocumentHandler[T, D, C, CreateDTO, UpdateDTO]{
		BaseHandler:  base,
		service:      cfg.Service,
		mapCreateDTO: cfg.MapCreateDTO,
		mapUpdateDTO: cfg.MapUpdateDTO,
	}
}

// List handles GET /{entity}
func (h *DocumentHandler[T, D, C, CreateDTO, UpdateDTO]) List(c *gin.Context) {
	var req dto.ListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	result, err := h.service.List(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, dto.Identity[T]))
}

// Get handles GET /{entity}/:id and returns the document with its relations.
func (h *DocumentHandler[T, D, C, CreateDTO, UpdateDTO]) Get(c *gin.Context) {
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}

	details, err := h.service.GetDetails(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, details)
}

// Create handles POST /{entity}
func (h *DocumentHandler[T, D, C, CreateDTO, UpdateDTO]) Create(c *gin.Context) {
	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.mapCreateDTO(req)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc)
}

// Update handles PUT /{entity}/:id
func (h *DocumentHandler[T, D, C, CreateDTO, UpdateDTO]) Update(c *gin.Context) {
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	changes, err := h.mapUpdateDTO(req)
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.Update(c.Request.Context(), docID, changes)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Delete handles DELETE /{entity}/:id
func (h *DocumentHandler[T, D, C, CreateDTO, UpdateDTO]) Delete(c *gin.Context) {
	docID, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
