package v1

import (
	"github.com/gin-gonic/gin"
)

// CatalogRouteHandler defines the interface for master-data handlers.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// DocumentRouteHandler defines the interface for numbered document handlers.
// The route set matches catalogs; only the handler semantics differ.
type DocumentRouteHandler interface {
	CatalogRouteHandler
}

// RegisterCatalogRoutes registers standard CRUD routes for a catalog.
//
// Usage:
//
//	service := product.NewService(catalog_repo.NewProductRepo(txm), txm)
//	handler := handlers.NewCatalogHandler(baseHandler, cfg)
//	RegisterCatalogRoutes(production.Group("/products"), handler)
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler) {
	registerCRUD(group, handler)
}

// RegisterDocumentRoutes registers CRUD routes for a numbered document.
// Create issues the business number; clients never send one.
//
// Usage:
//
//	service := order.NewService(repo, txm, allocator, customers, log)
//	handler := handlers.NewDocumentHandler(baseHandler, cfg)
//	RegisterDocumentRoutes(rg.Group("/orders"), handler)
func RegisterDocumentRoutes(group *gin.RouterGroup, handler DocumentRouteHandler) {
	registerCRUD(group, handler)
}

func registerCRUD(group *gin.RouterGroup, handler CatalogRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)
}
