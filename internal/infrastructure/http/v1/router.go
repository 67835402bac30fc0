// Package v1 provides HTTP API version 1.
package v1

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	corenumerator "prodtrack/internal/core/numerator"
	"prodtrack/internal/domain"
	"prodtrack/internal/domain/auth"
	"prodtrack/internal/domain/catalogs/customer"
	"prodtrack/internal/domain/catalogs/product"
	"prodtrack/internal/domain/catalogs/route"
	"prodtrack/internal/domain/catalogs/workstation"
	"prodtrack/internal/domain/production/batch"
	"prodtrack/internal/domain/production/order"
	"prodtrack/internal/domain/production/productionorder"
	"prodtrack/internal/infrastructure/http/v1/dto"
	"prodtrack/internal/infrastructure/http/v1/handlers"
	"prodtrack/internal/infrastructure/http/v1/middleware"
	"prodtrack/internal/infrastructure/storage/postgres"
	"prodtrack/internal/infrastructure/storage/postgres/catalog_repo"
	"prodtrack/internal/infrastructure/storage/postgres/document_repo"
	"prodtrack/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is used for health checks and pool statistics
	Pool *postgres.Pool

	// TxManager scopes every repository to the request transaction
	TxManager *postgres.TxManager

	// Counters reports missing sequence counters on readiness
	Counters *postgres.CounterStore

	// Allocator issues order and production order numbers
	Allocator corenumerator.Allocator

	Logger       *logger.Logger
	JWTValidator middleware.JWTValidator
	AuthService  *auth.Service

	// RequestTimeout bounds every API request; zero disables it
	RequestTimeout time.Duration

	Version string
}

// repositories are shared between services so that hooks and reference
// checks see the same request transaction.
type repositories struct {
	customers        *catalog_repo.CustomerRepo
	products         *catalog_repo.ProductRepo
	stations         *catalog_repo.WorkStationRepo
	routes           *catalog_repo.RouteRepo
	orders           *document_repo.OrderRepo
	productionOrders *document_repo.ProductionOrderRepo
	batches          *document_repo.BatchRepo
}

func newRepositories(txm *postgres.TxManager) repositories {
	return repositories{
		customers:        catalog_repo.NewCustomerRepo(txm),
		products:         catalog_repo.NewProductRepo(txm),
		stations:         catalog_repo.NewWorkStationRepo(txm),
		routes:           catalog_repo.NewRouteRepo(txm),
		orders:           document_repo.NewOrderRepo(txm),
		productionOrders: document_repo.NewProductionOrderRepo(txm),
		batches:          document_repo.NewBatchRepo(txm),
	}
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	registerHealthRoutes(router, cfg)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Timeout(cfg.RequestTimeout))
	{
		public := v1.Group("")

		optional := v1.Group("")
		optional.Use(middleware.OptionalAuth(cfg.JWTValidator))

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerAuthRoutes(public, optional, protected, cfg)

		repos := newRepositories(cfg.TxManager)
		customers := customer.NewService(repos.customers, cfg.TxManager)
		customers.Hooks().OnBeforeDelete(domain.RefuseIfReferenced[*customer.Customer](
			customer.EntityName, "orders", repos.orders.CountByCustomer))

		registerCatalogRoutes(protected, cfg, repos, customers)
		registerProductionRoutes(protected, cfg, repos, customers)
	}

	return router
}

// registerHealthRoutes registers probes. They bypass auth and the request timeout.
func registerHealthRoutes(router *gin.Engine, cfg RouterConfig) {
	hc := handlers.HealthConfig{
		DB:      cfg.Pool,
		Version: cfg.Version,
		Stats: func() postgres.PoolStats {
			return postgres.GetPoolStats(cfg.Pool.Unwrap())
		},
	}
	if cfg.Counters != nil {
		hc.Counters = func(ctx context.Context) ([]corenumerator.Kind, error) {
			return cfg.Counters.Missing(ctx, cfg.TxManager.GetQuerier(ctx), corenumerator.Kinds()...)
		}
	}

	healthHandler := handlers.NewHealthHandler(hc)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}
}

// registerAuthRoutes registers login, registration and the current user.
func registerAuthRoutes(public, optional, protected *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	authHandler := handlers.NewAuthHandler(handlers.NewBaseHandler(), cfg.AuthService)
	authHandler.RegisterRoutes(public, optional, protected)
}

// registerCatalogRoutes registers customers and the production master data:
// products, work stations and routes.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig, repos repositories, customers *customer.Service) {
	baseHandler := handlers.NewBaseHandler()
	production := rg.Group("/production")

	// --- CUSTOMERS ---
	{
		handler := handlers.NewCatalogHandler(baseHandler, handlers.CatalogHandlerConfig[*customer.Customer, dto.CreateCustomerRequest, dto.UpdateCustomerRequest]{
			Service:      customers.MasterService,
			MapCreateDTO: dto.CreateCustomerRequest.ToEntity,
			MapUpdateDTO: dto.UpdateCustomerRequest.ApplyTo,
		})
		RegisterCatalogRoutes(rg.Group("/customers"), handler)
	}

	// --- PRODUCTS ---
	{
		service := product.NewService(repos.products, cfg.TxManager)
		service.Hooks().OnBeforeDelete(domain.RefuseIfReferenced[*product.Product](
			product.EntityName, "routes", repos.routes.CountByProduct))
		service.Hooks().OnBeforeDelete(domain.RefuseIfReferenced[*product.Product](
			product.EntityName, "batches", repos.batches.CountByProduct))

		handler := handlers.NewCatalogHandler(baseHandler, handlers.CatalogHandlerConfig[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]{
			Service:      service.MasterService,
			MapCreateDTO: dto.CreateProductRequest.ToEntity,
			MapUpdateDTO: dto.UpdateProductRequest.ApplyTo,
		})
		RegisterCatalogRoutes(production.Group("/products"), handler)
	}

	// --- WORK STATIONS ---
	{
		service := workstation.NewService(repos.stations, cfg.TxManager)
		service.Hooks().OnBeforeDelete(domain.RefuseIfReferenced[*workstation.WorkStation](
			workstation.EntityName, "routes", repos.routes.CountByStation))

		handler := handlers.NewCatalogHandler(baseHandler, handlers.CatalogHandlerConfig[*workstation.WorkStation, dto.CreateWorkStationRequest, dto.UpdateWorkStationRequest]{
			Service:      service.MasterService,
			MapCreateDTO: dto.CreateWorkStationRequest.ToEntity,
			MapUpdateDTO: dto.UpdateWorkStationRequest.ApplyTo,
		})
		RegisterCatalogRoutes(production.Group("/work-stations"), handler)
	}

	// --- ROUTES ---
	{
		service := route.NewService(repos.routes, cfg.TxManager, repos.products, repos.stations)
		service.Hooks().OnBeforeDelete(domain.RefuseIfReferenced[*route.Route](
			route.EntityName, "batches", repos.batches.CountByRoute))

		handler := handlers.NewRouteHandler(baseHandler, service)
		routes := production.Group("/routes")
		routes.GET("", handler.List)
		routes.POST("", handler.Create)
		routes.GET("/:id", handler.Get)
		routes.DELETE("/:id", handler.Delete)
	}
}

// registerProductionRoutes registers numbered documents and batches.
func registerProductionRoutes(rg *gin.RouterGroup, cfg RouterConfig, repos repositories, customers *customer.Service) {
	baseHandler := handlers.NewBaseHandler()

	// --- ORDERS ---
	orders := order.NewService(repos.orders, cfg.TxManager, cfg.Allocator, customers, cfg.Logger)
	orders.Hooks().OnBeforeDelete(domain.RefuseIfReferenced[*order.Order](
		order.EntityName, "production orders", repos.productionOrders.CountByOrder))
	{
		handler := handlers.NewDocumentHandler(baseHandler, handlers.DocumentHandlerConfig[*order.Order, *order.Details, order.Changes, dto.CreateOrderRequest, dto.UpdateOrderRequest]{
			Service:      orders,
			MapCreateDTO: dto.CreateOrderRequest.ToEntity,
			MapUpdateDTO: dto.UpdateOrderRequest.ToChanges,
		})
		RegisterDocumentRoutes(rg.Group("/orders"), handler)
	}

	// --- PRODUCTION ORDERS ---
	productionOrders := productionorder.NewService(repos.productionOrders, cfg.TxManager, cfg.Allocator, orders, repos.batches, cfg.Logger)
	productionOrders.Hooks().OnBeforeDelete(domain.RefuseIfReferenced[*productionorder.ProductionOrder](
		productionorder.EntityName, "batches", repos.batches.CountByProductionOrder))
	{
		handler := handlers.NewDocumentHandler(baseHandler, handlers.DocumentHandlerConfig[*productionorder.ProductionOrder, *productionorder.Details, productionorder.Changes, dto.CreateProductionOrderRequest, dto.UpdateProductionOrderRequest]{
			Service:      productionOrders,
			MapCreateDTO: dto.CreateProductionOrderRequest.ToEntity,
			MapUpdateDTO: dto.UpdateProductionOrderRequest.ToChanges,
		})
		RegisterDocumentRoutes(rg.Group("/production-orders"), handler)
	}

	// --- BATCHES ---
	{
		service := batch.NewService(repos.batches, cfg.TxManager, batch.References{
			ProductionOrders: productionOrders,
			Products:         repos.products,
			Routes:           repos.routes,
		}, cfg.Logger)

		handler := handlers.NewBatchHandler(baseHandler, service)
		batches := rg.Group("/batches")
		batches.GET("", handler.List)
		batches.POST("", handler.Create)
		batches.GET("/:id", handler.Get)
		batches.PUT("/:id", handler.Update)
		batches.DELETE("/:id", handler.Delete)
	}
}
