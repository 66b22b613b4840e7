package router

import (
	"github.com/gin-gonic/gin"
	"github.com/taller/backend/internal/infrastructure/auth"
	"github.com/taller/backend/internal/interfaces/http/handler"
	"github.com/taller/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers bundles every HTTP handler the router wires up
type Handlers struct {
	Health      *handler.HealthHandler
	Product     *handler.ProductHandler
	Stock       *handler.StockHandler
	Sale        *handler.SaleHandler
	Customer    *handler.CustomerHandler
	RepairOrder *handler.RepairOrderHandler
	Quote       *handler.QuoteHandler
}

// Setup registers all routes on the engine. Health endpoints stay open;
// everything under /api/v1 requires a valid token.
func Setup(engine *gin.Engine, handlers Handlers, jwtService *auth.JWTService, logger *zap.Logger) {
	engine.GET("/health", handlers.Health.Health)
	engine.GET("/ready", handlers.Health.Ready)

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(jwtService, logger))

	products := api.Group("/products")
	{
		products.POST("", handlers.Product.Create)
		products.GET("", handlers.Product.List)
		products.GET("/:id", handlers.Product.Get)
		products.PUT("/:id", handlers.Product.Update)
		products.PATCH("/:id/status", handlers.Product.ChangeStatus)
		products.GET("/code/:code", handlers.Product.GetByCode)
		products.GET("/:id/movements", handlers.Stock.History)
		products.POST("/:id/stock-audit", handlers.Stock.Audit)
	}

	stock := api.Group("/stock")
	{
		stock.POST("/adjustments", handlers.Stock.Adjust)
		stock.POST("/adjustments/bulk", handlers.Stock.BulkAdjust)
	}

	sales := api.Group("/sales")
	{
		sales.POST("", handlers.Sale.Create)
		sales.GET("", handlers.Sale.List)
		sales.GET("/:id", handlers.Sale.Get)
		sales.PUT("/:id", handlers.Sale.Edit)
		sales.POST("/:id/cancel", handlers.Sale.Cancel)
		sales.POST("/:id/payments", handlers.Sale.RecordPayment)
		sales.GET("/number/:number", handlers.Sale.GetByNumber)
	}

	customers := api.Group("/customers")
	{
		customers.POST("", handlers.Customer.Create)
		customers.GET("", handlers.Customer.List)
		customers.GET("/:id", handlers.Customer.Get)
		customers.PUT("/:id", handlers.Customer.Update)
		customers.DELETE("/:id", handlers.Customer.Deactivate)
	}

	repairOrders := api.Group("/repair-orders")
	{
		repairOrders.POST("", handlers.RepairOrder.Create)
		repairOrders.GET("", handlers.RepairOrder.List)
		repairOrders.GET("/:id", handlers.RepairOrder.Get)
		repairOrders.POST("/:id/diagnosis", handlers.RepairOrder.Diagnose)
		repairOrders.POST("/:id/transition", handlers.RepairOrder.Transition)
		repairOrders.POST("/:id/payments", handlers.RepairOrder.RecordPayment)
	}

	quotes := api.Group("/quotes")
	{
		quotes.POST("", handlers.Quote.Create)
		quotes.GET("", handlers.Quote.List)
		quotes.GET("/:id", handlers.Quote.Get)
		quotes.POST("/:id/send", handlers.Quote.Send)
		quotes.POST("/:id/approve", handlers.Quote.Approve)
		quotes.POST("/:id/reject", handlers.Quote.Reject)
	}
}
