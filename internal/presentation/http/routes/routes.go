package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/pharmacy-pos-api/internal/config"
	domainRepo "github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos-api/internal/presentation/http/handler"
	"github.com/sangkips/pharmacy-pos-api/internal/presentation/http/middleware"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Catalog   *handler.CatalogHandler
	Customer  *handler.CustomerHandler
	Bill      *handler.BillHandler
	Dashboard *handler.DashboardHandler
	Settings  *handler.SettingsHandler
	Printer   *handler.PrinterHandler
	Barcode   *handler.BarcodeHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	// RateLimiter is optional; Setup creates one from Cfg when nil.
	RateLimiter *middleware.ClientRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.ShopMiddleware())

	rateLimiter := deps.RateLimiter
	if rateLimiter == nil {
		rateLimiter = middleware.NewClientRateLimiter(rateLimiterConfig(&deps.Cfg.RateLimit))
	}
	v1.Use(rateLimiter.Middleware())

	registerCatalogRoutes(v1, h)
	registerCustomerRoutes(v1, h)
	registerBillRoutes(v1, h, deps)

	// Settings
	v1.GET("/settings", h.Settings.GetSettings)
	v1.PUT("/settings", h.Settings.UpdateSettings)

	// Dashboard
	v1.GET("/dashboard", h.Dashboard.GetStats)

	// Barcode enrichment
	v1.GET("/barcode/:upc", h.Barcode.Lookup)

	registerPrinterRoutes(v1, h)

	return router
}

func rateLimiterConfig(cfg *config.RateLimitConfig) middleware.RateLimiterConfig {
	rl := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 && cfg.Duration > 0 {
		rl.RequestsPerSecond = float64(cfg.Requests) / float64(cfg.Duration)
		rl.BurstSize = cfg.Requests
	}
	rl.CleanupInterval = 5 * time.Minute
	rl.EntryTTL = 10 * time.Minute
	return rl
}

func registerCatalogRoutes(v1 *gin.RouterGroup, h *Handlers) {
	medicines := v1.Group("/medicines")
	{
		medicines.GET("", h.Catalog.List)
		medicines.GET("/search", h.Catalog.Search)
		medicines.GET("/expiring", h.Catalog.Expiring)
		medicines.POST("", h.Catalog.Create)
		medicines.GET("/:id", h.Catalog.Get)
		medicines.PUT("/:id", h.Catalog.Update)
		medicines.DELETE("/:id", h.Catalog.Delete)
	}
}

func registerCustomerRoutes(v1 *gin.RouterGroup, h *Handlers) {
	customers := v1.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.GET("/lookup", h.Customer.Lookup)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
	}
}

func registerBillRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	bills := v1.Group("/bills")
	{
		bills.GET("", h.Bill.List)
		// Replays the stored response when an Idempotency-Key is resent
		bills.POST("", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			TTL:  deps.Cfg.Billing.IdempotencyTTL,
		}), h.Bill.Submit)
		bills.GET("/:id", h.Bill.Get)
		bills.GET("/:id/payment", h.Bill.Payment)
		bills.GET("/:id/receipt", h.Bill.Receipt)
	}
}

func registerPrinterRoutes(v1 *gin.RouterGroup, h *Handlers) {
	printerGroup := v1.Group("/printer")
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
		printerGroup.POST("/test", h.Printer.TestPrint)
		printerGroup.POST("/receipt", h.Printer.PrintReceipt)
	}
}
