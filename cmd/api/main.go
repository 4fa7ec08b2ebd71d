package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/pharmacy-pos-api/internal/application/service"
	"github.com/sangkips/pharmacy-pos-api/internal/config"
	"github.com/sangkips/pharmacy-pos-api/internal/infrastructure/database"
	"github.com/sangkips/pharmacy-pos-api/internal/infrastructure/repository"
	"github.com/sangkips/pharmacy-pos-api/internal/presentation/http/handler"
	"github.com/sangkips/pharmacy-pos-api/internal/presentation/http/middleware"
	"github.com/sangkips/pharmacy-pos-api/internal/presentation/http/routes"
	"github.com/sangkips/pharmacy-pos-api/pkg/barcode"
	"github.com/sangkips/pharmacy-pos-api/pkg/printer"
	"github.com/sangkips/pharmacy-pos-api/pkg/upi"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.SeedDefaultData(db, cfg); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	billRepo := repository.NewBillRepository(db)
	billingStore := repository.NewBillingStore(db)
	settingsRepo := repository.NewSettingsRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	// Initialize thermal printer
	thermalPrinter, err := printer.New(printer.Config{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
		Timeout: cfg.Printer.Timeout,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize printer: %v", err)
		thermalPrinter = printer.NewNullPrinter()
	}
	defer thermalPrinter.Close()

	// Initialize services
	paymentService := service.NewPaymentService(settingsRepo, billRepo, upi.Payee{
		VPA:      cfg.Payment.PayeeVPA,
		Name:     cfg.Payment.PayeeName,
		Currency: cfg.Payment.Currency,
	})
	billingService := service.NewBillingService(billingStore, paymentService, cfg.Billing.Timeout)
	billService := service.NewBillService(billRepo)
	catalogService := service.NewCatalogService(catalogRepo)
	customerService := service.NewCustomerService(customerRepo)
	settingsService := service.NewSettingsService(settingsRepo)
	dashboardService := service.NewDashboardService(catalogRepo, customerRepo, billRepo, analyticsRepo, cfg.Billing.LowStockThreshold)
	printerService := service.NewPrinterService(thermalPrinter, billRepo, settingsRepo, paymentService, cfg.Printer.Type, cfg.Printer.CharWidth)
	barcodeService := service.NewBarcodeService(barcode.NewClient(cfg.Barcode.APIURL, cfg.Barcode.APIKey, cfg.Barcode.Timeout))

	// Start housekeeping jobs
	maintenanceService := service.NewMaintenanceService(idempotencyRepo, catalogRepo)
	if err := maintenanceService.StartScheduler(); err != nil {
		log.Fatalf("Failed to start maintenance scheduler: %v", err)
	}

	// Initialize handlers
	handlers := &routes.Handlers{
		Catalog:   handler.NewCatalogHandler(catalogService),
		Customer:  handler.NewCustomerHandler(customerService),
		Bill:      handler.NewBillHandler(billingService, billService, paymentService, printerService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Settings:  handler.NewSettingsHandler(settingsService),
		Printer:   handler.NewPrinterHandler(printerService),
		Barcode:   handler.NewBarcodeHandler(barcodeService),
	}

	rateLimiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: float64(cfg.RateLimit.Requests) / float64(max(cfg.RateLimit.Duration, 1)),
		BurstSize:         cfg.RateLimit.Requests,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          10 * time.Minute,
	})
	defer rateLimiter.Close()

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
		log.Printf("Environment: %s, database: %s", cfg.App.Env, cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	maintenanceService.Stop()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
