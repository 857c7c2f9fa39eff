package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"stockmed/internal/analytics"
	"stockmed/internal/caching"
	"stockmed/internal/config"
	"stockmed/internal/handlers"
	"stockmed/internal/jobs"
	"stockmed/internal/jobs/background"
	"stockmed/internal/middleware"
	"stockmed/internal/models"
	"stockmed/internal/repositories"
	"stockmed/internal/services"
	"stockmed/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	minioSvc, err := services.NewMinioService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}

	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	categoryRepo := repositories.NewCategoryRepository(pool)
	supplierRepo := repositories.NewSupplierRepository(pool)
	productRepo := repositories.NewProductRepository(pool)

	// Services
	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	userSvc := services.NewUserService(userRepo, categoryRepo, minioSvc)
	categorySvc := services.NewCategoryService(categoryRepo)
	supplierSvc := services.NewSupplierService(supplierRepo)
	productSvc := services.NewProductService(productRepo, categoryRepo, supplierRepo, minioSvc, cacheSvc)
	analyticsSvc := analytics.NewService(productRepo, supplierRepo, categoryRepo, userSvc, cacheSvc)

	// Background jobs
	mailer := services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	dispatcher := jobs.NewAlertDispatcher(analyticsSvc, mailer, cfg.AlertRecipients)
	importer := jobs.NewProductImporter(productRepo, categoryRepo, supplierRepo)
	exporter := jobs.NewProductExporter(productRepo, categoryRepo)

	scheduler, err := background.NewJobScheduler(analyticsSvc, dispatcher, cfg.AlertHour)
	if err != nil {
		log.Fatalf("Failed to initialize job scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop scheduler: %v", err)
		}
	}()

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, userSvc)
	userHandlers := handlers.NewUserHandlers(userSvc)
	categoryHandlers := handlers.NewCategoryHandlers(categorySvc)
	supplierHandlers := handlers.NewSupplierHandlers(supplierSvc)
	productHandlers := handlers.NewProductHandlers(productSvc)
	dashboardHandlers := handlers.NewDashboardHandlers(analyticsSvc)
	jobHandlers := handlers.NewJobHandlers(importer, exporter, dispatcher)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	e := echo.New()
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())

	e.GET("/health", healthHandlers.HealthCheck)
	e.POST("/auth/login", authHandlers.Login)
	e.POST("/auth/register", authHandlers.Register)

	protected := e.Group("/api/v1")
	protected.Use(middleware.JWTMiddleware(authSvc))

	protected.GET("/auth/me", authHandlers.Me)

	// Stock views are visible to every role that can see stock.
	stock := protected.Group("", middleware.RequireCapability(models.Role.CanViewStock))
	stock.GET("/products", productHandlers.ListProducts)
	stock.GET("/products/:id", productHandlers.GetProduct)
	stock.GET("/products/:id/image", productHandlers.GetProductImageURL)
	stock.GET("/categories", categoryHandlers.ListCategories)
	stock.GET("/categories/:id", categoryHandlers.GetCategory)
	stock.GET("/suppliers", supplierHandlers.ListSuppliers)
	stock.GET("/suppliers/:id", supplierHandlers.GetSupplier)

	catalog := protected.Group("", middleware.RequireCapability(models.Role.CanManageCatalog))
	catalog.POST("/products", productHandlers.CreateProduct)
	catalog.PUT("/products/:id", productHandlers.UpdateProduct)
	catalog.DELETE("/products/:id", productHandlers.DeleteProduct)
	catalog.POST("/products/:id/image", productHandlers.UploadProductImage)
	catalog.POST("/products/import", jobHandlers.ImportProducts)
	catalog.GET("/products/export", jobHandlers.ExportProducts)

	catalog.POST("/categories", categoryHandlers.CreateCategory)
	catalog.PUT("/categories/:id", categoryHandlers.UpdateCategory)
	catalog.DELETE("/categories/:id", categoryHandlers.DeleteCategory)

	catalog.POST("/suppliers", supplierHandlers.CreateSupplier)
	catalog.PUT("/suppliers/:id", supplierHandlers.UpdateSupplier)
	catalog.DELETE("/suppliers/:id", supplierHandlers.DeleteSupplier)

	members := protected.Group("", middleware.RequireCapability(models.Role.CanManageMembers))
	members.GET("/users", userHandlers.ListUsers)
	members.POST("/users", userHandlers.CreateUser)
	members.GET("/users/:id", userHandlers.GetUser)
	members.PUT("/users/:id", userHandlers.UpdateUser)
	members.DELETE("/users/:id", userHandlers.DeleteUser)
	members.POST("/users/:id/image", userHandlers.UploadUserProfileImage)
	members.GET("/users/:id/image", userHandlers.GetUserProfileImageURL)

	reports := protected.Group("", middleware.RequireCapability(models.Role.CanViewReports))
	reports.GET("/dashboard", dashboardHandlers.GetDashboard)
	reports.GET("/dashboard/low-stock", dashboardHandlers.GetLowStock)
	reports.GET("/dashboard/near-expiry", dashboardHandlers.GetNearExpiry)
	reports.POST("/alerts/dispatch", jobHandlers.TriggerAlerts)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()
	log.Printf("StockMed server starting on port %s", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}
