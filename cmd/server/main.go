package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/catalogo-backend/config"
	"github.com/ikkim/catalogo-backend/internal/app/controller"
	"github.com/ikkim/catalogo-backend/internal/app/repository"
	"github.com/ikkim/catalogo-backend/internal/app/service"
	"github.com/ikkim/catalogo-backend/internal/db"
	"github.com/ikkim/catalogo-backend/internal/mailer"
	"github.com/ikkim/catalogo-backend/internal/middleware"
	"github.com/ikkim/catalogo-backend/internal/router"
	"github.com/ikkim/catalogo-backend/internal/scheduler"
	"github.com/ikkim/catalogo-backend/internal/storage"
	"github.com/ikkim/catalogo-backend/pkg/logger"
	redisClient "github.com/ikkim/catalogo-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

// stores backs token revocation and rate limiting.
type stores interface {
	service.TokenBlacklist
	service.RateLimiter
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Server.LogFormat,
		EnableColor: cfg.Server.LogFormat == "console",
	})

	logger.Info("Starting catalog backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis is optional: without it revocation and rate limits live in memory
	var store stores = service.NewMemoryStore()
	if cfg.Redis.Enabled() {
		if err := redisClient.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, using in-memory store", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			store = redisClient.NewStore(redisClient.GetClient())
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Error("Failed to close Redis connection", err)
				}
			}()
		}
	}

	objectStorage := newObjectStorage(cfg)

	// Initialize repositories
	conn := db.GetDB()
	userRepo := repository.NewUserRepository(conn)
	productRepo := repository.NewProductRepository(conn)
	variantRepo := repository.NewVariantRepository(conn)
	imageRepo := repository.NewImageRepository(conn)
	categoryRepo := repository.NewCategoryRepository(conn)
	configRepo := repository.NewCatalogConfigRepository(conn)
	clickRepo := repository.NewClickEventRepository(conn)
	resetRepo := repository.NewPasswordResetRepository(conn)

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		store,
		service.NewAdminPolicy(cfg.Admin.Emails, cfg.Admin.Roles),
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
	)
	passwordResetService := service.NewPasswordResetService(
		resetRepo,
		userRepo,
		mailer.New(cfg.SMTP),
		store,
		cfg.Site.URL,
	)
	catalogService := service.NewCatalogService(
		productRepo,
		variantRepo,
		imageRepo,
		categoryRepo,
		configRepo,
		objectStorage,
		cfg.Catalog.DefaultPerPage,
		cfg.Catalog.MaxPerPage,
	)
	productService := service.NewProductService(conn, productRepo, variantRepo, imageRepo, categoryRepo, configRepo, objectStorage)
	imageService := service.NewImageService(conn, productRepo, variantRepo, imageRepo, objectStorage, cfg.Catalog.MaxUploadBytes)
	importExportService := service.NewImportExportService(conn, productRepo, variantRepo)
	configService := service.NewCatalogConfigService(configRepo)
	trackingService := service.NewTrackingService(clickRepo, configRepo, service.TrackingConfig{
		SiteURL:       cfg.Site.URL,
		WhatsAppPhone: cfg.Site.WhatsAppPhone,
		IPSalt:        cfg.Tracking.IPSalt,
		CookieTTL:     cfg.Tracking.UTMCookieTTL,
	})
	maintenanceService := service.NewMaintenanceService(resetRepo, clickRepo, cfg.Tracking.ClickRetention)

	// Initialize controllers
	secureCookies := cfg.IsProduction()
	var debugController *controller.DebugController
	if !cfg.IsProduction() {
		debugController = controller.NewDebugController(catalogService, objectStorage, cfg)
	}

	r := router.NewRouter(
		controller.NewCatalogController(catalogService),
		controller.NewTrackingController(trackingService, cfg.Tracking.UTMCookieTTL, secureCookies),
		controller.NewSEOController(catalogService, cfg.Site.URL, cfg.IsProduction()),
		controller.NewAuthController(authService, passwordResetService, secureCookies),
		controller.NewProductController(productService),
		controller.NewImageController(imageService),
		controller.NewConfigController(configService),
		controller.NewImportExportController(importExportService),
		debugController,
		middleware.NewAdminGuard(authService, cfg.Admin.SessionTTL),
		store,
		cfg,
	)
	engine := r.Setup()

	// Background maintenance
	maintenanceScheduler := scheduler.NewMaintenanceScheduler(maintenanceService)
	if err := maintenanceScheduler.Start(); err != nil {
		logger.Fatal("Failed to start maintenance scheduler", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
			"storage": objectStorage.Name(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	maintenanceScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}

// newObjectStorage picks S3 when a bucket endpoint or credentials are set,
// and an in-process store otherwise.
func newObjectStorage(cfg *config.Config) storage.ObjectStorage {
	if cfg.S3.Endpoint != "" || (cfg.S3.AccessKeyID != "" && cfg.S3.SecretAccessKey != "") {
		return storage.NewS3Storage(cfg.S3)
	}
	logger.Warn("Object storage not configured, images are kept in memory")
	return storage.NewMemoryStorage(cfg.S3.BaseURL)
}
