package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalogo-backend/config"
	"github.com/ikkim/catalogo-backend/internal/app/controller"
	"github.com/ikkim/catalogo-backend/internal/app/service"
	"github.com/ikkim/catalogo-backend/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	loginAttemptLimit  = 10
	loginAttemptWindow = 15 * time.Minute
)

type Router struct {
	catalogController      *controller.CatalogController
	trackingController     *controller.TrackingController
	seoController          *controller.SEOController
	authController         *controller.AuthController
	productController      *controller.ProductController
	imageController        *controller.ImageController
	configController       *controller.ConfigController
	importExportController *controller.ImportExportController
	debugController        *controller.DebugController
	adminGuard             *middleware.AdminGuard
	limiter                service.RateLimiter
	config                 *config.Config
}

func NewRouter(
	catalogController *controller.CatalogController,
	trackingController *controller.TrackingController,
	seoController *controller.SEOController,
	authController *controller.AuthController,
	productController *controller.ProductController,
	imageController *controller.ImageController,
	configController *controller.ConfigController,
	importExportController *controller.ImportExportController,
	debugController *controller.DebugController,
	adminGuard *middleware.AdminGuard,
	limiter service.RateLimiter,
	cfg *config.Config,
) *Router {
	return &Router{
		catalogController:      catalogController,
		trackingController:     trackingController,
		seoController:          seoController,
		authController:         authController,
		productController:      productController,
		imageController:        imageController,
		configController:       configController,
		importExportController: importExportController,
		debugController:        debugController,
		adminGuard:             adminGuard,
		limiter:                limiter,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)
	middleware.RegisterValidators()

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Catálogo API funcionando",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/sitemap.xml", r.seoController.Sitemap)
	router.GET("/robots.txt", r.seoController.Robots)
	router.GET("/w", r.trackingController.WhatsAppRedirect)

	adminAPI := r.adminGuard.RequireAdmin(middleware.API)
	adminPage := r.adminGuard.RequireAdmin(middleware.Page)

	api := router.Group("/api")
	{
		catalog := api.Group("/catalog")
		{
			catalog.GET("/categories", r.catalogController.ListCategories)
			catalog.GET("/search", r.catalogController.Search)
			catalog.GET("/product/:slug", r.catalogController.GetProduct)
			catalog.GET("/product/:slug/detail", r.catalogController.GetProductDetail)
		}

		api.POST("/utm/persist", r.trackingController.PersistUTM)

		authGroup := api.Group("/admin/auth")
		{
			authGroup.POST("/login",
				middleware.RateLimit(r.limiter, "login", loginAttemptLimit, loginAttemptWindow),
				r.authController.Login,
			)
			authGroup.POST("/logout", r.authController.Logout)
			authGroup.POST("/reset", r.authController.RequestReset)
			authGroup.POST("/reset/confirm", r.authController.ConfirmReset)
		}

		admin := api.Group("/admin", adminAPI)
		{
			admin.GET("/me", r.authController.Me)

			admin.GET("/config", r.configController.Get)
			admin.PATCH("/config", r.configController.Update)

			admin.POST("/categories", r.productController.CreateCategory)
			admin.POST("/import", r.importExportController.Import)

			products := admin.Group("/products")
			{
				products.GET("", r.productController.List)
				products.POST("", r.productController.Create)
				products.GET("/:id", r.productController.Get)
				products.PUT("/:id", r.productController.Update)
				products.DELETE("/:id", r.productController.Delete)
				products.PATCH("/:id/status", r.productController.UpdateStatus)

				products.GET("/:id/images", r.imageController.List)
				products.POST("/:id/images", r.imageController.Upload)
				products.PATCH("/:id/images/:imageId", r.imageController.Update)
				products.DELETE("/:id/images/:imageId", r.imageController.Delete)
			}
		}

		if !r.config.IsProduction() && r.debugController != nil {
			debug := api.Group("/debug", adminAPI)
			{
				debug.GET("/search", r.debugController.Search)
				debug.GET("/product", r.debugController.Product)
				debug.GET("/storage/health", r.debugController.StorageHealth)
				debug.GET("/env", r.debugController.Env)
			}
		}
	}

	pages := router.Group("/admin", adminPage)
	{
		pages.GET("/export", r.importExportController.Export)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
