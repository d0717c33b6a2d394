package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ikkim/catalogo-backend/config"
	"github.com/ikkim/catalogo-backend/internal/app/service"
	apperrors "github.com/ikkim/catalogo-backend/internal/errors"
	"github.com/ikkim/catalogo-backend/internal/middleware"
	"github.com/ikkim/catalogo-backend/internal/storage"
)

// DebugController serves diagnostics; the router only mounts it outside
// production.
type DebugController struct {
	catalogService service.CatalogService
	storage        storage.ObjectStorage
	cfg            *config.Config
}

func NewDebugController(
	catalogService service.CatalogService,
	objectStorage storage.ObjectStorage,
	cfg *config.Config,
) *DebugController {
	return &DebugController{
		catalogService: catalogService,
		storage:        objectStorage,
		cfg:            cfg,
	}
}

// Search inspects a category and its products
// GET /api/debug/search?category=
func (ctrl *DebugController) Search(c *gin.Context) {
	slug := strings.TrimSpace(c.Query("category"))
	if slug == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Falta el parámetro category")
		return
	}

	inspection, err := ctrl.catalogService.InspectCategory(slug)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			apperrors.NotFound(c, apperrors.CategoryNotFound, "Categoría no encontrada")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "debug search")
		return
	}
	c.JSON(http.StatusOK, inspection)
}

// Product compares the public record of a slug with its stored row
// GET /api/debug/product?slug=
func (ctrl *DebugController) Product(c *gin.Context) {
	slug := strings.TrimSpace(c.Query("slug"))
	if slug == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Falta el parámetro slug")
		return
	}

	inspection, err := ctrl.catalogService.InspectProduct(slug)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "debug product")
		return
	}
	c.JSON(http.StatusOK, inspection)
}

// StorageHealth uploads and removes a ping object
// GET /api/debug/storage/health
func (ctrl *DebugController) StorageHealth(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	key := "debug/ping-" + uuid.NewString() + ".txt"
	body := "ok"
	result := gin.H{
		"backend": ctrl.storage.Name(),
		"key":     key,
		"env":     ctrl.envFlags(),
		"role":    "",
	}
	if role, ok := middleware.GetUserRole(c); ok {
		result["role"] = role
	}

	if err := ctrl.storage.Upload(c.Request.Context(), key, strings.NewReader(body), int64(len(body)), "text/plain"); err != nil {
		log.Error("Storage health upload failed", err)
		result["upload"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, result)
		return
	}
	result["upload"] = "ok"

	if err := ctrl.storage.Remove(c.Request.Context(), key); err != nil {
		log.Warn("Storage health remove failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		result["remove"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, result)
		return
	}
	result["remove"] = "ok"

	c.JSON(http.StatusOK, result)
}

// Env reports which settings are present, never their values
// GET /api/debug/env
func (ctrl *DebugController) Env(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"environment": ctrl.cfg.Server.Environment,
		"env":         ctrl.envFlags(),
	})
}

func (ctrl *DebugController) envFlags() map[string]bool {
	cfg := ctrl.cfg
	return map[string]bool{
		"database":        cfg.Database.Host != "" && cfg.Database.DBName != "",
		"jwt_secret":      cfg.JWT.Secret != "" && cfg.JWT.Secret != "change-me",
		"storage_bucket":  cfg.S3.Bucket != "",
		"storage_keys":    cfg.S3.AccessKeyID != "" && cfg.S3.SecretAccessKey != "",
		"storage_baseurl": cfg.S3.BaseURL != "",
		"redis":           cfg.Redis.Enabled(),
		"smtp":            cfg.SMTP.Enabled(),
		"site_url":        cfg.Site.URL != "",
		"whatsapp_phone":  cfg.Site.WhatsAppPhone != "",
		"utm_ip_salt":     cfg.Tracking.IPSalt != "",
		"admin_emails":    len(cfg.Admin.Emails) > 0,
	}
}
