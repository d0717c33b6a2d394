package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalogo-backend/internal/app/service"
	apperrors "github.com/ikkim/catalogo-backend/internal/errors"
	"github.com/ikkim/catalogo-backend/internal/middleware"
)

type ConfigController struct {
	configService service.CatalogConfigService
}

func NewConfigController(configService service.CatalogConfigService) *ConfigController {
	return &ConfigController{
		configService: configService,
	}
}

// Get returns the catalog configuration row
// GET /api/admin/config
func (ctrl *ConfigController) Get(c *gin.Context) {
	cfg, err := ctrl.configService.Get()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to load catalog config", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "catalog config")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"config": cfg,
	})
}

// Update applies a partial update
// PATCH /api/admin/config
func (ctrl *ConfigController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.CatalogConfigUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Los datos de configuración no son válidos")
		return
	}

	cfg, err := ctrl.configService.Update(req)
	switch {
	case err == nil:
		log.Info("Catalog config updated", map[string]interface{}{
			"show_prices":   cfg.ShowPrices,
			"currency_code": cfg.CurrencyCode,
		})
		c.JSON(http.StatusOK, gin.H{
			"config": cfg,
		})
	case errors.Is(err, service.ErrNoFieldsToUpdate):
		apperrors.BadRequest(c, apperrors.ValidationNoFields, "No hay campos para actualizar")
	case errors.Is(err, service.ErrInvalidCurrency):
		apperrors.RespondWithValidationError(c, map[string]string{
			"currency_code": "Código de moneda ISO 4217 inválido",
		})
	default:
		log.Error("Failed to update catalog config", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "catalog config")
	}
}
