package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalogo-backend/internal/app/service"
	apperrors "github.com/ikkim/catalogo-backend/internal/errors"
	"github.com/ikkim/catalogo-backend/internal/middleware"
)

type CatalogController struct {
	catalogService service.CatalogService
}

func NewCatalogController(catalogService service.CatalogService) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
	}
}

// ListCategories returns every category ordered by name
// GET /api/catalog/categories
func (ctrl *CatalogController) ListCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	categories, err := ctrl.catalogService.ListCategories()
	if err != nil {
		log.Error("Failed to fetch categories", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
	})
}

// Search returns one page of published products
// GET /api/catalog/search?q&category&page&perPage&sort&dir
func (ctrl *CatalogController) Search(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	query := service.SearchQuery{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Page:     queryInt(c, "page"),
		PerPage:  queryInt(c, "perPage"),
		Sort:     c.Query("sort"),
		Dir:      c.Query("dir"),
	}

	result, err := ctrl.catalogService.Search(query)
	if err != nil {
		log.Error("Catalog search failed", err, map[string]interface{}{
			"q":        query.Query,
			"category": query.Category,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "search products")
		return
	}

	log.Debug("Catalog search served", map[string]interface{}{
		"total": result.Total,
		"page":  result.Page,
	})

	c.JSON(http.StatusOK, result)
}

// GetProduct returns the public record of a product
// GET /api/catalog/product/:slug
func (ctrl *CatalogController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	slug := c.Param("slug")

	product, err := ctrl.catalogService.GetPublicProduct(slug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Producto no encontrado")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"slug": slug,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// GetProductDetail returns everything the product page renders
// GET /api/catalog/product/:slug/detail
func (ctrl *CatalogController) GetProductDetail(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	slug := c.Param("slug")

	detail, err := ctrl.catalogService.GetProductDetail(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Producto no encontrado")
			return
		}
		log.Error("Failed to assemble product detail", err, map[string]interface{}{
			"slug": slug,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get product")
		return
	}

	c.JSON(http.StatusOK, detail)
}
