package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalogo-backend/internal/app/service"
	apperrors "github.com/ikkim/catalogo-backend/internal/errors"
	"github.com/ikkim/catalogo-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"omitempty,slug"`
}

// respondProductError maps product service errors to HTTP answers.
func respondProductError(c *gin.Context, err error, action string) {
	var fieldErr *service.FieldError
	switch {
	case errors.As(err, &fieldErr):
		apperrors.RespondWithValidationError(c, map[string]string{fieldErr.Field: fieldErr.Message})
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Producto no encontrado")
	case errors.Is(err, service.ErrProductSlugExists):
		apperrors.Conflict(c, apperrors.ProductSlugExists, "Ya existe un producto con ese slug")
	case errors.Is(err, service.ErrCategorySlugExists):
		apperrors.Conflict(c, apperrors.ResourceAlreadyExists, "Ya existe una categoría con ese slug")
	case errors.Is(err, service.ErrInvalidStatus):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Estado inválido: usá draft, published o archived")
	default:
		middleware.GetLoggerFromContext(c).Error("Product operation failed", err, map[string]interface{}{
			"action": action,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, action)
	}
}

// List returns the admin product table
// GET /api/admin/products
func (ctrl *ProductController) List(c *gin.Context) {
	rows, err := ctrl.productService.List()
	if err != nil {
		respondProductError(c, err, "list products")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"products": rows,
		"count":    len(rows),
	})
}

// Get returns one product with variants and categories
// GET /api/admin/products/:id
func (ctrl *ProductController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := ctrl.productService.Get(id)
	if err != nil {
		respondProductError(c, err, "get product")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Create creates a product with its variants
// POST /api/admin/products
func (ctrl *ProductController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input service.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Warn("Invalid product creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Los datos del producto no son válidos")
		return
	}

	userID, _ := middleware.GetUserID(c)
	detail, err := ctrl.productService.Create(input, userID)
	if err != nil {
		respondProductError(c, err, "create product")
		return
	}

	log.Info("Product created via admin", map[string]interface{}{
		"product_id": detail.Product.ID,
		"user_id":    userID,
	})
	c.JSON(http.StatusCreated, detail)
}

// Update overwrites a product, its variants and categories
// PUT /api/admin/products/:id
func (ctrl *ProductController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input service.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Warn("Invalid product update request", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Los datos del producto no son válidos")
		return
	}

	detail, err := ctrl.productService.Update(id, input)
	if err != nil {
		respondProductError(c, err, "update product")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdateStatus changes only the publication status
// PATCH /api/admin/products/:id/status
func (ctrl *ProductController) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Falta el estado")
		return
	}

	if err := ctrl.productService.UpdateStatus(id, req.Status); err != nil {
		respondProductError(c, err, "update product status")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":     id,
		"status": req.Status,
	})
}

// Delete removes a product and everything attached to it
// DELETE /api/admin/products/:id
func (ctrl *ProductController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.Delete(c.Request.Context(), id); err != nil {
		respondProductError(c, err, "delete product")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Producto eliminado",
	})
}

// CreateCategory adds a category
// POST /api/admin/categories
func (ctrl *ProductController) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "La categoría necesita un nombre y un slug válido")
		return
	}

	category, err := ctrl.productService.CreateCategory(req.Name, req.Slug)
	if err != nil {
		respondProductError(c, err, "create category")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"category": category,
	})
}
