package controller

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalogo-backend/internal/app/service"
	apperrors "github.com/ikkim/catalogo-backend/internal/errors"
	"github.com/ikkim/catalogo-backend/internal/middleware"
	"github.com/ikkim/catalogo-backend/internal/storage"
)

type ImageController struct {
	imageService service.ImageService
}

func NewImageController(imageService service.ImageService) *ImageController {
	return &ImageController{
		imageService: imageService,
	}
}

func respondImageError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, storage.ErrContentTypeNotAllowed):
		apperrors.RespondWithError(c, http.StatusUnsupportedMediaType, apperrors.UploadInvalidFileType,
			"Formato no permitido: usá JPEG, PNG, WebP o AVIF")
	case errors.Is(err, storage.ErrFileTooLarge):
		apperrors.RespondWithError(c, http.StatusRequestEntityTooLarge, apperrors.UploadFileTooLarge,
			"La imagen supera el tamaño máximo de 8 MB")
	case errors.Is(err, service.ErrInvalidPosition):
		apperrors.RespondWithValidationError(c, map[string]string{"position": "La posición debe ser 1 o mayor"})
	case errors.Is(err, service.ErrVariantNotInProduct):
		apperrors.BadRequest(c, apperrors.VariantNotFound, "La variante no pertenece a este producto")
	case errors.Is(err, service.ErrNoFieldsToUpdate):
		apperrors.BadRequest(c, apperrors.ValidationNoFields, "No hay campos para actualizar")
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Producto no encontrado")
	case errors.Is(err, service.ErrImageNotFound):
		apperrors.NotFound(c, apperrors.ImageNotFound, "Imagen no encontrada")
	case errors.Is(err, service.ErrStorageUpload):
		middleware.GetLoggerFromContext(c).Error("Image storage failed", err)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "No se pudo subir la imagen")
	default:
		middleware.GetLoggerFromContext(c).Error("Image operation failed", err, map[string]interface{}{
			"action": action,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, action)
	}
}

// List returns the images of a product
// GET /api/admin/products/:id/images
func (ctrl *ImageController) List(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	images, err := ctrl.imageService.List(productID)
	if err != nil {
		respondImageError(c, err, "list images")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"images": images,
	})
}

// formFile reads the upload from "file", falling back to "image".
func formFile(c *gin.Context) (*multipart.FileHeader, bool) {
	for _, field := range []string{"file", "image"} {
		if header, err := c.FormFile(field); err == nil {
			return header, true
		}
	}
	return nil, false
}

func formBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "on", "1":
		return true
	}
	return false
}

// Upload stores an image and its metadata
// POST /api/admin/products/:id/images
func (ctrl *ImageController) Upload(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	header, ok := formFile(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.UploadMissingFile, "Falta el archivo de imagen")
		return
	}

	upload := service.ImageUpload{
		ProductID:   productID,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Alt:         c.PostForm("alt"),
		IsPrimary:   formBool(c.PostForm("is_primary")),
	}

	if raw := strings.TrimSpace(c.PostForm("position")); raw != "" {
		position, err := strconv.Atoi(raw)
		if err != nil {
			apperrors.RespondWithValidationError(c, map[string]string{"position": "La posición debe ser un número entero"})
			return
		}
		upload.Position = &position
	}
	if raw := strings.TrimSpace(c.PostForm("variant_id")); raw != "" {
		variantID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID de variante inválido")
			return
		}
		id := uint(variantID)
		upload.VariantID = &id
	}

	file, err := header.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "No se pudo leer el archivo")
		return
	}
	defer file.Close()
	upload.Body = file

	image, err := ctrl.imageService.Upload(c.Request.Context(), upload)
	if err != nil {
		respondImageError(c, err, "upload image")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"image": image,
	})
}

// Update patches alt, position or primary flag
// PATCH /api/admin/products/:id/images/:imageId
func (ctrl *ImageController) Update(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	imageID, ok := parseIDParam(c, "imageId")
	if !ok {
		return
	}

	var req service.ImageUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Los datos de la imagen no son válidos")
		return
	}

	image, err := ctrl.imageService.Update(productID, imageID, req)
	if err != nil {
		respondImageError(c, err, "update image")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"image": image,
	})
}

// Delete removes an image
// DELETE /api/admin/products/:id/images/:imageId
func (ctrl *ImageController) Delete(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	imageID, ok := parseIDParam(c, "imageId")
	if !ok {
		return
	}

	if err := ctrl.imageService.Delete(c.Request.Context(), productID, imageID); err != nil {
		respondImageError(c, err, "delete image")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Imagen eliminada",
	})
}
