package controller

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalogo-backend/internal/app/service"
	apperrors "github.com/ikkim/catalogo-backend/internal/errors"
	"github.com/ikkim/catalogo-backend/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ImportExportController struct {
	importExportService service.ImportExportService
}

func NewImportExportController(importExportService service.ImportExportService) *ImportExportController {
	return &ImportExportController{
		importExportService: importExportService,
	}
}

// Import loads a CSV or XLSX file
// POST /api/admin/import
func (ctrl *ImportExportController) Import(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	header, err := c.FormFile("file")
	if err != nil {
		apperrors.BadRequest(c, apperrors.UploadMissingFile, "Falta el archivo a importar")
		return
	}

	file, err := header.Open()
	if err != nil {
		log.Error("Failed to open import file", err)
		apperrors.InternalError(c, "No se pudo leer el archivo")
		return
	}
	defer file.Close()

	result, err := ctrl.importExportService.Import(header.Filename, file)
	if err != nil {
		log.Warn("Import rejected", map[string]interface{}{
			"file":  header.Filename,
			"error": err.Error(),
		})
		if errors.Is(err, service.ErrMissingImportColumn) {
			col := strings.TrimPrefix(err.Error(), service.ErrMissingImportColumn.Error()+": ")
			apperrors.BadRequest(c, apperrors.ImportMissingColumn, "Falta la columna obligatoria: "+col)
			return
		}
		apperrors.BadRequest(c, apperrors.ImportInvalidFile, "El archivo debe ser un CSV o XLSX con encabezados válidos")
		return
	}

	log.Info("Import finished", map[string]interface{}{
		"file": header.Filename,
		"ok":   result.OK,
		"fail": result.Fail,
	})
	c.JSON(http.StatusOK, result)
}

// Export downloads the catalog
// GET /admin/export?format=csv|xlsx
func (ctrl *ImportExportController) Export(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	format := c.DefaultQuery("format", "csv")
	var (
		buf         bytes.Buffer
		err         error
		contentType string
	)
	switch format {
	case "csv":
		contentType = "text/csv; charset=utf-8"
		err = ctrl.importExportService.ExportCSV(&buf)
	case "xlsx":
		contentType = xlsxContentType
		err = ctrl.importExportService.ExportXLSX(&buf)
	default:
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Formato inválido: usá csv o xlsx")
		return
	}
	if err != nil {
		log.Error("Export failed", err, map[string]interface{}{
			"format": format,
		})
		apperrors.InternalError(c, "No se pudo generar la exportación")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, service.ExportFileName, format))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
