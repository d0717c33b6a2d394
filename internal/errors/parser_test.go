package errors

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		context  string
		wantCode string
	}{
		{"nil", nil, "", InternalServerError},
		{"record not found", gorm.ErrRecordNotFound, "product", ResourceNotFound},
		{"wrapped not found", fmt.Errorf("find: %w", gorm.ErrRecordNotFound), "image", ResourceNotFound},
		{"pg unique slug", &pgconn.PgError{Code: "23505", ConstraintName: "idx_catalogo_products_slug"}, "create product", ProductSlugExists},
		{"pg unique sku", &pgconn.PgError{Code: "23505", ConstraintName: "idx_catalogo_variants_sku"}, "create product", VariantSKUExists},
		{"pg fk", &pgconn.PgError{Code: "23503"}, "delete product", ResourceConflict},
		{"pg not null", &pgconn.PgError{Code: "23502"}, "create", ValidationRequired},
		{"sqlite unique sku", fmt.Errorf("UNIQUE constraint failed: catalogo_variants.sku"), "create", VariantSKUExists},
		{"sqlite unique slug", fmt.Errorf("UNIQUE constraint failed: catalogo_products.slug"), "create", ProductSlugExists},
		{"other", fmt.Errorf("boom"), "update product", InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, tt.context)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.NotEmpty(t, info.Message)
		})
	}
}

func TestParseError_NotFoundMessage(t *testing.T) {
	assert.Equal(t, "Imagen no encontrada", ParseError(gorm.ErrRecordNotFound, "image").Message)
	assert.Equal(t, "Producto no encontrado", ParseError(gorm.ErrRecordNotFound, "product").Message)
}

func TestResponseHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		respond    func(c *gin.Context)
		wantStatus int
		wantCode   string
	}{
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, "") }, http.StatusUnauthorized, AuthUnauthorized},
		{"forbidden", func(c *gin.Context) { Forbidden(c, "") }, http.StatusForbidden, AuthzForbidden},
		{"not found", func(c *gin.Context) { NotFound(c, ProductNotFound, "x") }, http.StatusNotFound, ProductNotFound},
		{"internal", func(c *gin.Context) { InternalError(c, "") }, http.StatusInternalServerError, InternalServerError},
		{"validation", func(c *gin.Context) { RespondWithValidationError(c, map[string]string{"slug": "inválido"}) }, http.StatusBadRequest, ValidationInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.respond(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
		})
	}
}
