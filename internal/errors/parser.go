package errors

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// postgres SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// ErrorInfo is a classified error ready to be returned to the client.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError classifies database errors into a code and a user-facing
// message. Postgres errors are matched by SQLSTATE; sqlite errors by text.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Error interno del servidor"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: getNotFoundMessage(context)}
	}

	detail := strings.ToLower(err.Error())

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		detail = strings.ToLower(pgErr.ConstraintName + " " + pgErr.Detail + " " + pgErr.Message)
		switch pgErr.Code {
		case pgUniqueViolation:
			return parseDuplicateKeyError(detail)
		case pgForeignKeyViolation:
			return ErrorInfo{Code: ResourceConflict, Message: "Hay datos relacionados que impiden la operación"}
		case pgNotNullViolation:
			return ErrorInfo{Code: ValidationRequired, Message: "Falta un campo obligatorio"}
		case pgCheckViolation:
			return ErrorInfo{Code: ValidationInvalidInput, Message: "Valor fuera de rango"}
		}
	}

	switch {
	case strings.Contains(detail, "duplicate key") || strings.Contains(detail, "unique constraint"):
		return parseDuplicateKeyError(detail)
	case strings.Contains(detail, "foreign key constraint"):
		return ErrorInfo{Code: ResourceConflict, Message: "Hay datos relacionados que impiden la operación"}
	case strings.Contains(detail, "not null constraint") || strings.Contains(detail, "violates not-null"):
		return ErrorInfo{Code: ValidationRequired, Message: "Falta un campo obligatorio"}
	case strings.Contains(detail, "connection refused") || strings.Contains(detail, "timeout"):
		return ErrorInfo{Code: InternalDatabaseError, Message: "No se pudo conectar con la base de datos. Intentá de nuevo"}
	}

	return ErrorInfo{Code: InternalServerError, Message: getDefaultErrorMessage(context)}
}

func parseDuplicateKeyError(detail string) ErrorInfo {
	switch {
	case strings.Contains(detail, "sku"):
		return ErrorInfo{Code: VariantSKUExists, Message: "Ya existe una variante con ese SKU"}
	case strings.Contains(detail, "catalogo_products") || strings.Contains(detail, "slug"):
		return ErrorInfo{Code: ProductSlugExists, Message: "Ya existe un producto con ese slug"}
	case strings.Contains(detail, "email"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Ya existe un usuario con ese email"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "El registro ya existe"}
}

func getNotFoundMessage(context string) string {
	c := strings.ToLower(context)
	switch {
	case strings.Contains(c, "image"):
		return "Imagen no encontrada"
	case strings.Contains(c, "variant"):
		return "Variante no encontrada"
	case strings.Contains(c, "product"):
		return "Producto no encontrado"
	case strings.Contains(c, "category"):
		return "Categoría no encontrada"
	case strings.Contains(c, "user"):
		return "Usuario no encontrado"
	}
	return "No se encontró el recurso solicitado"
}

func getDefaultErrorMessage(context string) string {
	c := strings.ToLower(context)
	switch {
	case strings.Contains(c, "create"):
		return "No se pudo crear. Intentá de nuevo en unos minutos"
	case strings.Contains(c, "update"):
		return "No se pudo guardar. Intentá de nuevo en unos minutos"
	case strings.Contains(c, "delete"):
		return "No se pudo eliminar. Intentá de nuevo en unos minutos"
	}
	return "Error interno del servidor. Intentá de nuevo en unos minutos"
}

// ParseAndRespond classifies err and writes it with statusCode.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	info := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{Error: info.Code, Message: info.Message})
}
