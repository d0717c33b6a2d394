package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/catalogo-backend/internal/errors"
	"github.com/ikkim/catalogo-backend/internal/middleware"
)

// parseIDParam reads a positive numeric path parameter, answering 400 when
// it is not one.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid ID format", map[string]interface{}{
			name:    raw,
			"error": "not a positive integer",
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "El identificador no es válido")
		return 0, false
	}
	return uint(id), true
}

// queryInt returns the integer query value, or 0 when missing or invalid.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

// queryUint returns the unsigned query value, or 0 when missing or invalid.
func queryUint(c *gin.Context, key string) uint {
	n, err := strconv.ParseUint(c.Query(key), 10, 32)
	if err != nil {
		return 0
	}
	return uint(n)
}
