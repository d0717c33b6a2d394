package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalogo-backend/internal/app/service"
	"github.com/ikkim/catalogo-backend/internal/errors"
)

// RateLimit allows limit requests per client IP and window under the given
// key prefix. A limiter outage lets the request through.
func RateLimit(limiter service.RateLimiter, prefix string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)
		ip := ClientIP(c)

		allowed, err := limiter.Allow(c.Request.Context(), prefix+":"+ip, limit, window)
		if err != nil {
			log.Warn("Rate limiter unavailable", map[string]interface{}{
				"error": err.Error(),
			})
			c.Next()
			return
		}
		if !allowed {
			log.Warn("Rate limit exceeded", map[string]interface{}{
				"prefix": prefix,
				"ip":     ip,
			})
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			errors.RespondWithError(c, http.StatusTooManyRequests, errors.AuthRateLimited, "Demasiados intentos. Probá de nuevo en unos minutos")
			c.Abort()
			return
		}
		c.Next()
	}
}
