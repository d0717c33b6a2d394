package middleware

import (
	stderrors "errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/internal/app/service"
	"github.com/ikkim/catalogo-backend/internal/errors"
	"github.com/ikkim/catalogo-backend/pkg/util"
)

// Context keys for user information
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	UserRoleKey  = "user_role"
	ClaimsKey    = "claims"
)

const (
	AdminTokenCookie     = "admin_token"
	AdminLastLoginCookie = "admin_last_login"
	AdminLoginPath       = "/admin/login"
)

// GuardMode selects how a failed admin check is answered.
type GuardMode int

const (
	// API answers 401/403 with a JSON error.
	API GuardMode = iota
	// Page redirects to the login page.
	Page
)

type AdminGuard struct {
	authService service.AuthService
	sessionTTL  time.Duration
	now         func() time.Time
}

func NewAdminGuard(authService service.AuthService, sessionTTL time.Duration) *AdminGuard {
	return &AdminGuard{
		authService: authService,
		sessionTTL:  sessionTTL,
		now:         time.Now,
	}
}

// RequireAdmin authenticates the caller and re-checks its role on every
// request. Cookie sessions must also carry a fresh admin_last_login.
func (g *AdminGuard) RequireAdmin(mode GuardMode) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, fromCookie, ok := ExtractToken(c)
		if !ok {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			g.reject(c, mode, http.StatusUnauthorized, errors.AuthTokenInvalid, "El formato de autenticación no es válido")
			return
		}
		if token == "" {
			log.Warn("Missing admin credentials", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			g.reject(c, mode, http.StatusUnauthorized, errors.AuthUnauthorized, "Tenés que iniciar sesión")
			return
		}

		if (mode == Page || fromCookie) && !g.sessionFresh(c) {
			log.Warn("Admin session is stale", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			g.reject(c, mode, http.StatusUnauthorized, errors.AuthSessionStale, "Tu sesión venció, volvé a ingresar")
			return
		}

		claims, err := g.authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			switch {
			case stderrors.Is(err, util.ErrExpiredToken):
				g.reject(c, mode, http.StatusUnauthorized, errors.AuthTokenExpired, "Tu sesión expiró")
			case stderrors.Is(err, service.ErrTokenRevoked):
				g.reject(c, mode, http.StatusUnauthorized, errors.AuthTokenRevoked, "La sesión fue cerrada")
			default:
				g.reject(c, mode, http.StatusUnauthorized, errors.AuthTokenInvalid, "El token de sesión no es válido")
			}
			return
		}

		user, err := g.authService.Authorize(claims.UserID)
		if err != nil {
			switch {
			case stderrors.Is(err, service.ErrForbidden):
				g.reject(c, mode, http.StatusForbidden, errors.AuthzForbidden, "No tenés permisos para administrar el catálogo")
			case stderrors.Is(err, service.ErrUserNotFound):
				g.reject(c, mode, http.StatusUnauthorized, errors.AuthUnauthorized, "Tenés que iniciar sesión")
			default:
				log.Error("Failed to authorize admin", err, map[string]interface{}{
					"user_id": claims.UserID,
				})
				if mode == Page {
					g.reject(c, mode, http.StatusInternalServerError, errors.InternalServerError, "")
					return
				}
				errors.InternalError(c, "")
				c.Abort()
			}
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(UserEmailKey, user.Email)
		c.Set(UserRoleKey, user.Role)
		c.Set(ClaimsKey, claims)

		log.Debug("Admin authorized", map[string]interface{}{
			"user_id": user.ID,
			"role":    user.Role,
		})

		c.Next()
	}
}

func (g *AdminGuard) reject(c *gin.Context, mode GuardMode, status int, code, message string) {
	if mode == Page {
		target := AdminLoginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		c.Redirect(http.StatusFound, target)
		c.Abort()
		return
	}
	errors.RespondWithError(c, status, code, message)
	c.Abort()
}

// sessionFresh checks the admin_last_login cookie (unix millis) against the
// session TTL.
func (g *AdminGuard) sessionFresh(c *gin.Context) bool {
	raw, err := c.Cookie(AdminLastLoginCookie)
	if err != nil {
		return false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		return false
	}
	age := g.now().Sub(time.UnixMilli(ms))
	return age >= -time.Minute && age < g.sessionTTL
}

// ExtractToken prefers the Authorization header over the session cookie.
// ok is false when a header is present but malformed.
func ExtractToken(c *gin.Context) (token string, fromCookie bool, ok bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false, false
		}
		return parts[1], false, true
	}
	if cookie, err := c.Cookie(AdminTokenCookie); err == nil && cookie != "" {
		return cookie, true, true
	}
	return "", false, true
}

// SetSessionCookies stores the access token and the login timestamp.
func SetSessionCookies(c *gin.Context, token string, expiresAt, loginAt time.Time, secure bool) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AdminTokenCookie, token, maxAge, "/", "", secure, true)
	c.SetCookie(AdminLastLoginCookie, strconv.FormatInt(loginAt.UnixMilli(), 10), maxAge, "/", "", secure, true)
}

func ClearSessionCookies(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AdminTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(AdminLastLoginCookie, "", -1, "/", "", secure, true)
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	return userID.(uint), true
}

// GetUserEmail extracts user email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	return email.(string), true
}

// GetUserRole extracts user role from context
func GetUserRole(c *gin.Context) (model.UserRole, bool) {
	role, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	return role.(model.UserRole), true
}

// GetClaims returns the validated token claims of the request.
func GetClaims(c *gin.Context) (*util.Claims, bool) {
	claims, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	cl, ok := claims.(*util.Claims)
	return cl, ok
}
