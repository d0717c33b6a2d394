package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalogo-backend/internal/app/service"
	apperrors "github.com/ikkim/catalogo-backend/internal/errors"
	"github.com/ikkim/catalogo-backend/internal/middleware"
	"github.com/ikkim/catalogo-backend/pkg/util"
)

const resetRequestedMessage = "Si el email está registrado, te enviamos un enlace para restablecer la contraseña"

type AuthController struct {
	authService          service.AuthService
	passwordResetService service.PasswordResetService
	secureCookies        bool
}

func NewAuthController(
	authService service.AuthService,
	passwordResetService service.PasswordResetService,
	secureCookies bool,
) *AuthController {
	return &AuthController{
		authService:          authService,
		passwordResetService: passwordResetService,
		secureCookies:        secureCookies,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ConfirmResetRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles admin login
// POST /api/admin/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Ingresá un email y una contraseña válidos")
		return
	}

	user, token, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Email o contraseña incorrectos")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.InternalError(c, "")
		return
	}

	loginAt := time.Now()
	if user.LastLoginAt != nil {
		loginAt = *user.LastLoginAt
	}
	middleware.SetSessionCookies(c, token.Value, token.ExpiresAt, loginAt, ctrl.secureCookies)

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"access_token": token.Value,
		"expires_at":   token.ExpiresAt,
	})
}

// Logout revokes the current token and clears the session cookies
// POST /api/admin/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if token, _, ok := middleware.ExtractToken(c); ok && token != "" {
		claims, err := ctrl.authService.Authenticate(c.Request.Context(), token)
		if err == nil {
			if err := ctrl.authService.Logout(c.Request.Context(), claims); err != nil {
				log.Warn("Token could not be revoked", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}

	middleware.ClearSessionCookies(c, ctrl.secureCookies)
	c.JSON(http.StatusOK, gin.H{
		"message": "Sesión cerrada",
	})
}

// Me returns the authenticated admin
// GET /api/admin/me
func (ctrl *AuthController) Me(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.Unauthorized(c, "")
			return
		}
		log.Error("Failed to fetch admin", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

// RequestReset mails a reset link. The answer never reveals whether the
// email exists.
// POST /api/admin/auth/reset
func (ctrl *AuthController) RequestReset(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Ingresá un email válido")
		return
	}

	err := ctrl.passwordResetService.RequestReset(c.Request.Context(), req.Email, middleware.ClientIP(c))
	if errors.Is(err, service.ErrRateLimited) {
		apperrors.RespondWithError(c, http.StatusTooManyRequests, apperrors.AuthRateLimited, "Demasiados intentos. Probá de nuevo en unos minutos")
		return
	}
	if err != nil {
		log.Error("Password reset request failed", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": resetRequestedMessage,
	})
}

// ConfirmReset sets a new password with a reset token
// POST /api/admin/auth/reset/confirm
func (ctrl *AuthController) ConfirmReset(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ConfirmResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Faltan el token o la contraseña")
		return
	}

	err := ctrl.passwordResetService.ResetPassword(req.Token, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"message": "Contraseña actualizada. Ya podés iniciar sesión",
		})
	case errors.Is(err, util.ErrWeakPassword):
		apperrors.RespondWithValidationError(c, map[string]string{
			"password": "La contraseña debe tener entre 8 caracteres y 72 bytes",
		})
	case errors.Is(err, service.ErrInvalidResetToken),
		errors.Is(err, service.ErrResetTokenExpired),
		errors.Is(err, service.ErrResetTokenUsed):
		apperrors.BadRequest(c, apperrors.AuthResetTokenInvalid, "El enlace no es válido o ya venció. Pedí uno nuevo")
	default:
		log.Error("Password reset failed", err)
		apperrors.InternalError(c, "")
	}
}
