package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/internal/app/repository"
	"github.com/ikkim/catalogo-backend/pkg/logger"
	"github.com/ikkim/catalogo-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	ErrResetTokenExpired = errors.New("reset token has expired")
	ErrResetTokenUsed    = errors.New("reset token has already been used")
	ErrRateLimited       = errors.New("too many requests")
)

const (
	// ResetTokenExpiry is the duration for which a reset token is valid
	ResetTokenExpiry = 1 * time.Hour
	// ResetTokenLength is the byte length of the reset token
	ResetTokenLength = 32

	resetRequestLimit  = 5
	resetRequestWindow = 15 * time.Minute
)

// Mailer delivers password reset links.
type Mailer interface {
	SendPasswordReset(to, link string) error
}

// RateLimiter counts hits per key in fixed windows.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type PasswordResetService interface {
	RequestReset(ctx context.Context, email, clientIP string) error
	ResetPassword(token, newPassword string) error
}

type passwordResetService struct {
	resetRepo repository.PasswordResetRepository
	userRepo  repository.UserRepository
	mailer    Mailer
	limiter   RateLimiter
	siteURL   string
}

func NewPasswordResetService(
	resetRepo repository.PasswordResetRepository,
	userRepo repository.UserRepository,
	mailer Mailer,
	limiter RateLimiter,
	siteURL string,
) PasswordResetService {
	return &passwordResetService{
		resetRepo: resetRepo,
		userRepo:  userRepo,
		mailer:    mailer,
		limiter:   limiter,
		siteURL:   strings.TrimRight(siteURL, "/"),
	}
}

// ResetLink is the admin page a reset token is redeemed on.
func ResetLink(siteURL, token string) string {
	return strings.TrimRight(siteURL, "/") + "/admin/reset?token=" + url.QueryEscape(token)
}

func (s *passwordResetService) RequestReset(ctx context.Context, email, clientIP string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	logger.Info("Processing password reset request", map[string]interface{}{
		"email": email,
	})

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, "reset:"+clientIP, resetRequestLimit, resetRequestWindow)
		if err != nil {
			logger.Warn("Rate limiter unavailable", map[string]interface{}{
				"error": err.Error(),
			})
		} else if !allowed {
			logger.Warn("Password reset rate limited", map[string]interface{}{
				"ip": clientIP,
			})
			return ErrRateLimited
		}
	}

	// unknown emails succeed silently so accounts cannot be enumerated
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset requested for non-existent email", map[string]interface{}{
				"email": email,
			})
			return nil
		}
		logger.Error("Failed to find user for password reset", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	token, err := util.RandomHex(ResetTokenLength)
	if err != nil {
		logger.Error("Failed to generate reset token", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	if err := s.resetRepo.InvalidateForEmail(user.Email); err != nil {
		return err
	}

	reset := &model.PasswordReset{
		Email:     user.Email,
		Token:     token,
		ExpiresAt: time.Now().Add(ResetTokenExpiry),
	}
	if err := s.resetRepo.Create(reset); err != nil {
		logger.Error("Failed to create password reset record", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	if err := s.mailer.SendPasswordReset(user.Email, ResetLink(s.siteURL, token)); err != nil {
		logger.Error("Failed to send password reset email", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	logger.Info("Password reset email sent", map[string]interface{}{
		"user_id":    user.ID,
		"expires_at": reset.ExpiresAt,
	})
	return nil
}

func (s *passwordResetService) ResetPassword(token, newPassword string) error {
	logger.Info("Processing password reset with token")

	if err := util.ValidatePassword(newPassword); err != nil {
		return err
	}

	reset, err := s.resetRepo.FindByToken(strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Invalid reset token provided", nil)
			return ErrInvalidResetToken
		}
		logger.Error("Failed to find reset record", err, nil)
		return err
	}

	if reset.Expired(time.Now()) {
		logger.Warn("Reset token has expired", map[string]interface{}{
			"expires_at": reset.ExpiresAt,
		})
		return ErrResetTokenExpired
	}
	if reset.Used {
		logger.Warn("Reset token has already been used", map[string]interface{}{
			"reset_id": reset.ID,
		})
		return ErrResetTokenUsed
	}

	user, err := s.userRepo.FindByEmail(reset.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash new password", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	if err := s.userRepo.UpdatePassword(user.ID, hashedPassword); err != nil {
		logger.Error("Failed to update user password", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	// password already changed; a failure here only leaves the token reusable until expiry
	if err := s.resetRepo.MarkAsUsed(reset.ID); err != nil {
		logger.Error("Failed to mark reset token as used", err, map[string]interface{}{
			"reset_id": reset.ID,
		})
	}

	logger.Info("Password reset successful", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}
