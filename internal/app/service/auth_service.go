package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/internal/app/repository"
	"github.com/ikkim/catalogo-backend/pkg/logger"
	"github.com/ikkim/catalogo-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("user is not allowed to administer the catalog")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrInvalidRole        = errors.New("invalid role")
)

// TokenBlacklist remembers revoked token ids until they would expire anyway.
type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AdminPolicy decides who may use the admin panel: an explicit email
// allow-list, or an accepted profile role.
type AdminPolicy struct {
	emails map[string]bool
	roles  map[string]bool
}

func NewAdminPolicy(emails, roles []string) AdminPolicy {
	p := AdminPolicy{
		emails: make(map[string]bool, len(emails)),
		roles:  make(map[string]bool, len(roles)),
	}
	for _, e := range emails {
		p.emails[strings.ToLower(strings.TrimSpace(e))] = true
	}
	for _, r := range roles {
		p.roles[strings.ToLower(strings.TrimSpace(r))] = true
	}
	return p
}

func (p AdminPolicy) Allows(email string, role model.UserRole) bool {
	if p.emails[strings.ToLower(strings.TrimSpace(email))] {
		return true
	}
	return p.roles[strings.ToLower(string(role))]
}

type AuthService interface {
	Login(email, password string) (*model.User, *util.AccessToken, error)
	Logout(ctx context.Context, claims *util.Claims) error
	Authenticate(ctx context.Context, token string) (*util.Claims, error)
	Authorize(userID uint) (*model.User, error)
	GetUserByID(id uint) (*model.User, error)
	CreateUser(email, password, name string, role model.UserRole) (*model.User, error)
}

type authService struct {
	userRepo     repository.UserRepository
	blacklist    TokenBlacklist
	policy       AdminPolicy
	jwtSecret    string
	accessExpiry time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	blacklist TokenBlacklist,
	policy AdminPolicy,
	jwtSecret string,
	accessExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		blacklist:    blacklist,
		policy:       policy,
		jwtSecret:    jwtSecret,
		accessExpiry: accessExpiry,
	}
}

func (s *authService) Login(email, password string) (*model.User, *util.AccessToken, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	token, err := util.GenerateAccessToken(user.ID, user.Email, string(user.Role), s.jwtSecret, s.accessExpiry)
	if err != nil {
		logger.Error("Failed to generate access token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	now := time.Now()
	if err := s.userRepo.TouchLastLogin(user.ID, now); err == nil {
		user.LastLoginAt = &now
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, token, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, claims *util.Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, ttl); err != nil {
		logger.Error("Failed to revoke token", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return err
	}
	logger.Info("User logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}

// Authenticate validates the token signature, expiry and revocation. A
// blacklist outage is logged and does not reject the token.
func (s *authService) Authenticate(ctx context.Context, token string) (*util.Claims, error) {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	if claims.ID != "" {
		revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			logger.Warn("Token blacklist unavailable", map[string]interface{}{
				"error": err.Error(),
			})
		} else if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// Authorize re-reads the user so role changes apply immediately.
func (s *authService) Authorize(userID uint) (*model.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if !s.policy.Allows(user.Email, user.Role) {
		logger.Warn("Admin access denied", map[string]interface{}{
			"user_id": user.ID,
			"role":    user.Role,
		})
		return nil, ErrForbidden
	}
	return user, nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return user, nil
}

func (s *authService) CreateUser(email, password, name string, role model.UserRole) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fieldError("email", "email inválido")
	}
	switch role {
	case model.RoleOwner, model.RoleEditor, model.RoleViewer:
	default:
		return nil, ErrInvalidRole
	}
	if err := util.ValidatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		Role:         role,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Info("User created", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, nil
}
