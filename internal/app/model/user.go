package model

import (
	"time"
)

type UserRole string // rol del perfil

const (
	RoleOwner  UserRole = "owner"  // dueño del catálogo
	RoleEditor UserRole = "editor" // puede editar productos
	RoleViewer UserRole = "viewer" // sin permisos de administración
)

// User is an admin panel account together with its profile role.
type User struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Name         string     `gorm:"size:255" json:"name"`
	Role         UserRole   `gorm:"type:varchar(20);not null;default:'viewer'" json:"role"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "catalogo_profiles"
}
