package model

import (
	"strings"
	"time"
)

type ProductStatus string // estado de publicación

const (
	StatusDraft     ProductStatus = "draft"     // borrador
	StatusPublished ProductStatus = "published" // visible en el catálogo público
	StatusArchived  ProductStatus = "archived"  // archivado
)

// Valid reports whether s is one of the known statuses.
func (s ProductStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// ParseProductStatus normalizes raw; blank maps to draft.
func ParseProductStatus(raw string) (ProductStatus, bool) {
	s := ProductStatus(strings.ToLower(strings.TrimSpace(raw)))
	if s == "" {
		return StatusDraft, true
	}
	return s, s.Valid()
}

type Product struct {
	ID          uint          `gorm:"primarykey" json:"id"`
	Slug        string        `gorm:"size:160;uniqueIndex;not null" json:"slug"`          // identificador público (URL)
	Name        string        `gorm:"size:255;not null;index" json:"name"`                // nombre
	Description string        `gorm:"type:text" json:"description"`                       // descripción
	Status      ProductStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	ShowPrices  *bool         `json:"show_prices"`                                        // nil = usa la configuración global
	CreatedByID *uint         `gorm:"index" json:"created_by_id,omitempty"`               // usuario que lo creó
	CreatedAt   time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Variants []Variant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	Images   []Image   `gorm:"foreignKey:ProductID" json:"images,omitempty"`
}

func (Product) TableName() string {
	return "catalogo_products"
}

// IsPublic reports whether the product may appear in the public catalog.
func (p *Product) IsPublic() bool {
	return p.Status == StatusPublished
}

// EffectiveShowPrices resolves the per-product override against the global default.
func (p *Product) EffectiveShowPrices(global bool) bool {
	if p.ShowPrices != nil {
		return *p.ShowPrices
	}
	return global
}
