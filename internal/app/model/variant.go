package model

import (
	"time"

	"gorm.io/datatypes"
)

type Variant struct {
	ID          uint              `gorm:"primarykey" json:"id"`
	ProductID   uint              `gorm:"not null;index" json:"product_id"`
	SKU         string            `gorm:"column:sku;size:100;uniqueIndex;not null" json:"sku"` // clave de upsert en la importación
	Name        string            `gorm:"size:255;not null" json:"name"`
	PriceCents  int64             `gorm:"not null" json:"price_cents"` // precio en centésimos
	IsAvailable bool              `gorm:"not null" json:"is_available"`
	Stock       int               `gorm:"not null" json:"stock"`
	Attributes  datatypes.JSONMap `json:"attributes,omitempty"` // atributos libres (color, talle, ...)
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (Variant) TableName() string {
	return "catalogo_variants"
}

// Label is the human-readable variant name used in chat messages.
func (v *Variant) Label() string {
	if v.Name != "" {
		return v.Name
	}
	return v.SKU
}
