package model

import "time"

type Image struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	VariantID *uint     `gorm:"index" json:"variant_id"`           // nil = imagen del producto
	Path      string    `gorm:"size:512;not null" json:"path"`     // clave en el bucket
	Alt       string    `gorm:"size:255" json:"alt"`
	IsPrimary bool      `gorm:"not null" json:"is_primary"`        // a lo sumo una por alcance
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `json:"created_at"`

	URL string `gorm:"-" json:"url,omitempty"`
}

func (Image) TableName() string {
	return "catalogo_images"
}

// SameScope reports whether other shares the product+variant primary scope.
func (i *Image) SameScope(other *Image) bool {
	if i.ProductID != other.ProductID {
		return false
	}
	if i.VariantID == nil || other.VariantID == nil {
		return i.VariantID == nil && other.VariantID == nil
	}
	return *i.VariantID == *other.VariantID
}
