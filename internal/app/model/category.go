package model

import "time"

type Category struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Slug      string    `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"-"`
}

func (Category) TableName() string {
	return "catalogo_categories"
}

// ProductCategory is the product <-> category pivot.
type ProductCategory struct {
	ProductID  uint `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	CategoryID uint `gorm:"primaryKey;autoIncrement:false;index" json:"category_id"`
}

func (ProductCategory) TableName() string {
	return "catalogo_product_categories"
}
