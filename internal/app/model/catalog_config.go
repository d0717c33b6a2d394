package model

import "time"

const (
	CatalogConfigID     uint = 1
	DefaultCurrencyCode      = "UYU"
)

// CatalogConfig is the single global settings row.
type CatalogConfig struct {
	ID           uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ShowPrices   bool      `gorm:"not null" json:"show_prices"`          // visibilidad de precios por defecto
	CurrencyCode string    `gorm:"size:3;not null" json:"currency_code"` // ISO 4217
	WhatsApp     string    `gorm:"column:whatsapp;size:32" json:"whatsapp"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (CatalogConfig) TableName() string {
	return "catalogo_config"
}

// DefaultCatalogConfig is used when the row is missing.
func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		ID:           CatalogConfigID,
		ShowPrices:   true,
		CurrencyCode: DefaultCurrencyCode,
	}
}
