package model

import "time"

const EventWhatsAppClick = "cta_whatsapp_click"

// ClickEvent records one click-to-chat redirect.
type ClickEvent struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Event       string    `gorm:"size:64;not null" json:"event"`
	ProductID   *uint     `gorm:"index" json:"product_id"`
	VariantID   *uint     `json:"variant_id"`
	Source      string    `gorm:"column:src;size:64" json:"src"`
	UTMSource   string    `gorm:"column:utm_source;size:255" json:"utm_source"`
	UTMMedium   string    `gorm:"column:utm_medium;size:255" json:"utm_medium"`
	UTMCampaign string    `gorm:"column:utm_campaign;size:255" json:"utm_campaign"`
	Ref         string    `gorm:"size:1024" json:"ref"`
	IPHash      string    `gorm:"size:64" json:"ip_hash"` // sha256(ip + salt)
	UserAgent   string    `gorm:"column:ua;size:512" json:"ua"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (ClickEvent) TableName() string {
	return "catalogo_events"
}
