package service

import (
	"time"
	"unicode/utf8"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/internal/app/repository"
	"github.com/ikkim/catalogo-backend/internal/metrics"
	"github.com/ikkim/catalogo-backend/pkg/logger"
	"github.com/ikkim/catalogo-backend/pkg/util"
	"github.com/ikkim/catalogo-backend/pkg/utm"
	"github.com/ikkim/catalogo-backend/pkg/whatsapp"
)

// Attribution cookie outcomes.
const (
	AttributionSet        = "set"
	AttributionAlreadySet = "already-set"
	AttributionEmpty      = "empty"
)

type ClickInput struct {
	ProductID    uint
	VariantID    uint
	Source       string
	ProductSlug  string
	ProductName  string
	VariantLabel string
	Attribution  *utm.Attribution
	ClientIP     string
	UserAgent    string
}

// AttributionDecision tells the caller whether to write the cookie.
type AttributionDecision struct {
	Status string
	Value  string
}

type TrackingService interface {
	TrackClick(in ClickInput) string
	DecideAttribution(existing *utm.Attribution, incoming utm.Attribution, now time.Time) AttributionDecision
}

type TrackingConfig struct {
	SiteURL       string
	WhatsAppPhone string
	IPSalt        string
	CookieTTL     time.Duration
}

type trackingService struct {
	clickRepo  repository.ClickEventRepository
	configRepo repository.CatalogConfigRepository
	cfg        TrackingConfig
}

func NewTrackingService(
	clickRepo repository.ClickEventRepository,
	configRepo repository.CatalogConfigRepository,
	cfg TrackingConfig,
) TrackingService {
	return &trackingService{
		clickRepo:  clickRepo,
		configRepo: configRepo,
		cfg:        cfg,
	}
}

// TrackClick records the click and returns where to send the visitor.
// Recording is best effort and never changes the destination.
func (s *trackingService) TrackClick(in ClickInput) string {
	recorded := s.record(in)
	metrics.ObserveClick(in.Source, recorded)

	phone := s.phone()
	text := whatsapp.Message{
		ProductName:  in.ProductName,
		ProductSlug:  in.ProductSlug,
		VariantLabel: in.VariantLabel,
		SiteURL:      s.cfg.SiteURL,
	}.Text()

	if link := whatsapp.DeepLink(phone, text); link != "" {
		return link
	}

	logger.Warn("No WhatsApp phone configured, redirecting to product page", map[string]interface{}{
		"product_slug": in.ProductSlug,
	})
	if in.ProductSlug == "" {
		return s.cfg.SiteURL + "/"
	}
	return whatsapp.ProductURL(s.cfg.SiteURL, in.ProductSlug)
}

func (s *trackingService) record(in ClickInput) bool {
	event := &model.ClickEvent{
		Event:     model.EventWhatsAppClick,
		Source:    clip(in.Source, 64),
		IPHash:    util.SaltedHash(in.ClientIP, s.cfg.IPSalt),
		UserAgent: clip(in.UserAgent, 512),
	}
	if in.ProductID != 0 {
		id := in.ProductID
		event.ProductID = &id
	}
	if in.VariantID != 0 {
		id := in.VariantID
		event.VariantID = &id
	}
	if a := in.Attribution; a != nil {
		event.UTMSource = clip(a.Source, 255)
		event.UTMMedium = clip(a.Medium, 255)
		event.UTMCampaign = clip(a.Campaign, 255)
		event.Ref = clip(a.Ref, 1024)
	}

	if err := s.clickRepo.Create(event); err != nil {
		logger.Warn("Click event not recorded", map[string]interface{}{
			"product_id": in.ProductID,
			"error":      err.Error(),
		})
		return false
	}
	return true
}

// phone prefers the environment, then the stored catalog config.
func (s *trackingService) phone() string {
	if s.cfg.WhatsAppPhone != "" {
		return s.cfg.WhatsAppPhone
	}
	cfg, err := s.configRepo.Get()
	if err != nil {
		logger.Warn("Could not read WhatsApp phone from catalog config", map[string]interface{}{
			"error": err.Error(),
		})
		return ""
	}
	return cfg.WhatsApp
}

// DecideAttribution keeps the first touch: a fresh cookie is never replaced.
func (s *trackingService) DecideAttribution(existing *utm.Attribution, incoming utm.Attribution, now time.Time) AttributionDecision {
	if existing != nil && existing.Fresh(now, s.cfg.CookieTTL) {
		return AttributionDecision{Status: AttributionAlreadySet}
	}
	if incoming.Empty() {
		return AttributionDecision{Status: AttributionEmpty}
	}

	incoming.Ts = now.UnixMilli()
	value, err := utm.Encode(incoming)
	if err != nil {
		logger.Warn("Failed to encode attribution cookie", map[string]interface{}{
			"error": err.Error(),
		})
		return AttributionDecision{Status: AttributionEmpty}
	}
	return AttributionDecision{Status: AttributionSet, Value: value}
}

// clip truncates s to at most n runes.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
