package service

import (
	"errors"
	"strings"
	"time"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/internal/app/repository"
	"github.com/ikkim/catalogo-backend/pkg/logger"
	"golang.org/x/text/currency"
)

var (
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
)

// CatalogConfigUpdate carries a partial update; nil fields are left untouched.
type CatalogConfigUpdate struct {
	ShowPrices   *bool   `json:"show_prices"`
	CurrencyCode *string `json:"currency_code"`
	WhatsApp     *string `json:"whatsapp"`
}

func (u CatalogConfigUpdate) empty() bool {
	return u.ShowPrices == nil && u.CurrencyCode == nil && u.WhatsApp == nil
}

type CatalogConfigService interface {
	Get() (*model.CatalogConfig, error)
	Update(update CatalogConfigUpdate) (*model.CatalogConfig, error)
}

type catalogConfigService struct {
	configRepo repository.CatalogConfigRepository
}

func NewCatalogConfigService(configRepo repository.CatalogConfigRepository) CatalogConfigService {
	return &catalogConfigService{configRepo: configRepo}
}

func (s *catalogConfigService) Get() (*model.CatalogConfig, error) {
	return s.configRepo.Get()
}

func (s *catalogConfigService) Update(update CatalogConfigUpdate) (*model.CatalogConfig, error) {
	if update.empty() {
		return nil, ErrNoFieldsToUpdate
	}

	cfg, err := s.configRepo.Get()
	if err != nil {
		return nil, err
	}

	if update.CurrencyCode != nil {
		code, err := normalizeCurrency(*update.CurrencyCode)
		if err != nil {
			return nil, err
		}
		cfg.CurrencyCode = code
	}
	if update.ShowPrices != nil {
		cfg.ShowPrices = *update.ShowPrices
	}
	if update.WhatsApp != nil {
		cfg.WhatsApp = strings.TrimSpace(*update.WhatsApp)
	}
	cfg.UpdatedAt = time.Now()

	if err := s.configRepo.Save(cfg); err != nil {
		return nil, err
	}

	logger.Info("Catalog config updated", map[string]interface{}{
		"show_prices":   cfg.ShowPrices,
		"currency_code": cfg.CurrencyCode,
	})
	return cfg, nil
}

// normalizeCurrency validates raw as an ISO 4217 code.
func normalizeCurrency(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != 3 {
		return "", ErrInvalidCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", ErrInvalidCurrency
	}
	return unit.String(), nil
}
