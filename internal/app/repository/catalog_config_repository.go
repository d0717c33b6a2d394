package repository

import (
	"errors"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogConfigRepository interface {
	Get() (*model.CatalogConfig, error)
	Save(cfg *model.CatalogConfig) error
}

type catalogConfigRepository struct {
	db *gorm.DB
}

func NewCatalogConfigRepository(db *gorm.DB) CatalogConfigRepository {
	return &catalogConfigRepository{db: db}
}

// Get returns the global row, or the defaults when it was never written.
func (r *catalogConfigRepository) Get() (*model.CatalogConfig, error) {
	var cfg model.CatalogConfig
	err := r.db.First(&cfg, model.CatalogConfigID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Warn("Catalog config row missing, using defaults")
		defaults := model.DefaultCatalogConfig()
		return &defaults, nil
	}
	if err != nil {
		logger.Error("Failed to load catalog config", err, nil)
		return nil, err
	}
	return &cfg, nil
}

func (r *catalogConfigRepository) Save(cfg *model.CatalogConfig) error {
	cfg.ID = model.CatalogConfigID
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"show_prices", "currency_code", "whatsapp", "updated_at"}),
	}).Create(cfg).Error
	if err != nil {
		logger.Error("Failed to save catalog config", err, map[string]interface{}{
			"show_prices":   cfg.ShowPrices,
			"currency_code": cfg.CurrencyCode,
		})
		return err
	}

	logger.Debug("Catalog config saved", map[string]interface{}{
		"show_prices":   cfg.ShowPrices,
		"currency_code": cfg.CurrencyCode,
	})
	return nil
}
