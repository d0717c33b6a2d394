package db

import (
	"errors"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.PasswordReset{},
		&model.Category{},
		&model.Product{},
		&model.ProductCategory{},
		&model.Variant{},
		&model.Image{},
		&model.CatalogConfig{},
		&model.ClickEvent{},
	}
}

// Migrate runs database migrations on the global connection
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB runs AutoMigrate and seeds the rows the service expects to exist.
func MigrateDB(conn *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := conn.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedCatalogConfig(conn); err != nil {
		logger.Error("Failed to seed catalog config during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// seedCatalogConfig inserts the global config row when missing.
func seedCatalogConfig(conn *gorm.DB) error {
	var existing model.CatalogConfig
	err := conn.First(&existing, model.CatalogConfigID).Error
	if err == nil {
		logger.Debug("Catalog config already present, skipping seed", map[string]interface{}{
			"show_prices":   existing.ShowPrices,
			"currency_code": existing.CurrencyCode,
		})
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	cfg := model.DefaultCatalogConfig()
	if err := conn.Create(&cfg).Error; err != nil {
		return err
	}
	logger.Info("Catalog config seeded", map[string]interface{}{
		"show_prices":   cfg.ShowPrices,
		"currency_code": cfg.CurrencyCode,
	})
	return nil
}
