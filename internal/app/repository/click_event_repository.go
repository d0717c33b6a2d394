package repository

import (
	"time"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/pkg/logger"
	"gorm.io/gorm"
)

type ClickEventRepository interface {
	Create(event *model.ClickEvent) error
	CountSince(since time.Time) (int64, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

type clickEventRepository struct {
	db *gorm.DB
}

func NewClickEventRepository(db *gorm.DB) ClickEventRepository {
	return &clickEventRepository{db: db}
}

func (r *clickEventRepository) Create(event *model.ClickEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		logger.Error("Failed to record click event", err, map[string]interface{}{
			"event":      event.Event,
			"product_id": event.ProductID,
		})
		return err
	}
	return nil
}

func (r *clickEventRepository) CountSince(since time.Time) (int64, error) {
	var count int64
	if err := r.db.Model(&model.ClickEvent{}).Where("created_at >= ?", since).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *clickEventRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&model.ClickEvent{})
	if result.Error != nil {
		logger.Error("Failed to purge click events", result.Error, map[string]interface{}{
			"cutoff": cutoff,
		})
		return 0, result.Error
	}

	logger.Debug("Click events purged", map[string]interface{}{
		"count": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
