package service

import (
	"time"

	"github.com/ikkim/catalogo-backend/internal/app/repository"
	"github.com/ikkim/catalogo-backend/pkg/logger"
)

type MaintenanceService interface {
	PurgeResetTokens(now time.Time) (int64, error)
	PruneClickEvents(now time.Time) (int64, error)
}

type maintenanceService struct {
	resetRepo      repository.PasswordResetRepository
	clickRepo      repository.ClickEventRepository
	clickRetention time.Duration
}

func NewMaintenanceService(
	resetRepo repository.PasswordResetRepository,
	clickRepo repository.ClickEventRepository,
	clickRetention time.Duration,
) MaintenanceService {
	return &maintenanceService{
		resetRepo:      resetRepo,
		clickRepo:      clickRepo,
		clickRetention: clickRetention,
	}
}

// PurgeResetTokens deletes expired and used reset tokens.
func (s *maintenanceService) PurgeResetTokens(now time.Time) (int64, error) {
	deleted, err := s.resetRepo.DeleteExpired(now)
	if err != nil {
		return 0, err
	}
	logger.Info("Reset tokens purged", map[string]interface{}{
		"deleted": deleted,
	})
	return deleted, nil
}

// PruneClickEvents drops click events older than the retention window.
// A zero retention keeps everything.
func (s *maintenanceService) PruneClickEvents(now time.Time) (int64, error) {
	if s.clickRetention <= 0 {
		return 0, nil
	}
	deleted, err := s.clickRepo.DeleteOlderThan(now.Add(-s.clickRetention))
	if err != nil {
		return 0, err
	}
	logger.Info("Click events pruned", map[string]interface{}{
		"deleted":   deleted,
		"retention": s.clickRetention.String(),
	})
	return deleted, nil
}
