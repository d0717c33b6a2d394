package scheduler

import (
	"time"

	"github.com/ikkim/catalogo-backend/internal/app/service"
	"github.com/ikkim/catalogo-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const (
	// todas las noches a las 3:15
	resetTokenSchedule = "15 3 * * *"
	// domingos a las 4:00
	clickEventSchedule = "0 4 * * 0"
)

// MaintenanceScheduler limpieza periódica de tokens y eventos
type MaintenanceScheduler struct {
	cron        *cron.Cron
	maintenance service.MaintenanceService
	now         func() time.Time
}

// NewMaintenanceScheduler crea el scheduler de mantenimiento
func NewMaintenanceScheduler(maintenance service.MaintenanceService) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cron:        cron.New(),
		maintenance: maintenance,
		now:         time.Now,
	}
}

// Start registra los trabajos y arranca el scheduler
func (s *MaintenanceScheduler) Start() error {
	if _, err := s.cron.AddFunc(resetTokenSchedule, s.purgeResetTokens); err != nil {
		logger.Error("Failed to add cron job for reset token purge", err)
		return err
	}
	if _, err := s.cron.AddFunc(clickEventSchedule, s.pruneClickEvents); err != nil {
		logger.Error("Failed to add cron job for click event pruning", err)
		return err
	}

	s.cron.Start()
	logger.Info("Maintenance scheduler started", map[string]interface{}{
		"jobs": len(s.cron.Entries()),
	})
	return nil
}

func (s *MaintenanceScheduler) purgeResetTokens() {
	if _, err := s.maintenance.PurgeResetTokens(s.now()); err != nil {
		logger.Error("Failed to purge reset tokens from scheduler", err)
	}
}

func (s *MaintenanceScheduler) pruneClickEvents() {
	if _, err := s.maintenance.PruneClickEvents(s.now()); err != nil {
		logger.Error("Failed to prune click events from scheduler", err)
	}
}

// Stop detiene el scheduler esperando a los trabajos en curso
func (s *MaintenanceScheduler) Stop() {
	logger.Info("Stopping maintenance scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Maintenance scheduler stopped")
}
