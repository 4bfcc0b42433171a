package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/salonbook-backend/internal/models"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CleanupService removes rows that lost their parent: salons whose owner is
// gone, pricing configs whose salon is gone, and expired system logs.
type CleanupService struct {
	db        *gorm.DB
	retention time.Duration
	cron      *cron.Cron
}

func NewCleanupService(db *gorm.DB, retention time.Duration) *CleanupService {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &CleanupService{db: db, retention: retention}
}

// Start schedules RunOnce with a standard cron spec or descriptor such as
// "@daily".
func (s *CleanupService) Start(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, s.scheduledRun); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	c.Start()
	s.cron = c
	slog.Info("cleanup scheduler started", "schedule", schedule)
	return nil
}

// Stop waits for a running pass to finish.
func (s *CleanupService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

func (s *CleanupService) scheduledRun() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil {
		slog.Error("scheduled cleanup failed", "action", "cleanup", "error", err)
	}
}

func (s *CleanupService) RunOnce(ctx context.Context) (*dto.CleanupResponse, error) {
	result := &dto.CleanupResponse{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Soft-deleted owners are excluded by the User model's default scope.
		liveOwners := tx.Model(&models.User{}).Select("id")

		var salonIDs []uuid.UUID
		if err := tx.Model(&models.Salon{}).
			Where("owner_id NOT IN (?)", liveOwners).
			Pluck("id", &salonIDs).Error; err != nil {
			return fmt.Errorf("failed to find orphan salons: %w", err)
		}

		if len(salonIDs) > 0 {
			res := tx.Where("salon_id IN ?", salonIDs).Delete(&models.PricingConfig{})
			if res.Error != nil {
				return fmt.Errorf("failed to delete pricing for orphan salons: %w", res.Error)
			}
			result.OrphanPricingConfigs += res.RowsAffected

			res = tx.Where("id IN ?", salonIDs).Delete(&models.Salon{})
			if res.Error != nil {
				return fmt.Errorf("failed to delete orphan salons: %w", res.Error)
			}
			result.OrphanSalons = res.RowsAffected

			if err := tx.Model(&models.User{}).Unscoped().
				Where("salon_id IN ?", salonIDs).
				Update("salon_id", nil).Error; err != nil {
				return fmt.Errorf("failed to unlink orphan salons: %w", err)
			}
		}

		res := tx.Where("salon_id NOT IN (?)", tx.Model(&models.Salon{}).Select("id")).
			Delete(&models.PricingConfig{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete orphan pricing configs: %w", res.Error)
		}
		result.OrphanPricingConfigs += res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}

	expired, err := logging.PurgeSystemLogs(ctx, s.db, time.Now().Add(-s.retention))
	if err != nil {
		return nil, fmt.Errorf("failed to purge system logs: %w", err)
	}
	result.ExpiredLogs = expired

	slog.Info("cleanup completed",
		"orphan_salons", result.OrphanSalons,
		"orphan_pricing_configs", result.OrphanPricingConfigs,
		"expired_logs", result.ExpiredLogs,
	)
	return result, nil
}
