package services

import (
	"time"

	"github.com/clearview-hq/clearview/backend/internal/models"
	"github.com/clearview-hq/clearview/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// LinkCleanupService purges long-expired secure links so dead tokens do not
// accumulate forever. Completed links are kept as the audit record of the
// client's decision; only pending links past the retention window go.
type LinkCleanupService struct {
	db            *gorm.DB
	cronScheduler *cron.Cron
}

func NewLinkCleanupService(db *gorm.DB) *LinkCleanupService {
	return &LinkCleanupService{db: db}
}

// StartScheduler runs the purge once at startup and then daily at 03:30
func (s *LinkCleanupService) StartScheduler() {
	s.cronScheduler = cron.New()

	if _, err := s.cronScheduler.AddFunc("30 3 * * *", func() {
		s.RunOnce()
	}); err != nil {
		logger.Errorf("[LinkCleanup] failed to schedule: %v", err)
		return
	}

	s.cronScheduler.Start()
	logger.Info().Msg("[LinkCleanup] scheduler started")

	go s.RunOnce()
}

func (s *LinkCleanupService) StopScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

// RunOnce deletes pending links whose expiry is older than the retention
// window and reports what it did
func (s *LinkCleanupService) RunOnce() {
	retentionDays := s.GetRetentionDays()
	if retentionDays <= 0 {
		logger.Info().Msg("[LinkCleanup] disabled (retention_days <= 0)")
		return
	}

	deleted, err := s.PurgeExpired(retentionDays)
	if err != nil {
		logger.Errorf("[LinkCleanup] purge failed: %v", err)
		LogError("link_cleanup", "purge", err.Error(), nil, "", "", nil)
		return
	}
	if deleted > 0 {
		logger.Infof("[LinkCleanup] removed %d expired pending links", deleted)
		LogInfo("link_cleanup", "purge", "expired secure links removed", nil, "", "",
			map[string]interface{}{"deleted": deleted, "retention_days": retentionDays})
	}
}

// PurgeExpired removes pending links that expired more than retentionDays
// ago. Returns the number of deleted rows.
func (s *LinkCleanupService) PurgeExpired(retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("status = ? AND expires_at < ?", models.RecipientStatusPending, cutoff).
		Delete(&models.ChangeOrderRecipient{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// GetRetentionDays reads the retention window from system config
func (s *LinkCleanupService) GetRetentionDays() int {
	return NewSystemConfigService(s.db).GetInt("link_retention_days", 90)
}
