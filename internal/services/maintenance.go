package services

import (
	"time"

	"github.com/openboard-io/openboard/backend/internal/config"
	"github.com/openboard-io/openboard/backend/internal/models"
	"github.com/openboard-io/openboard/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// MaintenanceService runs the nightly retention jobs: closed session
// records past their grace period and audit logs past their retention
// window are hard-deleted.
type MaintenanceService struct {
	db            *gorm.DB
	audit         *AuditService
	cfg           *config.AuditConfig
	cronScheduler *cron.Cron
}

func NewMaintenanceService(db *gorm.DB, audit *AuditService, cfg *config.AuditConfig) *MaintenanceService {
	return &MaintenanceService{db: db, audit: audit, cfg: cfg}
}

func (s *MaintenanceService) StartScheduler() {
	s.cronScheduler = cron.New()

	// 03:30 server-local, after the traffic trough.
	if _, err := s.cronScheduler.AddFunc("30 3 * * *", func() {
		s.RunOnce()
	}); err != nil {
		logger.Error().Err(err).Msg("failed to register maintenance job")
		return
	}

	s.cronScheduler.Start()
	logger.Info().Msg("maintenance scheduler started")
}

func (s *MaintenanceService) StopScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

// RunOnce executes both retention passes immediately.
func (s *MaintenanceService) RunOnce() {
	sessions, err := s.PurgeClosedSessions()
	if err != nil {
		logger.Error().Err(err).Msg("session retention pass failed")
	}

	audits, err := s.audit.CleanupOld(s.cfg.RetentionDays)
	if err != nil {
		logger.Error().Err(err).Msg("audit retention pass failed")
	}

	logger.Info().
		Int64("sessions_purged", sessions).
		Int64("audit_logs_purged", audits).
		Msg("maintenance run complete")
}

// PurgeClosedSessions deletes refresh-token records that have been revoked
// or expired for longer than the grace period. Recently closed records are
// kept so the admin session list can still show them.
func (s *MaintenanceService) PurgeClosedSessions() (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.SessionGraceDays)

	result := s.db.
		Where("(revoked_at IS NOT NULL AND revoked_at < ?) OR expires_at < ?", cutoff, cutoff).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}
