package services

import (
	"encoding/json"
	"time"

	"github.com/openboard-io/openboard/backend/internal/models"
	"github.com/openboard-io/openboard/backend/internal/utils"
	"github.com/openboard-io/openboard/backend/pkg/logger"
	"gorm.io/gorm"
)

// Audit action and resource types.
const (
	ActionRegister        = "REGISTER"
	ActionLogin           = "LOGIN"
	ActionLogout          = "LOGOUT"
	ActionTokenRefresh    = "TOKEN_REFRESH"
	ActionToggleConflict  = "TOGGLE_CONFLICT"
	ActionSecretPostGrant = "SECRET_POST_GRANT"

	ResourceUser    = "USER"
	ResourceSession = "SESSION"
	ResourcePost    = "POST"
)

// AuditService writes the append-only audit trail. Nothing in the backend
// reads entries back except the admin listing endpoint.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// AuditEntry is what callers hand to Record. OldValue/NewValue are
// JSON-marshaled as-is.
type AuditEntry struct {
	ActionType   string
	ResourceType string
	ResourceID   string
	UserID       *string
	IPAddress    string
	UserAgent    string
	OldValue     interface{}
	NewValue     interface{}
}

// Record persists an audit entry. Failures are logged, never propagated:
// an audit-write problem must not fail the operation being audited.
func (s *AuditService) Record(e AuditEntry) {
	row := &models.AuditLog{
		AuditID:      utils.NewExternalID("AUDIT"),
		UserID:       e.UserID,
		ActionType:   e.ActionType,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		IPAddress:    e.IPAddress,
		UserAgent:    e.UserAgent,
		OldValue:     marshalValue(e.OldValue),
		NewValue:     marshalValue(e.NewValue),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.db.Create(row).Error; err != nil {
		logger.Error().Err(err).
			Str("action", e.ActionType).
			Str("resource", e.ResourceType).
			Msg("failed to write audit log")
	}
}

func marshalValue(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

type AuditLogListRequest struct {
	Page         int    `form:"page" binding:"min=0"`
	PageSize     int    `form:"page_size" binding:"min=0,max=100"`
	ActionType   string `form:"action_type"`
	ResourceType string `form:"resource_type"`
	UserID       string `form:"user_id"`
	StartDate    string `form:"start_date"`
	EndDate      string `form:"end_date"`
}

type AuditLogListResponse struct {
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Items    []models.AuditLog `json:"items"`
}

func (s *AuditService) List(req *AuditLogListRequest) (*AuditLogListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	var logs []models.AuditLog
	var total int64

	query := s.db.Model(&models.AuditLog{})

	if req.ActionType != "" {
		query = query.Where("action_type = ?", req.ActionType)
	}
	if req.ResourceType != "" {
		query = query.Where("resource_type = ?", req.ResourceType)
	}
	if req.UserID != "" {
		query = query.Where("user_id = ?", req.UserID)
	}
	if req.StartDate != "" {
		query = query.Where("created_at >= ?", req.StartDate)
	}
	if req.EndDate != "" {
		query = query.Where("created_at <= ?", req.EndDate+" 23:59:59")
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}

	return &AuditLogListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    logs,
	}, nil
}

// CleanupOld deletes audit rows older than retentionDays and returns how
// many were removed.
func (s *AuditService) CleanupOld(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
