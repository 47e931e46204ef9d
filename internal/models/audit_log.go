package models

import "time"

// AuditLog is append-only; nothing in the backend reads it except the admin
// listing endpoint.
type AuditLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AuditID      string    `gorm:"uniqueIndex;size:100;not null" json:"audit_id"` // external id, AUDIT_XXXXXXXX
	UserID       *string   `gorm:"index;size:100" json:"user_id,omitempty"`
	ActionType   string    `gorm:"size:50;index;not null" json:"action_type"` // LOGIN, LOGOUT, TOKEN_REFRESH, ...
	ResourceType string    `gorm:"size:50;index" json:"resource_type,omitempty"`
	ResourceID   string    `gorm:"size:100" json:"resource_id,omitempty"`
	OldValue     string    `gorm:"type:text" json:"old_value,omitempty"`
	NewValue     string    `gorm:"type:text" json:"new_value,omitempty"`
	IPAddress    string    `gorm:"size:64" json:"ip_address,omitempty"`
	UserAgent    string    `gorm:"size:500" json:"user_agent,omitempty"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
