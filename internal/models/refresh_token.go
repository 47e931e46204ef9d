package models

import "time"

// RefreshToken is one issued session record. Only a hash of the raw token is
// stored (SHA-256 digested, then bcrypt), so there is no deterministic lookup
// column: validation scans a user's active records and verifies each hash.
type RefreshToken struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	TokenID    string     `gorm:"uniqueIndex;size:100;not null" json:"token_id"` // external id, RT_XXXXXXXX
	UserID     string     `gorm:"index;size:100;not null" json:"user_id"`
	TokenHash  string     `gorm:"size:255;not null" json:"-"`
	DeviceInfo string     `gorm:"size:255" json:"device_info,omitempty"`
	IPAddress  string     `gorm:"size:64" json:"ip_address,omitempty"`
	ExpiresAt  time.Time  `gorm:"index;not null" json:"expires_at"`
	RevokedAt  *time.Time `gorm:"index" json:"revoked_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

// Active reports whether the record can still authenticate a refresh call.
func (t *RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
