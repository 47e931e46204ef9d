package models

import "time"

// Role is a lookup row; the only code the core interprets is "ADMIN".
type Role struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoleCode  string    `gorm:"uniqueIndex;size:50;not null" json:"role_code"` // ADMIN, USER, MODERATOR
	Name      string    `gorm:"size:100" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	IsDeleted bool      `gorm:"default:false" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Role) TableName() string { return "roles" }

// UserRole assigns a role to a user, optionally until ExpiresAt.
type UserRole struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    string     `gorm:"index;size:100;not null" json:"user_id"`
	RoleID    uint       `gorm:"index;not null" json:"role_id"`
	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"` // nil means no expiry
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	IsDeleted bool       `gorm:"default:false" json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (UserRole) TableName() string { return "user_roles" }
