package models

import "time"

// User is a principal. Accounts are never physically deleted; IsDeleted is
// flipped instead and every lookup filters on it.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       string     `gorm:"uniqueIndex;size:100;not null" json:"user_id"` // external id, USER_XXXXXXXX
	Username     string     `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string     `gorm:"size:255" json:"-"`
	Name         string     `gorm:"size:100" json:"name,omitempty"`
	Nickname     string     `gorm:"size:100" json:"nickname,omitempty"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	IsDeleted    bool       `gorm:"default:false;index" json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "users" }
