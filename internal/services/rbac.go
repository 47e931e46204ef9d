package services

import (
	"errors"
	"time"

	"github.com/openboard-io/openboard/backend/internal/models"
	"gorm.io/gorm"
)

// RoleService answers role-membership questions. Authorization here is
// coarse: a grant counts only while the grant and the role are both active,
// not deleted, and the grant is unexpired.
type RoleService struct {
	db *gorm.DB
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{db: db}
}

// HasRole reports whether the user holds a live grant of the given role code.
func (s *RoleService) HasRole(userID, roleCode string) (bool, error) {
	var count int64
	err := s.db.Model(&models.UserRole{}).
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ?", userID).
		Where("user_roles.is_active = ? AND user_roles.is_deleted = ?", true, false).
		Where("user_roles.expires_at IS NULL OR user_roles.expires_at > ?", time.Now().UTC()).
		Where("roles.role_code = ? AND roles.is_active = ? AND roles.is_deleted = ?", roleCode, true, false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsAdmin is HasRole("ADMIN"); the admin surfaces gate on this.
func (s *RoleService) IsAdmin(userID string) (bool, error) {
	return s.HasRole(userID, "ADMIN")
}

// AssignRole grants roleCode to the user, optionally with an expiry.
// Re-granting an existing live membership is a no-op.
func (s *RoleService) AssignRole(userID, roleCode string, expiresAt *time.Time) error {
	var role models.Role
	err := s.db.Where("role_code = ? AND is_deleted = ?", roleCode, false).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gorm.ErrRecordNotFound
		}
		return err
	}

	var count int64
	if err := s.db.Model(&models.UserRole{}).
		Where("user_id = ? AND role_id = ? AND is_active = ? AND is_deleted = ?",
			userID, role.ID, true, false).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	grant := models.UserRole{
		UserID:    userID,
		RoleID:    role.ID,
		ExpiresAt: expiresAt,
		IsActive:  true,
	}
	return s.db.Create(&grant).Error
}

// RevokeRole deactivates a live grant. Missing grants are a no-op.
func (s *RoleService) RevokeRole(userID, roleCode string) error {
	var role models.Role
	err := s.db.Where("role_code = ?", roleCode).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	return s.db.Model(&models.UserRole{}).
		Where("user_id = ? AND role_id = ? AND is_active = ?", userID, role.ID, true).
		Update("is_active", false).Error
}
