package models

import (
	"fmt"

	"github.com/openboard-io/openboard/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Toggle semantics rely on errors.Is(err, gorm.ErrDuplicatedKey)
		// working across all three dialects.
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&Role{},
		&UserRole{},
		&RefreshToken{},
		&Board{},
		&Post{},
		&PostLike{},
		&Bookmark{},
		&PostView{},
		&AuditLog{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultRoles creates the role rows the core depends on.
func SeedDefaultRoles(db *gorm.DB) error {
	defaults := []Role{
		{RoleCode: "ADMIN", Name: "Administrator", IsActive: true},
		{RoleCode: "USER", Name: "User", IsActive: true},
		{RoleCode: "MODERATOR", Name: "Moderator", IsActive: true},
	}

	for _, role := range defaults {
		var count int64
		db.Model(&Role{}).Where("role_code = ?", role.RoleCode).Count(&count)
		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
