package services

import (
	"testing"

	"github.com/openboard-io/openboard/backend/internal/config"
	"github.com/openboard-io/openboard/backend/internal/models"
	"github.com/openboard-io/openboard/backend/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.UserRole{},
		&models.RefreshToken{},
		&models.Board{},
		&models.Post{},
		&models.PostLike{},
		&models.Bookmark{},
		&models.PostView{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newTestCodec(t *testing.T) *utils.TokenCodec {
	t.Helper()
	return utils.NewTokenCodec(&config.JWTConfig{
		Secret:               "test-secret-key",
		AccessTTLMinutes:     30,
		RefreshTTLDays:       7,
		SecretPostTTLMinutes: 30,
	})
}

func newTestAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	audit := NewAuditService(db)
	return NewAuthService(db, newTestCodec(t), audit), db
}

func registerTestUser(t *testing.T, auth *AuthService, username string) *models.User {
	t.Helper()
	user, err := auth.Register(&RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct horse battery staple",
	})
	if err != nil {
		t.Fatalf("Register(%q) failed: %v", username, err)
	}
	return user
}
