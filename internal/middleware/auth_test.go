package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/openboard-io/openboard/backend/internal/config"
	"github.com/openboard-io/openboard/backend/internal/models"
	"github.com/openboard-io/openboard/backend/internal/services"
	"github.com/openboard-io/openboard/backend/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupAuth(t *testing.T) (*services.AuthService, *services.RoleService, string) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Role{}, &models.UserRole{},
		&models.RefreshToken{}, &models.AuditLog{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	if err := models.SeedDefaultRoles(db); err != nil {
		t.Fatalf("seeding roles failed: %v", err)
	}

	codec := utils.NewTokenCodec(&config.JWTConfig{
		Secret:               "test-secret-key",
		AccessTTLMinutes:     30,
		RefreshTTLDays:       7,
		SecretPostTTLMinutes: 30,
	})
	audit := services.NewAuditService(db)
	auth := services.NewAuthService(db, codec, audit)
	roles := services.NewRoleService(db)

	user, err := auth.Register(&services.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse battery staple",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return auth, roles, user.UserID
}

func loginToken(t *testing.T, auth *services.AuthService) string {
	t.Helper()
	result, err := auth.Login(&services.LoginRequest{
		Username: "alice",
		Password: "correct horse battery staple",
	}, "127.0.0.1", "")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return result.AccessToken
}

func TestAuthRequired(t *testing.T) {
	auth, _, _ := setupAuth(t)
	token := loginToken(t, auth)

	router := gin.New()
	router.Use(AuthRequired(auth))
	router.GET("/me", func(c *gin.Context) {
		c.JSON(200, gin.H{"user_id": GetUserID(c), "username": GetUsername(c)})
	})

	tests := []struct {
		name       string
		authHeader string
		wantCode   int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			router.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, expected %d", w.Code, tt.wantCode)
			}
		})
	}
}

func TestAuthRequired_RejectsRefreshToken(t *testing.T) {
	auth, _, _ := setupAuth(t)
	result, err := auth.Login(&services.LoginRequest{
		Username: "alice",
		Password: "correct horse battery staple",
	}, "", "")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	router := gin.New()
	router.Use(AuthRequired(auth))
	router.GET("/me", func(c *gin.Context) { c.Status(200) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+result.RefreshToken)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("refresh token accepted as bearer credential, status = %d", w.Code)
	}
}

func TestOptionalAuth(t *testing.T) {
	auth, _, userID := setupAuth(t)
	token := loginToken(t, auth)

	router := gin.New()
	router.Use(OptionalAuth(auth))
	router.GET("/posts/1", func(c *gin.Context) {
		c.JSON(200, gin.H{"user_id": GetUserID(c)})
	})

	// Anonymous request passes through with no principal.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts/1", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("anonymous request status = %d, expected 200", w.Code)
	}

	// Invalid token is ignored, not rejected.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/posts/1", nil)
	req.Header.Set("Authorization", "Bearer junk")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("request with junk token status = %d, expected 200", w.Code)
	}

	// Valid token sets the principal.
	seen := ""
	router2 := gin.New()
	router2.Use(OptionalAuth(auth))
	router2.GET("/posts/1", func(c *gin.Context) {
		seen = GetUserID(c)
		c.Status(200)
	})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/posts/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router2.ServeHTTP(w, req)
	if seen != userID {
		t.Errorf("principal = %q, expected %q", seen, userID)
	}
}

func TestAdminRequired(t *testing.T) {
	auth, roles, userID := setupAuth(t)
	token := loginToken(t, auth)

	router := gin.New()
	router.Use(AuthRequired(auth), AdminRequired(roles))
	router.GET("/admin/audit-logs", func(c *gin.Context) { c.Status(200) })

	// Plain user is forbidden.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin/audit-logs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-admin status = %d, expected 403", w.Code)
	}

	// After an ADMIN grant the same token passes.
	if err := roles.AssignRole(userID, "ADMIN", nil); err != nil {
		t.Fatalf("AssignRole failed: %v", err)
	}
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/admin/audit-logs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("admin status = %d, expected 200", w.Code)
	}
}

func TestAdminRequired_NoPrincipal(t *testing.T) {
	_, roles, _ := setupAuth(t)

	router := gin.New()
	router.Use(AdminRequired(roles))
	router.GET("/admin/audit-logs", func(c *gin.Context) { c.Status(200) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin/audit-logs", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, expected 401 without principal", w.Code)
	}
}
