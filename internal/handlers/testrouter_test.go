package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/openboard-io/openboard/backend/internal/config"
	"github.com/openboard-io/openboard/backend/internal/middleware"
	"github.com/openboard-io/openboard/backend/internal/models"
	"github.com/openboard-io/openboard/backend/internal/services"
	"github.com/openboard-io/openboard/backend/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *services.AuthService
	roles  *services.RoleService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Role{}, &models.UserRole{}, &models.RefreshToken{},
		&models.Board{}, &models.Post{}, &models.PostLike{}, &models.Bookmark{},
		&models.PostView{}, &models.AuditLog{},
	); err != nil {
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
	board := services.NewBoardService(db, audit)
	secret := services.NewSecretPostService(board, codec, audit)

	authHandler := NewAuthHandler(auth, audit)
	boardHandler := NewBoardHandler(board, secret)
	adminHandler := NewAdminHandler(audit, auth)

	r := gin.New()
	api := r.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.Refresh)
		api.POST("/auth/logout", middleware.OptionalAuth(auth), authHandler.Logout)

		posts := api.Group("/posts")
		posts.Use(middleware.OptionalAuth(auth))
		posts.GET("/:id", boardHandler.GetPost)

		protected := api.Group("")
		protected.Use(middleware.AuthRequired(auth))
		{
			protected.GET("/auth/me", authHandler.GetCurrentUser)
			protected.POST("/posts/:id/like", boardHandler.ToggleLike)
			protected.POST("/posts/:id/bookmark", boardHandler.ToggleBookmark)
			protected.POST("/posts/:id/verify-password", boardHandler.VerifyPassword)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(auth), middleware.AdminRequired(roles))
		{
			admin.GET("/audit-logs", adminHandler.ListAuditLogs)
			admin.GET("/sessions", adminHandler.ListSessions)
		}
	}

	return &testApp{router: r, db: db, auth: auth, roles: roles}
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.RemoteAddr = "192.0.2.10:40000"

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) doWithPostToken(t *testing.T, method, path, token, postToken string) *httptest.ResponseRecorder {
	t.Helper()

	req, _ := http.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set(PostTokenHeader, postToken)
	req.RemoteAddr = "192.0.2.10:40000"

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Code    int                    `json:"code"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to parse response %q: %v", w.Body.String(), err)
	}
	return envelope.Data
}

func (a *testApp) registerAndLogin(t *testing.T, username string) (accessToken, refreshToken string) {
	t.Helper()

	w := a.do(t, "POST", "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct horse battery staple",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", w.Code, w.Body.String())
	}

	w = a.do(t, "POST", "/api/auth/login", "", map[string]string{
		"username": username,
		"password": "correct horse battery staple",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}

	data := decodeData(t, w)
	tokens := data["tokens"].(map[string]interface{})
	return tokens["access_token"].(string), tokens["refresh_token"].(string)
}
