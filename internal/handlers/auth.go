package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/openboard-io/openboard/backend/internal/middleware"
	"github.com/openboard-io/openboard/backend/internal/services"
	"github.com/openboard-io/openboard/backend/pkg/logger"
	"github.com/openboard-io/openboard/backend/pkg/response"
)

type AuthHandler struct {
	authService  *services.AuthService
	auditService *services.AuditService
}

func NewAuthHandler(authService *services.AuthService, auditService *services.AuditService) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		auditService: auditService,
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPairResponse struct {
	AccessToken     string `json:"access_token"`
	AccessExpireAt  int64  `json:"access_expire_at"`
	RefreshToken    string `json:"refresh_token"`
	RefreshExpireAt int64  `json:"refresh_expire_at,omitempty"`
	TokenType       string `json:"token_type"`
}

// Register creates a new account
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			response.Conflict(c, "username or email already taken")
			return
		}
		response.ServerError(c, "registration failed")
		return
	}

	h.auditService.Record(services.AuditEntry{
		ActionType:   services.ActionRegister,
		ResourceType: services.ResourceUser,
		ResourceID:   user.UserID,
		UserID:       &user.UserID,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
	})

	response.Created(c, user)
}

// Login verifies credentials and opens a session
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(&req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			response.Unauthorized(c, "invalid username or password")
		case errors.Is(err, services.ErrAccountInactive):
			response.Forbidden(c, "account is deactivated")
		case errors.Is(err, services.ErrAccountDeleted):
			response.Forbidden(c, "account no longer exists")
		default:
			response.ServerError(c, "login failed")
		}
		return
	}

	response.Success(c, gin.H{
		"tokens": tokenPairResponse{
			AccessToken:     result.AccessToken,
			AccessExpireAt:  result.AccessExpireAt.Unix(),
			RefreshToken:    result.RefreshToken,
			RefreshExpireAt: result.RefreshExpireAt.Unix(),
			TokenType:       "bearer",
		},
		"user": result.User,
	})
}

// Refresh exchanges a refresh token for a new access token
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Refresh(req.RefreshToken, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		// Every rejection class looks the same to the caller; only true
		// storage failures surface as 500.
		if errors.Is(err, services.ErrInvalidToken) || errors.Is(err, services.ErrUserNotFound) {
			response.Unauthorized(c, "invalid or expired refresh token")
			return
		}
		logger.Error().Err(err).Msg("refresh failed")
		response.ServerError(c, "token refresh failed")
		return
	}

	response.Success(c, tokenPairResponse{
		AccessToken:    result.AccessToken,
		AccessExpireAt: result.AccessExpireAt.Unix(),
		RefreshToken:   result.RefreshToken,
		TokenType:      "bearer",
	})
}

// Logout revokes the presented session, or every active session when the
// body names no refresh token. It always acknowledges: revocation problems
// are logged server-side. The route takes an optional bearer token; without
// one the refresh token itself names the session to close.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req logoutRequest
	// Body is optional.
	_ = c.ShouldBindJSON(&req)

	userID := middleware.GetUserID(c)
	clientIP := c.ClientIP()
	userAgent := c.Request.UserAgent()

	var err error
	switch {
	case userID == "" && req.RefreshToken != "":
		err = h.authService.LogoutByRefreshToken(req.RefreshToken, clientIP, userAgent)
	case userID == "":
		// Anonymous with nothing to revoke; still a logout.
	case req.RefreshToken != "":
		err = h.authService.Logout(userID, clientIP, userAgent, req.RefreshToken)
	default:
		// No token named: close every active session for the user.
		err = h.authService.Logout(userID, clientIP, userAgent, "")
	}
	if err != nil {
		logger.Warn().Err(err).Str("user_id", userID).Msg("logout revocation failed")
	}

	response.Success(c, gin.H{"message": "logged out"})
}

// GetCurrentUser returns the authenticated principal
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.authService.GetUserByExternalID(middleware.GetUserID(c))
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}

	response.Success(c, user)
}
