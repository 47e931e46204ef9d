package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/openboard-io/openboard/backend/internal/services"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// AuthRequired validates the bearer access token and loads the principal
// into the request context. The principal is checked against the database
// on every request, so a deactivated account loses access immediately.
func AuthRequired(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		user, err := auth.ResolvePrincipal(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextUserID, user.UserID)
		c.Set(ContextUsername, user.Username)

		c.Next()
	}
}

// OptionalAuth loads the principal when a valid bearer token is present and
// stays silent otherwise. Read endpoints use it so anonymous and logged-in
// traffic share one handler.
func OptionalAuth(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if user, err := auth.ResolvePrincipal(token); err == nil {
				c.Set(ContextUserID, user.UserID)
				c.Set(ContextUsername, user.Username)
			}
		}
		c.Next()
	}
}

// AdminRequired gates a route on a live ADMIN role grant. It must run
// after AuthRequired.
func AdminRequired(roles *services.RoleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		isAdmin, err := roles.IsAdmin(userID)
		if err != nil || !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserID gets the current user's external id from context, "" when
// anonymous.
func GetUserID(c *gin.Context) string {
	if id, exists := c.Get(ContextUserID); exists {
		return id.(string)
	}
	return ""
}

// GetUsername gets the current username from context.
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get(ContextUsername); exists {
		return username.(string)
	}
	return ""
}
