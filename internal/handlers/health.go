package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openboard-io/openboard/backend/internal/models"
)

// HealthHandler provides the health check endpoint.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of the service and its database.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	var activeSessions int64
	if overall == "healthy" {
		models.GetDB().Model(&models.RefreshToken{}).
			Where("revoked_at IS NULL AND expires_at > ?", time.Now().UTC()).
			Count(&activeSessions)
	}

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "openboard",
		"components": gin.H{
			"database":        dbStatus,
			"active_sessions": activeSessions,
		},
	})
}
