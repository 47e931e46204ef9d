package main

import (
	"github.com/gin-gonic/gin"
	"github.com/openboard-io/openboard/backend/internal/middleware"
	"github.com/openboard-io/openboard/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for credential endpoints
	loginLimiter := middleware.NewRateLimiter(
		svc.cfg.RateLimit.LoginRPS, svc.cfg.RateLimit.LoginBurst)

	// Health check
	r.GET("/health", svc.healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", loginLimiter.Middleware(), svc.authHandler.Register)
			auth.POST("/login", loginLimiter.Middleware(), svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
			auth.POST("/logout", middleware.OptionalAuth(svc.authService), svc.authHandler.Logout)
		}

		// Post reads work anonymously; a valid bearer token upgrades them.
		posts := api.Group("/posts")
		posts.Use(middleware.OptionalAuth(svc.authService))
		{
			posts.GET("/:id", svc.boardHandler.GetPost)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(svc.authService))
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)

			// Post interactions
			protected.POST("/posts/:id/like", svc.boardHandler.ToggleLike)
			protected.POST("/posts/:id/bookmark", svc.boardHandler.ToggleBookmark)
			protected.POST("/posts/:id/verify-password", svc.boardHandler.VerifyPassword)
		}

		// Admin only routes
		admin := api.Group("/admin")
		admin.Use(
			middleware.AuthRequired(svc.authService),
			middleware.AdminRequired(svc.roleService),
			middleware.AdminAudit(svc.auditService),
		)
		{
			admin.GET("/audit-logs", svc.adminHandler.ListAuditLogs)
			admin.GET("/sessions", svc.adminHandler.ListSessions)
		}
	}
}
