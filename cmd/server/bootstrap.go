package main

import (
	"github.com/openboard-io/openboard/backend/internal/config"
	"github.com/openboard-io/openboard/backend/internal/handlers"
	"github.com/openboard-io/openboard/backend/internal/models"
	"github.com/openboard-io/openboard/backend/internal/services"
	"github.com/openboard-io/openboard/backend/internal/utils"
	"github.com/openboard-io/openboard/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg                *config.Config
	authService        *services.AuthService
	roleService        *services.RoleService
	auditService       *services.AuditService
	maintenanceService *services.MaintenanceService
	authHandler        *handlers.AuthHandler
	boardHandler       *handlers.BoardHandler
	adminHandler       *handlers.AdminHandler
	healthHandler      *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default roles
	if err := models.SeedDefaultRoles(models.GetDB()); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default roles")
	}

	db := models.GetDB()
	codec := utils.NewTokenCodec(&cfg.JWT)
	auditService := services.NewAuditService(db)
	authService := services.NewAuthService(db, codec, auditService)
	roleService := services.NewRoleService(db)
	boardService := services.NewBoardService(db, auditService)
	secretService := services.NewSecretPostService(boardService, codec, auditService)

	// Start the retention scheduler
	maintenanceService := services.NewMaintenanceService(db, auditService, &cfg.Audit)
	maintenanceService.StartScheduler()

	// Create default admin user
	if err := authService.CreateAdminIfNotExists(roleService); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		cfg:                cfg,
		authService:        authService,
		roleService:        roleService,
		auditService:       auditService,
		maintenanceService: maintenanceService,
		authHandler:        handlers.NewAuthHandler(authService, auditService),
		boardHandler:       handlers.NewBoardHandler(boardService, secretService),
		adminHandler:       handlers.NewAdminHandler(auditService, authService),
		healthHandler:      handlers.NewHealthHandler(),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.maintenanceService.StopScheduler()
	logger.Info().Msg("All schedulers stopped")
}
