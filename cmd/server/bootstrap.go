package main

import (
	"context"

	"github.com/clearview-hq/clearview/backend/internal/config"
	"github.com/clearview-hq/clearview/backend/internal/handlers"
	"github.com/clearview-hq/clearview/backend/internal/models"
	"github.com/clearview-hq/clearview/backend/internal/services"
	"github.com/clearview-hq/clearview/backend/internal/utils"
	"github.com/clearview-hq/clearview/backend/pkg/logger"
	"gorm.io/gorm"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	db                 *gorm.DB
	linkCleanupService *services.LinkCleanupService
	notifyQueue        services.NotifyQueue
	worker             *services.Worker
	authService        *services.AuthService
	authHandler        *handlers.AuthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)
	services.SetAppConfig(&cfg.App)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	db := models.GetDB()

	services.InitSystemLogger(db)
	services.StartLogCleanupScheduler(db)

	// Expired secure link purge
	linkCleanupService := services.NewLinkCleanupService(db)
	linkCleanupService.StartScheduler()

	// Signature image storage
	services.InitStorage(&cfg.Storage)

	// Notification queue (Redis-backed if enabled, otherwise in-process)
	emailService := services.NewEmailService(db)
	deliver := func(ctx context.Context, task *services.EmailTask) error {
		return emailService.Send(task.To, task.Subject, task.Body)
	}
	notifyQueue := services.InitNotifyQueue(cfg)
	if syncQueue, ok := notifyQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(deliver)
	}

	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(deliver)
			worker.Start()
		}
	}

	authService := services.NewAuthService(db, &cfg.JWT)

	return &appServices{
		db:                 db,
		linkCleanupService: linkCleanupService,
		notifyQueue:        notifyQueue,
		worker:             worker,
		authService:        authService,
		authHandler:        handlers.NewAuthHandler(db, cfg),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.linkCleanupService.StopScheduler()
	logger.Info().Msg("All schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.notifyQueue != nil {
		s.notifyQueue.Close()
	}
}
