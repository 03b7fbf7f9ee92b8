package main

import (
	"github.com/clearview-hq/clearview/backend/internal/handlers"
	"github.com/clearview-hq/clearview/backend/internal/middleware"
	"github.com/clearview-hq/clearview/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for the public secure-link endpoints
	linkLimiter := middleware.NewRateLimiter(10, 20)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "clearview"})
	})

	projectHandler := handlers.NewProjectHandler(svc.db)
	memberHandler := handlers.NewProjectMemberHandler(svc.db, svc.authService)
	changeOrderHandler := handlers.NewChangeOrderHandler(svc.db)
	clientProfileHandler := handlers.NewClientProfileHandler(svc.db)
	systemHandler := handlers.NewSystemHandler(svc.db)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
		}

		// Secure-link routes used by external clients (public, token guarded)
		public := api.Group("/change-orders", linkLimiter.Middleware())
		{
			public.GET("/verify", changeOrderHandler.Verify)
			public.POST("/respond", changeOrderHandler.Respond)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Account
			protected.GET("/auth/me", svc.authHandler.Me)
			protected.PUT("/auth/me", svc.authHandler.UpdateProfile)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Invites
			protected.POST("/invites/accept", memberHandler.Accept)

			// Projects
			protected.GET("/projects", projectHandler.List)
			protected.POST("/projects", projectHandler.Create)
			protected.GET("/projects/:id", projectHandler.Get)
			protected.PUT("/projects/:id", projectHandler.Update)
			protected.DELETE("/projects/:id", projectHandler.Delete)

			// Project roster
			protected.GET("/projects/:id/members", memberHandler.List)
			protected.POST("/projects/:id/invites", memberHandler.Invite)
			protected.PUT("/projects/:id/members/:memberId", memberHandler.UpdateRole)
			protected.DELETE("/projects/:id/members/:memberId", memberHandler.Remove)

			// Client profile
			protected.GET("/projects/:id/client", clientProfileHandler.Get)
			protected.PUT("/projects/:id/client", clientProfileHandler.Upsert)

			// Change orders
			protected.GET("/projects/:id/change-orders", changeOrderHandler.List)
			protected.POST("/projects/:id/change-orders", changeOrderHandler.Create)
			protected.GET("/change-orders/:id", changeOrderHandler.Get)
			protected.PUT("/change-orders/:id", changeOrderHandler.Update)
			protected.DELETE("/change-orders/:id", changeOrderHandler.Delete)
			protected.POST("/change-orders/:id/send", changeOrderHandler.Send)
			protected.POST("/change-orders/:id/decide", changeOrderHandler.Decide)
			protected.POST("/change-orders/:id/revert", changeOrderHandler.Revert)

			// Server settings and operation log
			protected.GET("/system/email-config", systemHandler.GetEmailConfig)
			protected.PUT("/system/email-config", systemHandler.UpdateEmailConfig)
			protected.POST("/system/email-config/test", systemHandler.SendTestEmail)
			protected.GET("/system/logs", systemHandler.ListLogs)
			protected.GET("/system/logs/modules", systemHandler.ListLogModules)
		}
	}
}
