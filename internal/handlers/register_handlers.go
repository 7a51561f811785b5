package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/temmy669/imprest-portal-back-up/internal/core/ports/services"
	"github.com/temmy669/imprest-portal-back-up/internal/middleware"
	"github.com/temmy669/imprest-portal-back-up/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	// Delegate route registration to specific handlers, passing required services
	registerPurchaseRoutes(v1, services.Purchase, services.Notifier)
	registerReimbursementRoutes(v1, services.Reimbursement, services.Notifier, cfg.ReceiptUploadDir)
	registerStoreRoutes(v1, services.Store)
	registerBankRoutes(v1, services.Bank)
	registerLimitRoutes(v1, services.Limit)
	registerReportingRoutes(v1, services.Reporting)
}
