package routes

import (
	"github.com/gin-gonic/gin"

	"bizcard/internal/interfaces/http/handlers"
	"bizcard/internal/interfaces/http/middleware"
	"bizcard/internal/shared/constants"
)

// AdminRouteConfig holds dependencies for operator routes.
type AdminRouteConfig struct {
	AdminPaymentHandler  *handlers.AdminPaymentHandler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
}

// SetupAdminRoutes configures operator override routes. Every route requires
// an operator token and a matching policy.
func SetupAdminRoutes(api *gin.RouterGroup, cfg *AdminRouteConfig) {
	admin := api.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireOperator())
	{
		payments := admin.Group("/payments")
		payments.POST("/:id/force-status",
			cfg.PermissionMiddleware.RequirePermission(constants.ResourcePayments, constants.ActionForceStatus),
			cfg.AdminPaymentHandler.ForceStatus,
		)
		payments.GET("/:id/audit",
			cfg.PermissionMiddleware.RequirePermission(constants.ResourcePayments, constants.ActionReadAudit),
			cfg.AdminPaymentHandler.ListAudit,
		)
	}
}
