package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bizcard/internal/interfaces/http/middleware"
	"bizcard/internal/interfaces/http/routes"
	"bizcard/internal/shared/utils"
)

// Router owns the gin engine and the container behind it.
type Router struct {
	container *Container
}

func NewRouter(container *Container) *Router {
	return &Router{container: container}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	c := r.container
	engine := c.engine

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(c.log))
	engine.Use(middleware.Recovery(c.log))
	engine.Use(middleware.Metrics())
	engine.Use(middleware.SecurityHeaders())
	engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))

	engine.GET("/health", r.health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")

	routes.SetupPaymentRoutes(api, &routes.PaymentRouteConfig{
		CheckoutHandler: c.hdlrs.checkoutHandler,
		PaymentHandler:  c.hdlrs.paymentHandler,
		WebhookHandler:  c.hdlrs.webhookHandler,
	})

	routes.SetupAdminRoutes(api, &routes.AdminRouteConfig{
		AdminPaymentHandler:  c.hdlrs.adminPaymentHandler,
		AuthMiddleware:       c.authMiddleware,
		PermissionMiddleware: c.permissionMiddleware,
	})
}

func (r *Router) health(ctx *gin.Context) {
	sqlDB, err := r.container.db.DB()
	if err != nil || sqlDB.PingContext(ctx.Request.Context()) != nil {
		utils.ErrorResponse(ctx, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	utils.SuccessResponse(ctx, http.StatusOK, "ok", nil)
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.container.engine
}

// StartBackgroundJobs starts scheduled jobs such as the pending sweep.
func (r *Router) StartBackgroundJobs() {
	r.container.StartBackgroundJobs()
}

// Shutdown gracefully shuts down background services
func (r *Router) Shutdown() {
	r.container.Shutdown()
}
