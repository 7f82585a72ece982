package routes

import (
	"github.com/gin-gonic/gin"

	"bizcard/internal/interfaces/http/handlers"
)

// PaymentRouteConfig holds dependencies for the public payment routes.
type PaymentRouteConfig struct {
	CheckoutHandler *handlers.CheckoutHandler
	PaymentHandler  *handlers.PaymentHandler
	WebhookHandler  *handlers.WebhookHandler
}

// SetupPaymentRoutes configures checkout, payment status and gateway webhook routes.
func SetupPaymentRoutes(api *gin.RouterGroup, cfg *PaymentRouteConfig) {
	api.POST("/checkouts", cfg.CheckoutHandler.CreateCheckout)

	payments := api.Group("/payments")
	{
		payments.GET("/:id", cfg.PaymentHandler.GetPayment)
		payments.POST("/:id/confirm", cfg.PaymentHandler.ConfirmPayment)
	}

	webhooks := api.Group("/webhooks")
	{
		webhooks.POST("/stripe", cfg.WebhookHandler.HandleStripeWebhook)
	}
}
