package http

import (
	"bizcard/internal/interfaces/http/handlers"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	checkoutHandler     *handlers.CheckoutHandler
	paymentHandler      *handlers.PaymentHandler
	webhookHandler      *handlers.WebhookHandler
	adminPaymentHandler *handlers.AdminPaymentHandler
}

// ============================================================
// Section 3: Handlers
// ============================================================

func (c *Container) initHandlers() {
	log := c.log

	c.hdlrs = &allHandlers{
		checkoutHandler: handlers.NewCheckoutHandler(c.ucs.createCheckout, log),
		paymentHandler:  handlers.NewPaymentHandler(c.ucs.getPayment, c.ucs.confirmPayment, log),
		webhookHandler: handlers.NewWebhookHandler(c.ucs.handleWebhook, handlers.WebhookConfig{
			MaxBodyBytes: c.cfg.Gateway.WebhookMaxBytes,
			Deadline:     c.cfg.Gateway.WebhookDeadline,
		}, log.Named("webhook")),
		adminPaymentHandler: handlers.NewAdminPaymentHandler(c.ucs.forcePaymentStatus, c.ucs.listPaymentAudit, log.Named("admin")),
	}
}
