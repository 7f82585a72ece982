package http

import (
	"bizcard/internal/application/payment/usecases"
	"bizcard/internal/infrastructure/cache"
	"bizcard/internal/infrastructure/ratelimit"
	shareddb "bizcard/internal/shared/db"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	reconciler           *usecases.Reconciler
	createCheckout       *usecases.CreateCheckoutUseCase
	getPayment           *usecases.GetPaymentUseCase
	confirmPayment       *usecases.ConfirmPaymentUseCase
	handleWebhook        *usecases.HandleWebhookUseCase
	forcePaymentStatus   *usecases.ForcePaymentStatusUseCase
	listPaymentAudit     *usecases.ListPaymentAuditUseCase
	sweepPendingPayments *usecases.SweepPendingPaymentsUseCase
}

func newUseCases(c *Container, gate usecases.PublicationGate, issuer usecases.IssuanceTrigger) *allUseCases {
	cfg := c.cfg
	log := c.log
	repos := c.repos

	reconciler := usecases.NewReconciler(
		repos.paymentRepo,
		repos.subscriptionRepo,
		repos.cardRepo,
		c.gateway,
		gate,
		issuer,
		log.Named("reconciler"),
	)

	statusCache := cache.NewRedisIntentStatusCache(c.redis, cfg.Confirmation.StatusCacheTTL, log)
	limiter := ratelimit.NewRedisRateLimiter(c.redis)

	return &allUseCases{
		reconciler: reconciler,
		createCheckout: usecases.NewCreateCheckoutUseCase(
			repos.paymentRepo,
			repos.cardRepo,
			c.gateway,
			gate,
			reconciler,
			usecases.PricingConfig{
				Currency:          cfg.Billing.Currency,
				NewSubscriberFee:  cfg.Billing.NewSubscriberFee,
				ExistingMemberFee: cfg.Billing.ExistingMemberFee,
				TaxBasisPoints:    cfg.Billing.TaxBasisPoints,
			},
			log.Named("checkout"),
		),
		getPayment: usecases.NewGetPaymentUseCase(repos.paymentRepo, repos.cardRepo, log),
		confirmPayment: usecases.NewConfirmPaymentUseCase(
			repos.paymentRepo,
			repos.cardRepo,
			c.gateway,
			reconciler,
			statusCache,
			limiter,
			usecases.ConfirmPaymentConfig{RequestsPerMinute: cfg.Confirmation.RequestsPerMinute},
			log.Named("confirm"),
		),
		handleWebhook: usecases.NewHandleWebhookUseCase(
			c.verifier,
			repos.paymentRepo,
			repos.subscriptionRepo,
			reconciler,
			log.Named("webhook"),
		),
		forcePaymentStatus: usecases.NewForcePaymentStatusUseCase(
			repos.paymentRepo,
			repos.auditRepo,
			reconciler,
			shareddb.NewTransactionManager(c.db),
			log.Named("admin"),
		),
		listPaymentAudit:   usecases.NewListPaymentAuditUseCase(repos.paymentRepo, repos.auditRepo),
		sweepPendingPayments: usecases.NewSweepPendingPaymentsUseCase(
			repos.paymentRepo,
			c.gateway,
			reconciler,
			usecases.SweepConfig{
				MinAge:    cfg.Sweeper.MinAge,
				BatchSize: cfg.Sweeper.BatchSize,
			},
			log.Named("sweeper"),
		),
	}
}
