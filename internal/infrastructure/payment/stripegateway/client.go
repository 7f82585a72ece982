// Package stripegateway implements the payment gateway contract on Stripe.
package stripegateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"

	"bizcard/internal/application/payment/paymentgateway"
	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/shared/config"
	"bizcard/internal/shared/logger"
	"bizcard/internal/shared/metrics"
)

const defaultTimeout = 10 * time.Second

// Gateway talks to the Stripe API. It holds no local state.
type Gateway struct {
	api      *client.API
	priceRef string
	logger   logger.Interface
}

type options struct {
	backendURL string
	httpClient *http.Client
}

// Option configures the Gateway.
type Option func(*options)

// WithBackendURL points the client at a different API host.
func WithBackendURL(url string) Option {
	return func(o *options) {
		o.backendURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

func New(cfg config.GatewayConfig, log logger.Interface, opts ...Option) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	o := &options{
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(o)
	}

	backendConfig := &stripe.BackendConfig{
		HTTPClient: o.httpClient,
		// Callers decide about retries; a retry inside the client would
		// stretch the request past the gateway timeout.
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &leveledLogger{log: log},
	}
	if o.backendURL != "" {
		backendConfig.URL = stripe.String(o.backendURL)
	}

	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig),
	}

	return &Gateway{
		api:      client.New(cfg.SecretKey, backends),
		priceRef: cfg.SubscriptionPrice,
		logger:   log,
	}
}

// PriceRef returns the configured recurring price.
func (g *Gateway) PriceRef() string {
	return g.priceRef
}

func (g *Gateway) CreateIntent(ctx context.Context, req paymentgateway.CreateIntentRequest) (*paymentgateway.CreateIntentResponse, error) {
	if req.AmountMinor <= 0 {
		return nil, fmt.Errorf("create intent: %w: amount must be positive", paymentgateway.ErrPermanent)
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.AmountMinor),
		Currency:           stripe.String(strings.ToLower(req.Currency)),
		PaymentMethodTypes: stripe.StringSlice(paymentMethodTypes(req.MethodHint)),
	}
	params.Context = ctx
	if req.CustomerRef != "" {
		params.Customer = stripe.String(req.CustomerRef)
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	var pi *stripe.PaymentIntent
	err := g.observe("create_intent", func() (err error) {
		pi, err = g.api.PaymentIntents.New(params)
		return err
	})
	if err != nil {
		return nil, classifyError("create intent", err)
	}

	outcome, _ := IntentOutcome(pi)
	return &paymentgateway.CreateIntentResponse{
		IntentRef:     pi.ID,
		ClientToken:   pi.ClientSecret,
		GatewayStatus: string(pi.Status),
		Outcome:       outcome,
	}, nil
}

func (g *Gateway) FetchStatus(ctx context.Context, intentRef string) (*paymentgateway.IntentStatus, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	var pi *stripe.PaymentIntent
	err := g.observe("fetch_status", func() (err error) {
		pi, err = g.api.PaymentIntents.Get(intentRef, params)
		return err
	})
	if err != nil {
		return nil, classifyError("fetch status", err)
	}

	return intentStatus(pi), nil
}

// CancelIntent cancels an intent that can still be confirmed, which is where a
// declined card leaves it.
func (g *Gateway) CancelIntent(ctx context.Context, intentRef string) error {
	params := &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String("abandoned"),
	}
	params.Context = ctx

	err := g.observe("cancel_intent", func() error {
		_, err := g.api.PaymentIntents.Cancel(intentRef, params)
		return err
	})
	if err != nil {
		return classifyError("cancel intent", err)
	}
	return nil
}

func (g *Gateway) CreateSubscription(ctx context.Context, req paymentgateway.CreateSubscriptionRequest) (*paymentgateway.CreateSubscriptionResponse, error) {
	priceRef := req.PriceRef
	if priceRef == "" {
		priceRef = g.priceRef
	}

	params := &stripe.SubscriptionParams{
		Customer: stripe.String(req.CustomerRef),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceRef)},
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	var sub *stripe.Subscription
	err := g.observe("create_subscription", func() (err error) {
		sub, err = g.api.Subscriptions.New(params)
		return err
	})
	if err != nil {
		return nil, classifyError("create subscription", err)
	}

	return &paymentgateway.CreateSubscriptionResponse{
		SubscriptionRef: sub.ID,
		Status:          SubscriptionStatus(sub.Status),
		NextBillingAt:   unixTime(sub.CurrentPeriodEnd),
	}, nil
}

// FindOrCreateCustomer looks the customer up by email before creating one.
func (g *Gateway) FindOrCreateCustomer(ctx context.Context, req paymentgateway.CustomerRequest) (*paymentgateway.Customer, error) {
	if req.Email != "" {
		ref, err := g.findCustomer(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		if ref != "" {
			return &paymentgateway.Customer{Ref: ref}, nil
		}
	}

	params := &stripe.CustomerParams{}
	params.Context = ctx
	if req.Email != "" {
		params.Email = stripe.String(req.Email)
		params.SetIdempotencyKey("customer-" + strings.ToLower(req.Email))
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	var c *stripe.Customer
	err := g.observe("create_customer", func() (err error) {
		c, err = g.api.Customers.New(params)
		return err
	})
	if err != nil {
		return nil, classifyError("create customer", err)
	}

	return &paymentgateway.Customer{Ref: c.ID, Created: true}, nil
}

func (g *Gateway) findCustomer(ctx context.Context, email string) (string, error) {
	params := &stripe.CustomerSearchParams{
		SearchParams: stripe.SearchParams{
			Query:   fmt.Sprintf("email:'%s'", strings.ReplaceAll(email, "'", "\\'")),
			Limit:   stripe.Int64(1),
			Context: ctx,
		},
	}

	var ref string
	err := g.observe("find_customer", func() error {
		iter := g.api.Customers.Search(params)
		if iter.Next() {
			ref = iter.Customer().ID
		}
		return iter.Err()
	})
	if err != nil {
		return "", classifyError("find customer", err)
	}

	return ref, nil
}

func (g *Gateway) observe(operation string, fn func() error) error {
	start := time.Now()
	err := fn()

	result := "ok"
	if err != nil {
		result = "error"
		g.logger.Warnw("gateway call failed", "operation", operation, "error", err)
	}
	metrics.GatewayRequestDuration.WithLabelValues(operation, result).Observe(time.Since(start).Seconds())

	return err
}

func paymentMethodTypes(hint vo.PaymentMethod) []string {
	if hint == vo.PaymentMethodBankTransfer {
		return []string{"customer_balance"}
	}
	return []string{"card"}
}

// leveledLogger routes stripe-go's own logging into the application logger.
type leveledLogger struct {
	log logger.Interface
}

func (l *leveledLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}

func (l *leveledLogger) Infof(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}

func (l *leveledLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, v...))
}

func (l *leveledLogger) Errorf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}
