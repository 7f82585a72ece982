// Package metrics declares the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizcard_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bizcard_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route"})

	ReconcileTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizcard_reconcile_total",
		Help: "Reconciliation passes by signal source and decision",
	}, []string{"source", "decision"})

	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizcard_webhook_events_total",
		Help: "Verified gateway webhook events by type and handling result",
	}, []string{"type", "result"})

	WebhookSignatureFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bizcard_webhook_signature_failures_total",
		Help: "Webhook deliveries rejected for an invalid signature or payload",
	})

	GatewayRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bizcard_gateway_request_duration_seconds",
		Help:    "Latency of payment gateway calls by operation and result",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "result"})

	PublicationHealsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bizcard_publication_heals_total",
		Help: "Published cards forced closed because their payment status was not paid",
	})

	IssuanceTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizcard_issuance_total",
		Help: "Issuance attempts by result",
	}, []string{"result"})

	ConfirmationCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizcard_confirmation_cache_total",
		Help: "Gateway status cache lookups from the confirmation path",
	}, []string{"result"})
)
