package usecases

import (
	"context"

	"bizcard/internal/application/payment/paymentgateway"
	"bizcard/internal/domain/issuance"
	"bizcard/internal/domain/publication"
	"bizcard/internal/infrastructure/ratelimit"
)

// PublicationGate re-derives a card's publication state from its payments.
type PublicationGate interface {
	Refresh(ctx context.Context, cardID uint) (publication.State, error)
}

// IssuanceTrigger issues a card at most once.
type IssuanceTrigger interface {
	IssueIfNeeded(ctx context.Context, cardID uint) (issuance.Result, error)
}

// IntentStatusCache holds recent gateway statuses. Get returns nil on a miss.
type IntentStatusCache interface {
	Get(ctx context.Context, intentRef string) (*paymentgateway.IntentStatus, error)
	Set(ctx context.Context, status *paymentgateway.IntentStatus) error
}

// RateLimiter bounds how often a key may be used.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit ratelimit.Limit) (bool, error)
}
