// Package issuancetrigger issues a card exactly once after its first paid
// transition.
package issuancetrigger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bizcard/internal/domain/issuance"
	"bizcard/internal/domain/publication"
	"bizcard/internal/shared/biztime"
	"bizcard/internal/shared/goroutine"
	"bizcard/internal/shared/logger"
	"bizcard/internal/shared/metrics"
)

const (
	notifyTimeout  = 30 * time.Second
	releaseTimeout = 5 * time.Second

	// DefaultClaimLease bounds how long an unfinished claim blocks other
	// callers after its owner disappeared.
	DefaultClaimLease = 5 * time.Minute
)

// ErrCardNotPaid is returned when the card left the paid set between the
// payment completing and the issuance publishing it.
var ErrCardNotPaid = errors.New("card is not in a paid status")

// ArtifactGenerator produces the shareable artifact for a card and returns a
// reference to it.
type ArtifactGenerator interface {
	Generate(ctx context.Context, card *publication.Card) (string, error)
}

// Notifier tells the card owner that the card has been issued.
type Notifier interface {
	NotifyIssuance(ctx context.Context, cardID uint, artifactRef string) error
}

type Trigger struct {
	issuances issuance.IssuanceRepository
	cards     publication.CardPublicationStore
	artifacts ArtifactGenerator
	notifier  Notifier
	logger    logger.Interface

	claimLease time.Duration
}

func NewTrigger(
	issuances issuance.IssuanceRepository,
	cards publication.CardPublicationStore,
	artifacts ArtifactGenerator,
	notifier Notifier,
	log logger.Interface,
) *Trigger {
	return &Trigger{
		issuances: issuances,
		cards:     cards,
		artifacts: artifacts,
		notifier:  notifier,
		logger:    log,

		claimLease: DefaultClaimLease,
	}
}

// IssueIfNeeded claims the card's issuance record. Only the caller whose
// insert wins generates the artifact, publishes the card and notifies; every
// other caller gets AlreadyIssued. A failure before the artifact is recorded
// releases the claim so a later pass can retry; a claim that could not be
// released expires after the claim lease.
func (t *Trigger) IssueIfNeeded(ctx context.Context, cardID uint) (issuance.Result, error) {
	claimed, err := t.issuances.Claim(ctx, cardID, biztime.NowUTC(), t.claimLease)
	if err != nil {
		metrics.IssuanceTotal.WithLabelValues("error").Inc()
		return issuance.Result{}, fmt.Errorf("failed to claim issuance: %w", err)
	}
	if !claimed {
		metrics.IssuanceTotal.WithLabelValues("already_issued").Inc()
		return issuance.AlreadyIssued(), nil
	}

	ref, err := t.issue(ctx, cardID)
	if err != nil {
		metrics.IssuanceTotal.WithLabelValues("error").Inc()
		t.release(ctx, cardID)
		return issuance.Result{}, err
	}

	metrics.IssuanceTotal.WithLabelValues("issued").Inc()
	t.logger.Infow("card issued", "card_id", cardID, "artifact_ref", ref)

	goroutine.SafeGoWithTimeout(t.logger, "issuance-notify", notifyTimeout, func(notifyCtx context.Context) {
		if err := t.notifier.NotifyIssuance(notifyCtx, cardID, ref); err != nil {
			t.logger.Warnw("failed to send issuance notification", "card_id", cardID, "error", err)
		}
	})

	return issuance.Issued(ref), nil
}

// release drops the claim even when the caller's context is already done.
func (t *Trigger) release(ctx context.Context, cardID uint) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := t.issuances.Release(releaseCtx, cardID); err != nil {
		t.logger.Errorw("failed to release issuance claim", "card_id", cardID, "error", err)
	}
}

func (t *Trigger) issue(ctx context.Context, cardID uint) (string, error) {
	card, err := t.cards.GetCard(ctx, cardID)
	if err != nil {
		return "", fmt.Errorf("failed to load card: %w", err)
	}

	ref, err := t.artifacts.Generate(ctx, card)
	if err != nil {
		return "", fmt.Errorf("failed to generate artifact: %w", err)
	}

	published, err := t.cards.PublishIfPaid(ctx, cardID)
	if err != nil {
		return "", fmt.Errorf("failed to publish card: %w", err)
	}
	if !published {
		state, err := t.cards.GetPublicationState(ctx, cardID)
		if err != nil {
			return "", fmt.Errorf("failed to reload publication state: %w", err)
		}
		if !state.IsPublished {
			t.logger.Warnw("issuance skipped, card not paid", "card_id", cardID, "status", state.PaymentStatus)
			return "", ErrCardNotPaid
		}
	}

	if err := t.issuances.SetArtifactRef(ctx, cardID, ref); err != nil {
		return "", err
	}

	return ref, nil
}
