package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bizcard/internal/application/issuance/issuancetrigger"
	"bizcard/internal/application/publication/publicationgate"
	"bizcard/internal/domain/payment"
	vo "bizcard/internal/domain/payment/valueobjects"
	"bizcard/internal/domain/publication"
	"bizcard/internal/infrastructure/database/testdb"
	"bizcard/internal/infrastructure/repository"
	"bizcard/internal/shared/logger"
)

// harness wires the reconciler to sqlite-backed repositories so conditional
// updates and unique constraints behave as in production.
type harness struct {
	db *gorm.DB

	payments      *repository.PaymentRecordRepository
	subscriptions *repository.SubscriptionRecordRepository
	cards         *repository.CardPublicationRepository
	issuances     *repository.IssuanceRepository
	audits        *repository.AuditRepository

	gateway   *mockGateway
	artifacts *mockArtifactGenerator
	notifier  *mockNotifier

	gate       *publicationgate.Gate
	reconciler *Reconciler
}

func newHarness(t *testing.T) *harness {
	db := testdb.New(t)
	log := logger.NewNopLogger()

	h := &harness{
		db:            db,
		payments:      repository.NewPaymentRecordRepository(db),
		subscriptions: repository.NewSubscriptionRecordRepository(db),
		cards:         repository.NewCardPublicationRepository(db),
		issuances:     repository.NewIssuanceRepository(db),
		audits:        repository.NewAuditRepository(db),
		gateway:       &mockGateway{},
		artifacts:     &mockArtifactGenerator{},
		notifier:      &mockNotifier{},
	}

	h.gate = publicationgate.NewGate(h.payments, h.cards, log)
	trigger := issuancetrigger.NewTrigger(h.issuances, h.cards, h.artifacts, h.notifier, log)
	h.reconciler = NewReconciler(h.payments, h.subscriptions, h.cards, h.gateway, h.gate, trigger, log)

	return h
}

// createPayment stores a pending record for the card and, when intentRef is
// set, binds it to that intent.
func (h *harness) createPayment(t *testing.T, cardID uint, kind vo.PaymentKind, method vo.PaymentMethod, intentRef string) *payment.PaymentRecord {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, h.cards.EnsureCard(ctx, publication.Card{CardID: cardID, OwnerID: 1, ContactEmail: "owner@example.com"}))

	amount, err := vo.NewAmountWithTax(30000, 1000, "krw")
	require.NoError(t, err)
	rec, err := payment.NewPaymentRecord(1, cardID, kind, method, amount)
	require.NoError(t, err)
	require.NoError(t, h.payments.Create(ctx, rec))

	if intentRef != "" {
		ok, err := h.payments.AttachIntentRef(ctx, rec.ID(), intentRef)
		require.NoError(t, err)
		require.True(t, ok)
	}

	rec, err = h.payments.GetByID(ctx, rec.ID())
	require.NoError(t, err)
	return rec
}

func (h *harness) reload(t *testing.T, rec *payment.PaymentRecord) *payment.PaymentRecord {
	t.Helper()
	current, err := h.payments.GetByID(context.Background(), rec.ID())
	require.NoError(t, err)
	return current
}

func (h *harness) publication(t *testing.T, cardID uint) publication.State {
	t.Helper()
	state, err := h.cards.GetPublicationState(context.Background(), cardID)
	require.NoError(t, err)
	return state
}
