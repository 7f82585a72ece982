// Package artifact produces the QR artifact handed to the card owner when a
// card is issued.
package artifact

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"bizcard/internal/domain/publication"
	"bizcard/internal/shared/logger"
)

// Renderer turns the public card URL into artifact bytes. Rasterizing a QR
// image is up to the implementation.
type Renderer interface {
	Render(payload string) (body []byte, contentType string, ext string, err error)
}

// PayloadRenderer emits the QR payload as plain text. Any QR client can render
// it; it is the default when no image renderer is configured.
type PayloadRenderer struct{}

func (PayloadRenderer) Render(payload string) ([]byte, string, string, error) {
	if payload == "" {
		return nil, "", "", fmt.Errorf("empty qr payload")
	}
	return []byte(payload), "text/plain; charset=utf-8", "txt", nil
}

// Generator renders the public card link and stores it.
type Generator struct {
	renderer   Renderer
	store      ObjectStore
	cardURLFmt string
	logger     logger.Interface
}

// NewGenerator takes the public card URL as a format string with a single %d
// for the card ID.
func NewGenerator(renderer Renderer, store ObjectStore, cardURLFmt string, log logger.Interface) *Generator {
	return &Generator{
		renderer:   renderer,
		store:      store,
		cardURLFmt: cardURLFmt,
		logger:     log,
	}
}

func (g *Generator) Generate(ctx context.Context, card *publication.Card) (string, error) {
	payload := g.CardURL(card.CardID)

	body, contentType, ext, err := g.renderer.Render(payload)
	if err != nil {
		return "", fmt.Errorf("failed to render artifact for card %d: %w", card.CardID, err)
	}

	key := fmt.Sprintf("cards/%d/qr-%s.%s", card.CardID, uuid.NewString(), ext)
	ref, err := g.store.Put(ctx, key, body, contentType)
	if err != nil {
		return "", err
	}

	g.logger.Infow("issuance artifact stored", "card_id", card.CardID, "key", key)
	return ref, nil
}

// CardURL is the public address encoded in a card's QR artifact.
func (g *Generator) CardURL(cardID uint) string {
	return fmt.Sprintf(g.cardURLFmt, cardID)
}
