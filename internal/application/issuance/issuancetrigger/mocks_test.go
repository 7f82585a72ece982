package issuancetrigger

import (
	"context"

	"bizcard/internal/domain/publication"
)

type mockArtifactGenerator struct {
	GenerateFunc func(ctx context.Context, card *publication.Card) (string, error)
}

func (m *mockArtifactGenerator) Generate(ctx context.Context, card *publication.Card) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, card)
	}
	return "s3://artifacts/cards/default.png", nil
}

type mockNotifier struct {
	NotifyIssuanceFunc func(ctx context.Context, cardID uint, artifactRef string) error
}

func (m *mockNotifier) NotifyIssuance(ctx context.Context, cardID uint, artifactRef string) error {
	if m.NotifyIssuanceFunc != nil {
		return m.NotifyIssuanceFunc(ctx, cardID, artifactRef)
	}
	return nil
}
