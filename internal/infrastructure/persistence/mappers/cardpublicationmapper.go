package mappers

import (
	"bizcard/internal/domain/publication"
	"bizcard/internal/infrastructure/persistence/models"
)

func CardPublicationToDomain(model *models.CardPublicationModel) (*publication.Card, error) {
	status, err := publication.NewPaymentStatus(model.PaymentStatus)
	if err != nil {
		return nil, err
	}

	return &publication.Card{
		CardID:       model.CardID,
		OwnerID:      model.OwnerID,
		ContactEmail: model.ContactEmail,
		State: publication.State{
			PaymentStatus: status,
			IsPublished:   model.IsPublished,
		},
		PublishedAt: model.PublishedAt,
	}, nil
}
