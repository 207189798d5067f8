package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/card"
)

// ListCardsQuery contains the parameters for listing penalty cards.
type ListCardsQuery struct {
	// Exactly one of UserID or TaskID narrows the listing.
	UserID *uuid.UUID
	TaskID *uuid.UUID

	IncludeArchived bool
}

// ListCardsHandler handles the ListCardsQuery.
type ListCardsHandler struct {
	cardRepo card.Repository
}

// NewListCardsHandler creates a new ListCardsHandler.
func NewListCardsHandler(cardRepo card.Repository) *ListCardsHandler {
	return &ListCardsHandler{cardRepo: cardRepo}
}

// Handle executes the ListCardsQuery.
func (h *ListCardsHandler) Handle(ctx context.Context, query ListCardsQuery) ([]*CardDTO, error) {
	var cards []*card.Card
	var err error

	switch {
	case query.TaskID != nil:
		cards, err = h.cardRepo.FindByTask(ctx, *query.TaskID)
	case query.UserID != nil:
		cards, err = h.cardRepo.ListByUser(ctx, *query.UserID, query.IncludeArchived)
	default:
		cards, err = h.cardRepo.ListActive(ctx)
	}
	if err != nil {
		return nil, err
	}

	dtos := make([]*CardDTO, 0, len(cards))
	for _, c := range cards {
		if c.IsArchived() && !query.IncludeArchived {
			continue
		}
		dtos = append(dtos, cardToDTO(c))
	}
	return dtos, nil
}
