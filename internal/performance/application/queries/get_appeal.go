package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/appeal"
)

// GetAppealQuery looks up an appeal by its own id or by its card's id.
type GetAppealQuery struct {
	AppealID *uuid.UUID
	CardID   *uuid.UUID
}

// GetAppealHandler handles the GetAppealQuery.
type GetAppealHandler struct {
	appealRepo appeal.Repository
}

// NewGetAppealHandler creates a new GetAppealHandler.
func NewGetAppealHandler(appealRepo appeal.Repository) *GetAppealHandler {
	return &GetAppealHandler{appealRepo: appealRepo}
}

// Handle executes the GetAppealQuery.
func (h *GetAppealHandler) Handle(ctx context.Context, query GetAppealQuery) (*AppealDTO, error) {
	var a *appeal.Appeal
	var err error

	switch {
	case query.AppealID != nil:
		a, err = h.appealRepo.FindByID(ctx, *query.AppealID)
	case query.CardID != nil:
		a, err = h.appealRepo.FindByCard(ctx, *query.CardID)
	default:
		return nil, appeal.ErrAppealNotFound
	}
	if err != nil {
		return nil, err
	}
	return appealToDTO(a), nil
}

// ListAppealsQuery lists a user's appeals.
type ListAppealsQuery struct {
	UserID uuid.UUID
}

// ListAppealsHandler handles the ListAppealsQuery.
type ListAppealsHandler struct {
	appealRepo appeal.Repository
}

// NewListAppealsHandler creates a new ListAppealsHandler.
func NewListAppealsHandler(appealRepo appeal.Repository) *ListAppealsHandler {
	return &ListAppealsHandler{appealRepo: appealRepo}
}

// Handle executes the ListAppealsQuery.
func (h *ListAppealsHandler) Handle(ctx context.Context, query ListAppealsQuery) ([]*AppealDTO, error) {
	appeals, err := h.appealRepo.ListByUser(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	dtos := make([]*AppealDTO, 0, len(appeals))
	for _, a := range appeals {
		dtos = append(dtos, appealToDTO(a))
	}
	return dtos, nil
}
