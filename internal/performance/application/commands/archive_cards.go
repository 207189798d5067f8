package commands

import (
	"context"
	"time"

	"github.com/perfboard/perfboard/internal/performance/domain/card"
	sharedApplication "github.com/perfboard/perfboard/internal/shared/application"
)

// ArchiveCardsCommand archives penalty cards triggered before the cutoff.
// Run at settlement: archived cards stop counting against scores but stay
// on record.
type ArchiveCardsCommand struct {
	Cutoff time.Time
}

// ArchiveCardsResult reports how many cards were archived.
type ArchiveCardsResult struct {
	Archived int64
}

// ArchiveCardsHandler handles the ArchiveCardsCommand.
type ArchiveCardsHandler struct {
	cardRepo card.Repository
	uow      sharedApplication.UnitOfWork
}

// NewArchiveCardsHandler creates a new ArchiveCardsHandler.
func NewArchiveCardsHandler(cardRepo card.Repository, uow sharedApplication.UnitOfWork) *ArchiveCardsHandler {
	return &ArchiveCardsHandler{cardRepo: cardRepo, uow: uow}
}

// Handle executes the ArchiveCardsCommand.
func (h *ArchiveCardsHandler) Handle(ctx context.Context, cmd ArchiveCardsCommand) (*ArchiveCardsResult, error) {
	var result *ArchiveCardsResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		n, err := h.cardRepo.ArchiveBefore(txCtx, cmd.Cutoff)
		if err != nil {
			return err
		}
		result = &ArchiveCardsResult{Archived: n}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
