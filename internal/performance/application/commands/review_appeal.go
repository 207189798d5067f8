package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/actor"
	"github.com/perfboard/perfboard/internal/performance/domain/appeal"
	"github.com/perfboard/perfboard/internal/performance/domain/card"
	sharedApplication "github.com/perfboard/perfboard/internal/shared/application"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/outbox"
)

// ReviewAppealCommand concludes an appeal. Approving it reverses the linked
// card's penalty; the card itself stays on record.
type ReviewAppealCommand struct {
	AppealID uuid.UUID
	Actor    actor.Actor
	Approve  bool
	Comment  string
}

// ReviewAppealHandler handles the ReviewAppealCommand.
type ReviewAppealHandler struct {
	appealRepo appeal.Repository
	cardRepo   card.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewReviewAppealHandler creates a new ReviewAppealHandler.
func NewReviewAppealHandler(
	appealRepo appeal.Repository,
	cardRepo card.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *ReviewAppealHandler {
	return &ReviewAppealHandler{
		appealRepo: appealRepo,
		cardRepo:   cardRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the ReviewAppealCommand.
func (h *ReviewAppealHandler) Handle(ctx context.Context, cmd ReviewAppealCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		a, err := h.appealRepo.FindByID(txCtx, cmd.AppealID)
		if err != nil {
			return err
		}

		verdict := appeal.StatusRejected
		if cmd.Approve {
			verdict = appeal.StatusApproved
		}
		if err := a.Review(cmd.Actor, verdict, cmd.Comment, time.Now()); err != nil {
			return err
		}
		if err := h.appealRepo.Save(txCtx, a); err != nil {
			return err
		}

		sources := []eventSource{a}

		if a.IsApproved() {
			c, err := h.cardRepo.FindByID(txCtx, a.CardID())
			if err != nil {
				return err
			}
			if err := c.ReversePenalty(); err != nil {
				return err
			}
			if err := h.cardRepo.Save(txCtx, c); err != nil {
				return err
			}
			sources = append(sources, c)
		}

		return stageEvents(txCtx, h.outboxRepo, cmd.Actor.ID, sources...)
	})
}
