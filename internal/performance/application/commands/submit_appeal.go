package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/actor"
	"github.com/perfboard/perfboard/internal/performance/domain/appeal"
	sharedApplication "github.com/perfboard/perfboard/internal/shared/application"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/outbox"
)

// SubmitAppealCommand files the owner's case against a red card.
type SubmitAppealCommand struct {
	AppealID       uuid.UUID
	Actor          actor.Actor
	ReasonCategory string
	Detail         string
	Evidence       []string
}

// SubmitAppealHandler handles the SubmitAppealCommand.
type SubmitAppealHandler struct {
	appealRepo appeal.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewSubmitAppealHandler creates a new SubmitAppealHandler.
func NewSubmitAppealHandler(appealRepo appeal.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *SubmitAppealHandler {
	return &SubmitAppealHandler{
		appealRepo: appealRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the SubmitAppealCommand.
func (h *SubmitAppealHandler) Handle(ctx context.Context, cmd SubmitAppealCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		a, err := h.appealRepo.FindByID(txCtx, cmd.AppealID)
		if err != nil {
			return err
		}
		if err := a.Submit(cmd.Actor, cmd.ReasonCategory, cmd.Detail, cmd.Evidence, time.Now()); err != nil {
			return err
		}
		if err := h.appealRepo.Save(txCtx, a); err != nil {
			return err
		}
		return stageEvents(txCtx, h.outboxRepo, cmd.Actor.ID, a)
	})
}
