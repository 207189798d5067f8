package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/actor"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
	sharedApplication "github.com/perfboard/perfboard/internal/shared/application"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/outbox"
)

// WithdrawTaskCommand pulls a task out of its approval chain back to draft.
type WithdrawTaskCommand struct {
	TaskID uuid.UUID
	Actor  actor.Actor
}

// WithdrawTaskHandler handles the WithdrawTaskCommand.
type WithdrawTaskHandler struct {
	taskMutator
}

// NewWithdrawTaskHandler creates a new WithdrawTaskHandler.
func NewWithdrawTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *WithdrawTaskHandler {
	return &WithdrawTaskHandler{taskMutator{taskRepo: taskRepo, outboxRepo: outboxRepo, uow: uow}}
}

// Handle executes the WithdrawTaskCommand.
func (h *WithdrawTaskHandler) Handle(ctx context.Context, cmd WithdrawTaskCommand) error {
	return h.mutate(ctx, cmd.TaskID, cmd.Actor.ID, func(t *task.Task) error {
		return t.Withdraw(cmd.Actor)
	})
}
