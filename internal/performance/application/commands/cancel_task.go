package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/actor"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
	sharedApplication "github.com/perfboard/perfboard/internal/shared/application"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/outbox"
)

// CancelTaskCommand terminates a task without scoring it.
type CancelTaskCommand struct {
	TaskID uuid.UUID
	Actor  actor.Actor
}

// CancelTaskHandler handles the CancelTaskCommand.
type CancelTaskHandler struct {
	taskMutator
}

// NewCancelTaskHandler creates a new CancelTaskHandler.
func NewCancelTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CancelTaskHandler {
	return &CancelTaskHandler{taskMutator{taskRepo: taskRepo, outboxRepo: outboxRepo, uow: uow}}
}

// Handle executes the CancelTaskCommand.
func (h *CancelTaskHandler) Handle(ctx context.Context, cmd CancelTaskCommand) error {
	return h.mutate(ctx, cmd.TaskID, cmd.Actor.ID, func(t *task.Task) error {
		return t.Cancel(cmd.Actor)
	})
}
