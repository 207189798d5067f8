package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/actor"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
	sharedApplication "github.com/perfboard/perfboard/internal/shared/application"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/outbox"
)

// DeleteTaskCommand soft-deletes a task. The row stays for audit history
// and drops out of default listings.
type DeleteTaskCommand struct {
	TaskID uuid.UUID
	Actor  actor.Actor
}

// DeleteTaskHandler handles the DeleteTaskCommand.
type DeleteTaskHandler struct {
	taskMutator
}

// NewDeleteTaskHandler creates a new DeleteTaskHandler.
func NewDeleteTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *DeleteTaskHandler {
	return &DeleteTaskHandler{taskMutator{taskRepo: taskRepo, outboxRepo: outboxRepo, uow: uow}}
}

// Handle executes the DeleteTaskCommand.
func (h *DeleteTaskHandler) Handle(ctx context.Context, cmd DeleteTaskCommand) error {
	return h.mutate(ctx, cmd.TaskID, cmd.Actor.ID, func(t *task.Task) error {
		return t.MarkDeleted(cmd.Actor)
	})
}
