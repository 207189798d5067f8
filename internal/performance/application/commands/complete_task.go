package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/actor"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
	sharedApplication "github.com/perfboard/perfboard/internal/shared/application"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/outbox"
)

// CompleteTaskCommand marks an in-progress task done, sending it to review.
type CompleteTaskCommand struct {
	TaskID uuid.UUID
	Actor  actor.Actor
}

// CompleteTaskHandler handles the CompleteTaskCommand.
type CompleteTaskHandler struct {
	taskMutator
}

// NewCompleteTaskHandler creates a new CompleteTaskHandler.
func NewCompleteTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CompleteTaskHandler {
	return &CompleteTaskHandler{taskMutator{taskRepo: taskRepo, outboxRepo: outboxRepo, uow: uow}}
}

// Handle executes the CompleteTaskCommand.
func (h *CompleteTaskHandler) Handle(ctx context.Context, cmd CompleteTaskCommand) error {
	return h.mutate(ctx, cmd.TaskID, cmd.Actor.ID, func(t *task.Task) error {
		return t.Complete(cmd.Actor)
	})
}
