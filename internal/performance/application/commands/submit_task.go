package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/actor"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
	sharedApplication "github.com/perfboard/perfboard/internal/shared/application"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/outbox"
)

// SubmitTaskCommand sends a task into its approval chain.
type SubmitTaskCommand struct {
	TaskID uuid.UUID
	Actor  actor.Actor
}

// SubmitTaskHandler handles the SubmitTaskCommand.
type SubmitTaskHandler struct {
	taskMutator
}

// NewSubmitTaskHandler creates a new SubmitTaskHandler.
func NewSubmitTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *SubmitTaskHandler {
	return &SubmitTaskHandler{taskMutator{taskRepo: taskRepo, outboxRepo: outboxRepo, uow: uow}}
}

// Handle executes the SubmitTaskCommand.
func (h *SubmitTaskHandler) Handle(ctx context.Context, cmd SubmitTaskCommand) error {
	return h.mutate(ctx, cmd.TaskID, cmd.Actor.ID, func(t *task.Task) error {
		return t.Submit(cmd.Actor)
	})
}
